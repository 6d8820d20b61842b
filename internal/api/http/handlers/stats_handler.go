package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/api/dto"
	"github.com/spec-kit/ticket-workflow/internal/service"
)

// StatsHandler exposes aggregate workflow counters to staff.
type StatsHandler struct {
	service *service.WorkflowService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(workflow *service.WorkflowService) *StatsHandler {
	return &StatsHandler{service: workflow}
}

// Stats GET /stats.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	stats := h.service.TicketStats()

	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	recent := make([]dto.TicketSummary, 0, len(stats.Recent))
	for _, snap := range stats.Recent {
		recent = append(recent, dto.FromSnapshotSummary(snap))
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"total":       stats.Total,
		"open":        stats.Open,
		"closed":      stats.Closed,
		"by_status":   byStatus,
		"by_template": stats.ByTemplate,
		"recent":      recent,
	}})
}
