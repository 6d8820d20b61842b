package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/api/dto"
	"github.com/spec-kit/ticket-workflow/internal/auth"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/service"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// TranscriptCache serves previously archived transcripts. Lookups are an
// optimization only; a miss falls back to regeneration from stored state.
type TranscriptCache interface {
	CachedTranscript(ctx context.Context, id domain.TicketID) (string, bool)
}

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service     *service.WorkflowService
	transcripts TranscriptCache
}

// NewTicketsHandler constructs handler. transcripts may be nil.
func NewTicketsHandler(workflow *service.WorkflowService, transcripts TranscriptCache) *TicketsHandler {
	return &TicketsHandler{service: workflow, transcripts: transcripts}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TemplateID == "" {
		return apperrors.NewValidationError("template_id required", nil)
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "priority"})
	}

	input := service.CreateTicketInput{
		TemplateID:  domain.TemplateID(req.TemplateID),
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Answers:     req.Answers,
	}
	snap, err := h.service.CreateTicket(c.Context(), principal.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromSnapshotDetail(snap)})
}

// ListTickets GET /tickets. The assigned=true query switches to the tickets
// assigned to the caller instead of the tickets the caller requested.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var snaps []domain.TicketSnapshot
	if c.QueryBool("assigned") {
		snaps = h.service.ListAssigned(principal.ID)
	} else {
		snaps = h.service.ListMyTickets(principal.ID)
	}
	items := make([]dto.TicketSummary, 0, len(snaps))
	for _, snap := range snaps {
		items = append(items, dto.FromSnapshotSummary(snap))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	snap, err := h.service.GetTicketInfo(principal.ID, domain.TicketID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshotDetail(snap)})
}

// AddMessage POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewValidationError("content required", nil)
	}
	msg, err := h.service.AddMessage(c.Context(), principal.ID, domain.TicketID(c.Params("id")), req.Content, req.Attachments)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.Message{
		Timestamp:   msg.Timestamp,
		Actor:       string(msg.Actor),
		Content:     msg.Content,
		Attachments: msg.Attachments,
	}})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "status"})
	}
	snap, err := h.service.ChangeStatus(c.Context(), principal.ID, domain.TicketID(c.Params("id")), status, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshotSummary(snap)})
}

// Assign POST /tickets/:id/assign. An empty target selects the least loaded
// eligible agent.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var target *domain.UserID
	if req.TargetAgentID != "" {
		id := domain.UserID(req.TargetAgentID)
		target = &id
	}
	record, err := h.service.Assign(c.Context(), principal.ID, domain.TicketID(c.Params("id")), target, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssignmentRecord{
		Timestamp:  record.Timestamp,
		Assignee:   string(record.Assignee),
		AssignedBy: string(record.AssignedBy),
		Reason:     record.Reason,
	}})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CloseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.CloseTicket(c.Context(), principal.ID, domain.TicketID(c.Params("id")), req.Reason); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"closed": true}})
}

// Transcript GET /tickets/:id/transcript. Responds with plain text.
func (h *TicketsHandler) Transcript(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id := domain.TicketID(c.Params("id"))
	snap, err := h.service.GetTicketInfo(principal.ID, id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)

	// Closed tickets no longer change, so the archived copy is current.
	if snap.Status.IsTerminal() && h.transcripts != nil {
		if text, ok := h.transcripts.CachedTranscript(c.Context(), id); ok {
			return c.SendString(text)
		}
	}
	text, err := h.service.Transcript(principal.ID, id)
	if err != nil {
		return err
	}
	return c.SendString(text)
}
