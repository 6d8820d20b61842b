package dto

import (
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TemplateID  string            `json:"template_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    string            `json:"priority"`
	Answers     map[string]string `json:"answers"`
}

// AddMessageRequest payload.
type AddMessageRequest struct {
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

// StatusChangeRequest payload.
type StatusChangeRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// AssignRequest payload. TargetAgentID empty selects automatic assignment.
type AssignRequest struct {
	TargetAgentID string `json:"target_agent_id,omitempty"`
	Reason        string `json:"reason"`
}

// CloseRequest payload.
type CloseRequest struct {
	Reason string `json:"reason"`
}

// TicketSummary response.
type TicketSummary struct {
	ID          string     `json:"id"`
	TemplateID  string     `json:"template_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Requester   string     `json:"requester"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	SLADeadline time.Time  `json:"sla_deadline"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// TicketDetail provides full ticket info including histories.
type TicketDetail struct {
	TicketSummary
	Answers           map[string]string  `json:"answers"`
	StatusHistory     []StatusChange     `json:"status_history"`
	Messages          []Message          `json:"messages"`
	AssignmentHistory []AssignmentRecord `json:"assignment_history"`
}

// StatusChange response record.
type StatusChange struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Reason    string    `json:"reason,omitempty"`
}

// Message response record.
type Message struct {
	Timestamp   time.Time `json:"timestamp"`
	Actor       string    `json:"actor"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments,omitempty"`
}

// AssignmentRecord response record.
type AssignmentRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Assignee   string    `json:"assignee"`
	AssignedBy string    `json:"assigned_by"`
	Reason     string    `json:"reason,omitempty"`
}

// FromSnapshotSummary maps a snapshot to its summary representation.
func FromSnapshotSummary(snap domain.TicketSnapshot) TicketSummary {
	summary := TicketSummary{
		ID:          string(snap.ID),
		TemplateID:  string(snap.Template.ID),
		Title:       snap.Title,
		Status:      string(snap.Status),
		Priority:    string(snap.Priority),
		Requester:   string(snap.Requester),
		SLADeadline: snap.SLADeadline,
		CreatedAt:   snap.CreatedAt,
		UpdatedAt:   snap.UpdatedAt,
		ClosedAt:    snap.ClosedAt,
	}
	if snap.AssignedTo != nil {
		assignee := string(*snap.AssignedTo)
		summary.AssignedTo = &assignee
	}
	return summary
}

// FromSnapshotDetail maps a snapshot to its detailed representation.
func FromSnapshotDetail(snap domain.TicketSnapshot) TicketDetail {
	detail := TicketDetail{
		TicketSummary: FromSnapshotSummary(snap),
		Answers:       snap.Answers,
	}
	for _, change := range snap.StatusHistory {
		detail.StatusHistory = append(detail.StatusHistory, StatusChange{
			Timestamp: change.Timestamp,
			Actor:     string(change.Actor),
			From:      string(change.From),
			To:        string(change.To),
			Reason:    change.Reason,
		})
	}
	for _, msg := range snap.MessageLog {
		detail.Messages = append(detail.Messages, Message{
			Timestamp:   msg.Timestamp,
			Actor:       string(msg.Actor),
			Content:     msg.Content,
			Attachments: msg.Attachments,
		})
	}
	for _, assignment := range snap.AssignmentHistory {
		detail.AssignmentHistory = append(detail.AssignmentHistory, AssignmentRecord{
			Timestamp:  assignment.Timestamp,
			Assignee:   string(assignment.Assignee),
			AssignedBy: string(assignment.AssignedBy),
			Reason:     assignment.Reason,
		})
	}
	return detail
}
