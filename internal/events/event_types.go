package events

import (
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated             EventType = "ticket_created"
	EventChannelProvisioningNeeded EventType = "channel_provisioning_needed"
	EventPanelRenderNeeded         EventType = "panel_render_needed"
	EventTicketStatusChanged       EventType = "ticket_status_changed"
	EventTicketAssigned            EventType = "ticket_assigned"
	EventTicketMessageAdded        EventType = "ticket_message_added"
	EventEscalationRaised          EventType = "escalation_raised"
	EventTicketClosed              EventType = "ticket_closed"
)

// Event represents a workflow event emitted by the core to collaborators.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	TicketID  domain.TicketID `json:"ticket_id"`
	Actor     domain.UserID   `json:"actor"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.TicketSnapshot `json:"ticket"`
}

// ChannelProvisioningPayload asks a collaborator to create a channel/thread
// for the ticket and report back a channel reference.
type ChannelProvisioningPayload struct {
	Ticket      domain.TicketSnapshot `json:"ticket"`
	ChannelSlug string                `json:"channel_slug"`
}

// PanelRenderPayload asks a collaborator to render the ticket's current
// status, assignee and SLA state.
type PanelRenderPayload struct {
	Ticket domain.TicketSnapshot `json:"ticket"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Reason    string              `json:"reason,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Assignee   domain.UserID `json:"assignee"`
	AssignedBy domain.UserID `json:"assigned_by"`
	Reason     string        `json:"reason,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	Author      domain.UserID `json:"author"`
	BodyPreview string        `json:"body_preview"`
	Attachments int           `json:"attachments"`
}

// EscalationRaisedPayload reports an SLA breach.
type EscalationRaisedPayload struct {
	Ticket       domain.TicketSnapshot `json:"ticket"`
	SLADeadline  time.Time             `json:"sla_deadline"`
	BreachedBy   time.Duration         `json:"breached_by"`
	SupportRoles []domain.RoleID       `json:"support_roles"`
}

// TicketClosedPayload carries the rendered transcript for delivery and
// channel archival.
type TicketClosedPayload struct {
	Ticket     domain.TicketSnapshot `json:"ticket"`
	Reason     string                `json:"reason,omitempty"`
	Transcript string                `json:"transcript"`
}
