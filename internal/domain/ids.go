package domain

import (
	"strings"

	"github.com/google/uuid"
)

// TicketID uniquely identifies a ticket. Never reused.
type TicketID string

// UserID identifies a chat-platform account, requester or agent alike.
type UserID string

// RoleID identifies a responder group on the chat platform.
type RoleID string

// TemplateID identifies a ticket category template.
type TemplateID string

// SystemUser is the actor recorded for automated operations such as the
// auto-close sweep.
const SystemUser UserID = "system"

// NewTicketID mints a ticket id in the TCK-XXXXXXXX form.
func NewTicketID() TicketID {
	return TicketID("TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]))
}
