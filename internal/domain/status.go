package domain

import "fmt"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew            TicketStatus = "NEW"
	TicketStatusOpen           TicketStatus = "OPEN"
	TicketStatusInProgress     TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingUser    TicketStatus = "WAITING_USER"
	TicketStatusWaitingSupport TicketStatus = "WAITING_SUPPORT"
	TicketStatusResolved       TicketStatus = "RESOLVED"
	TicketStatusClosed         TicketStatus = "CLOSED"
	TicketStatusArchived       TicketStatus = "ARCHIVED"
)

// AllStatuses lists every status in declaration order.
func AllStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusNew,
		TicketStatusOpen,
		TicketStatusInProgress,
		TicketStatusWaitingUser,
		TicketStatusWaitingSupport,
		TicketStatusResolved,
		TicketStatusClosed,
		TicketStatusArchived,
	}
}

// IsTerminal reports whether a ticket in this status has reached the end of
// its lifecycle. Terminal tickets are retained for transcript retrieval but
// accept no further transitions.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed || s == TicketStatusArchived
}

// ParseStatus validates a status string against the closed enumeration.
func ParseStatus(raw string) (TicketStatus, error) {
	for _, s := range AllStatuses() {
		if string(s) == raw {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown ticket status %q", raw)
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// ParsePriority validates a priority string, defaulting empty input to medium.
func ParsePriority(raw string) (TicketPriority, error) {
	switch TicketPriority(raw) {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return TicketPriority(raw), nil
	case "":
		return TicketPriorityMedium, nil
	}
	return "", fmt.Errorf("unknown ticket priority %q", raw)
}
