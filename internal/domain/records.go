package domain

import "time"

// StatusChange is one entry in a ticket's append-only status history.
type StatusChange struct {
	Timestamp time.Time
	Actor     UserID
	From      TicketStatus
	To        TicketStatus
	Reason    string
}

// MessageRecord is one entry in a ticket's append-only message log.
type MessageRecord struct {
	Timestamp   time.Time
	Actor       UserID
	Content     string
	Attachments []string
}

// AssignmentRecord is one entry in a ticket's append-only assignment history.
type AssignmentRecord struct {
	Timestamp  time.Time
	Assignee   UserID
	AssignedBy UserID
	Reason     string
}
