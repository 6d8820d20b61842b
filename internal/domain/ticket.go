package domain

import (
	"errors"
	"sync"
	"time"
)

// ErrTicketTerminal is returned when an operation targets a ticket that has
// already reached CLOSED or ARCHIVED. Terminal tickets never transition
// onward; there is no reopen.
var ErrTicketTerminal = errors.New("ticket is in a terminal status")

// Ticket is a single workflow instance. All mutations on one ticket are
// serialized through its own mutex so that concurrent foreground operations
// and background sweeps never interleave into a torn update. Reads go through
// Snapshot, which copies state under the same lock.
type Ticket struct {
	mu sync.Mutex

	id          TicketID
	requester   UserID
	template    *Template
	title       string
	priority    TicketPriority
	status      TicketStatus
	createdAt   time.Time
	updatedAt   time.Time
	closedAt    *time.Time
	slaDeadline time.Time
	assignedTo  *UserID
	answers     map[string]string

	statusHistory     []StatusChange
	messageLog        []MessageRecord
	assignmentHistory []AssignmentRecord
}

// TicketSnapshot is an immutable copy of a ticket's state at one instant.
type TicketSnapshot struct {
	ID                TicketID
	Requester         UserID
	Template          *Template
	Title             string
	Priority          TicketPriority
	Status            TicketStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ClosedAt          *time.Time
	SLADeadline       time.Time
	AssignedTo        *UserID
	Answers           map[string]string
	StatusHistory     []StatusChange
	MessageLog        []MessageRecord
	AssignmentHistory []AssignmentRecord
}

// NewTicket constructs a ticket in status NEW. The first status-history entry
// and the creation-description message are written atomically with the ticket
// itself, and the SLA deadline is fixed here from the template's response
// window, never to be recomputed.
func NewTicket(requester UserID, template *Template, title, description string, priority TicketPriority, answers map[string]string, now time.Time) *Ticket {
	copied := make(map[string]string, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	t := &Ticket{
		id:          NewTicketID(),
		requester:   requester,
		template:    template,
		title:       title,
		priority:    priority,
		status:      TicketStatusNew,
		createdAt:   now,
		updatedAt:   now,
		slaDeadline: template.SLA.ResponseDeadline(now),
		answers:     copied,
	}
	t.messageLog = append(t.messageLog, MessageRecord{
		Timestamp: now,
		Actor:     requester,
		Content:   description,
	})
	t.statusHistory = append(t.statusHistory, StatusChange{
		Timestamp: now,
		Actor:     requester,
		From:      TicketStatusNew,
		To:        TicketStatusNew,
		Reason:    "ticket created",
	})
	return t
}

// ID returns the immutable ticket id.
func (t *Ticket) ID() TicketID { return t.id }

// Requester returns the immutable requester id.
func (t *Ticket) Requester() UserID { return t.requester }

// Template returns the immutable template reference.
func (t *Ticket) Template() *Template { return t.template }

// SLADeadline returns the first-response deadline fixed at creation.
func (t *Ticket) SLADeadline() time.Time { return t.slaDeadline }

// Status returns the current status.
func (t *Ticket) Status() TicketStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Assignee returns the currently assigned agent, if any.
func (t *Ticket) Assignee() (UserID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.assignedTo == nil {
		return "", false
	}
	return *t.assignedTo, true
}

// UpdatedAt returns the last mutation time.
func (t *Ticket) UpdatedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.updatedAt
}

// ChangeStatus appends a StatusChange and moves the ticket to newStatus.
// Transitions are permitted from any non-terminal status to any other status.
// Entering CLOSED or ARCHIVED sets closed_at exactly once; the returned
// closedNow flag is true only for that first terminal transition so the
// caller can trigger transcript generation a single time.
func (t *Ticket) ChangeStatus(actor UserID, newStatus TicketStatus, reason string, now time.Time) (StatusChange, bool, error) {
	if _, err := ParseStatus(string(newStatus)); err != nil {
		return StatusChange{}, false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.IsTerminal() {
		return StatusChange{}, false, ErrTicketTerminal
	}

	change := StatusChange{
		Timestamp: now,
		Actor:     actor,
		From:      t.status,
		To:        newStatus,
		Reason:    reason,
	}
	t.statusHistory = append(t.statusHistory, change)
	t.status = newStatus
	t.updatedAt = now

	closedNow := false
	if newStatus.IsTerminal() && t.closedAt == nil {
		closedAt := now
		t.closedAt = &closedAt
		closedNow = true
	}
	return change, closedNow, nil
}

// AddMessage appends to the message log. Rejected on terminal tickets.
func (t *Ticket) AddMessage(actor UserID, content string, attachments []string, now time.Time) (MessageRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.IsTerminal() {
		return MessageRecord{}, ErrTicketTerminal
	}
	record := MessageRecord{
		Timestamp:   now,
		Actor:       actor,
		Content:     content,
		Attachments: append([]string(nil), attachments...),
	}
	t.messageLog = append(t.messageLog, record)
	t.updatedAt = now
	return record, nil
}

// RecordAssignment sets the assignee and appends an AssignmentRecord.
func (t *Ticket) RecordAssignment(assignee, assignedBy UserID, reason string, now time.Time) (AssignmentRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.IsTerminal() {
		return AssignmentRecord{}, ErrTicketTerminal
	}
	record := AssignmentRecord{
		Timestamp:  now,
		Assignee:   assignee,
		AssignedBy: assignedBy,
		Reason:     reason,
	}
	t.assignmentHistory = append(t.assignmentHistory, record)
	t.assignedTo = &assignee
	t.updatedAt = now
	return record, nil
}

// Snapshot copies the ticket's full state under the ticket lock.
func (t *Ticket) Snapshot() TicketSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := TicketSnapshot{
		ID:          t.id,
		Requester:   t.requester,
		Template:    t.template,
		Title:       t.title,
		Priority:    t.priority,
		Status:      t.status,
		CreatedAt:   t.createdAt,
		UpdatedAt:   t.updatedAt,
		SLADeadline: t.slaDeadline,
	}
	if t.closedAt != nil {
		closedAt := *t.closedAt
		snap.ClosedAt = &closedAt
	}
	if t.assignedTo != nil {
		assignee := *t.assignedTo
		snap.AssignedTo = &assignee
	}
	snap.Answers = make(map[string]string, len(t.answers))
	for k, v := range t.answers {
		snap.Answers[k] = v
	}
	snap.StatusHistory = append([]StatusChange(nil), t.statusHistory...)
	snap.MessageLog = append([]MessageRecord(nil), t.messageLog...)
	snap.AssignmentHistory = append([]AssignmentRecord(nil), t.assignmentHistory...)
	return snap
}
