package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// ErrTooManyOpenTickets is returned when a requester already holds the
// maximum number of non-terminal tickets.
var ErrTooManyOpenTickets = errors.New("too many open tickets")

// ErrTicketNotFound is returned when no ticket exists for an id.
var ErrTicketNotFound = errors.New("ticket not found")

// Store is the authoritative in-memory ticket registry. The registry lock
// guards the maps and indexes only; per-ticket field mutations are serialized
// by each ticket's own mutex. Lock order is always registry before ticket.
// Tickets are never deleted; closed tickets stay retrievable for transcripts.
type Store struct {
	mu sync.RWMutex

	maxPerUser int
	clock      Clock

	tickets     map[domain.TicketID]*domain.Ticket
	byRequester map[domain.UserID][]domain.TicketID
	byAssignee  map[domain.UserID]map[domain.TicketID]struct{}
}

// New constructs a store enforcing maxPerUser non-terminal tickets per
// requester.
func New(maxPerUser int, clock Clock) *Store {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Store{
		maxPerUser:  maxPerUser,
		clock:       clock,
		tickets:     make(map[domain.TicketID]*domain.Ticket),
		byRequester: make(map[domain.UserID][]domain.TicketID),
		byAssignee:  make(map[domain.UserID]map[domain.TicketID]struct{}),
	}
}

// CreateTicket checks the requester's open-ticket cap and inserts the new
// ticket under one exclusive section, so concurrent creates by the same
// requester cannot both slip under the cap.
func (s *Store) CreateTicket(requester domain.UserID, template *domain.Template, title, description string, priority domain.TicketPriority, answers map[string]string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	open := 0
	for _, id := range s.byRequester[requester] {
		if !s.tickets[id].Status().IsTerminal() {
			open++
		}
	}
	if open >= s.maxPerUser {
		return nil, ErrTooManyOpenTickets
	}

	ticket := domain.NewTicket(requester, template, title, description, priority, answers, s.clock.Now())
	s.tickets[ticket.ID()] = ticket
	s.byRequester[requester] = append(s.byRequester[requester], ticket.ID())
	return ticket, nil
}

// Get returns the ticket for id.
func (s *Store) Get(id domain.TicketID) (*domain.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return ticket, nil
}

// Assign records an assignment on the ticket and keeps the assignee index in
// step with it.
func (s *Store) Assign(ticket *domain.Ticket, assignee, assignedBy domain.UserID, reason string) (domain.AssignmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, hadPrevious := ticket.Assignee()
	record, err := ticket.RecordAssignment(assignee, assignedBy, reason, s.clock.Now())
	if err != nil {
		return domain.AssignmentRecord{}, err
	}
	if hadPrevious {
		delete(s.byAssignee[previous], ticket.ID())
	}
	if s.byAssignee[assignee] == nil {
		s.byAssignee[assignee] = make(map[domain.TicketID]struct{})
	}
	s.byAssignee[assignee][ticket.ID()] = struct{}{}
	return record, nil
}

// ListByRequester returns snapshots of the requester's tickets, oldest first.
// Snapshots may be briefly stale relative to concurrent mutations.
func (s *Store) ListByRequester(requester domain.UserID) []domain.TicketSnapshot {
	s.mu.RLock()
	ids := append([]domain.TicketID(nil), s.byRequester[requester]...)
	tickets := make([]*domain.Ticket, 0, len(ids))
	for _, id := range ids {
		tickets = append(tickets, s.tickets[id])
	}
	s.mu.RUnlock()

	return snapshotAll(tickets)
}

// ListByAssignee returns snapshots of tickets currently assigned to the agent.
func (s *Store) ListByAssignee(agent domain.UserID) []domain.TicketSnapshot {
	s.mu.RLock()
	tickets := make([]*domain.Ticket, 0, len(s.byAssignee[agent]))
	for id := range s.byAssignee[agent] {
		tickets = append(tickets, s.tickets[id])
	}
	s.mu.RUnlock()

	snaps := snapshotAll(tickets)
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.Before(snaps[j].CreatedAt) })
	return snaps
}

// OpenCountByAssignee counts non-terminal tickets assigned to the agent. Used
// by the assignment balancer for load computation.
func (s *Store) OpenCountByAssignee(agent domain.UserID) int {
	s.mu.RLock()
	tickets := make([]*domain.Ticket, 0, len(s.byAssignee[agent]))
	for id := range s.byAssignee[agent] {
		tickets = append(tickets, s.tickets[id])
	}
	s.mu.RUnlock()

	count := 0
	for _, t := range tickets {
		if !t.Status().IsTerminal() {
			count++
		}
	}
	return count
}

// All returns every ticket in the registry. Sweeps iterate the result outside
// the registry lock so that slow per-ticket work never blocks foreground
// operations.
func (s *Store) All() []*domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	return out
}

// Len returns the number of tickets ever created.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}

func snapshotAll(tickets []*domain.Ticket) []domain.TicketSnapshot {
	snaps := make([]domain.TicketSnapshot, 0, len(tickets))
	for _, t := range tickets {
		snaps = append(snaps, t.Snapshot())
	}
	return snaps
}
