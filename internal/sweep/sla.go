package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/store"
)

// SLAMonitor periodically scans the registry for tickets past their
// first-response deadline and raises escalation events. Terminal tickets are
// always exempt. Depending on policy a breached ticket is escalated on every
// scan (the default) or a single time.
type SLAMonitor struct {
	store      *store.Store
	clock      store.Clock
	dispatcher events.Dispatcher
	policy     config.EscalationPolicy
	logger     *zap.Logger

	mu        sync.Mutex
	escalated map[domain.TicketID]struct{}
}

// NewSLAMonitor constructs the monitor.
func NewSLAMonitor(s *store.Store, clock store.Clock, dispatcher events.Dispatcher, policy config.EscalationPolicy, logger *zap.Logger) *SLAMonitor {
	if clock == nil {
		clock = store.SystemClock{}
	}
	return &SLAMonitor{
		store:      s,
		clock:      clock,
		dispatcher: dispatcher,
		policy:     policy,
		logger:     logger,
		escalated:  make(map[domain.TicketID]struct{}),
	}
}

// RunOnce performs one scan. Ticket references are collected first so the
// registry lock is never held across notification delivery. A failure on one
// ticket is logged and does not abort the rest of the pass.
func (m *SLAMonitor) RunOnce(ctx context.Context) {
	now := m.clock.Now()
	breached := 0
	for _, ticket := range m.store.All() {
		if err := m.checkTicket(ctx, ticket, now); err != nil {
			m.logger.Error("sla check failed",
				zap.String("ticket_id", string(ticket.ID())),
				zap.Error(err))
			continue
		}
		if m.isBreached(ticket, now) {
			breached++
		}
	}
	m.logger.Debug("sla scan complete", zap.Int("breached", breached))
}

func (m *SLAMonitor) isBreached(ticket *domain.Ticket, now time.Time) bool {
	return !ticket.Status().IsTerminal() && now.After(ticket.SLADeadline())
}

func (m *SLAMonitor) checkTicket(ctx context.Context, ticket *domain.Ticket, now time.Time) error {
	if !m.isBreached(ticket, now) {
		return nil
	}
	if m.policy == config.EscalateOnce && !m.markEscalated(ticket.ID()) {
		return nil
	}

	snap := ticket.Snapshot()
	return m.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventEscalationRaised,
		TicketID:  snap.ID,
		Actor:     domain.SystemUser,
		Timestamp: now,
		Payload: events.EscalationRaisedPayload{
			Ticket:       snap,
			SLADeadline:  snap.SLADeadline,
			BreachedBy:   now.Sub(snap.SLADeadline),
			SupportRoles: snap.Template.SupportRoles,
		},
	})
}

// markEscalated records the first escalation for a ticket, returning false on
// repeats.
func (m *SLAMonitor) markEscalated(id domain.TicketID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, done := m.escalated[id]; done {
		return false
	}
	m.escalated[id] = struct{}{}
	return true
}
