package sweep

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/store"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) ofType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func testTemplate() *domain.Template {
	return &domain.Template{
		ID:           "SUPPORT",
		Name:         "General Support",
		SupportRoles: []domain.RoleID{"support"},
		SLA:          domain.SLAWindow{ResponseHours: 12, ResolutionHours: 48},
	}
}

func create(t *testing.T, s *store.Store) *domain.Ticket {
	t.Helper()
	ticket, err := s.CreateTicket("user-1", testTemplate(), "t", "d", domain.TicketPriorityMedium, nil)
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	return ticket
}

func TestSLAMonitorEscalatesPastDeadline(t *testing.T) {
	clock := newManualClock()
	s := store.New(100, clock)
	dispatcher := &capturingDispatcher{}
	monitor := NewSLAMonitor(s, clock, dispatcher, config.EscalateRecurring, zap.NewNop())

	ticket := create(t, s)

	// Inside the 12h response window: nothing fires.
	clock.Advance(11 * time.Hour)
	monitor.RunOnce(context.Background())
	if got := len(dispatcher.ofType(events.EventEscalationRaised)); got != 0 {
		t.Fatalf("escalations before deadline = %d, want 0", got)
	}

	// Past the deadline.
	clock.Advance(2 * time.Hour)
	monitor.RunOnce(context.Background())
	raised := dispatcher.ofType(events.EventEscalationRaised)
	if len(raised) != 1 {
		t.Fatalf("escalations = %d, want 1", len(raised))
	}
	payload, ok := raised[0].Payload.(events.EscalationRaisedPayload)
	if !ok {
		t.Fatalf("payload type %T", raised[0].Payload)
	}
	if payload.Ticket.ID != ticket.ID() {
		t.Fatalf("escalated %s, want %s", payload.Ticket.ID, ticket.ID())
	}
	if payload.BreachedBy <= 0 {
		t.Fatalf("breached by %v, want positive", payload.BreachedBy)
	}
}

func TestSLAMonitorRecurringPolicyReEscalates(t *testing.T) {
	clock := newManualClock()
	s := store.New(100, clock)
	dispatcher := &capturingDispatcher{}
	monitor := NewSLAMonitor(s, clock, dispatcher, config.EscalateRecurring, zap.NewNop())

	create(t, s)
	clock.Advance(13 * time.Hour)

	monitor.RunOnce(context.Background())
	monitor.RunOnce(context.Background())
	if got := len(dispatcher.ofType(events.EventEscalationRaised)); got != 2 {
		t.Fatalf("escalations = %d, want 2 under recurring policy", got)
	}
}

func TestSLAMonitorOncePolicyEscalatesSingleTime(t *testing.T) {
	clock := newManualClock()
	s := store.New(100, clock)
	dispatcher := &capturingDispatcher{}
	monitor := NewSLAMonitor(s, clock, dispatcher, config.EscalateOnce, zap.NewNop())

	create(t, s)
	clock.Advance(13 * time.Hour)

	monitor.RunOnce(context.Background())
	monitor.RunOnce(context.Background())
	if got := len(dispatcher.ofType(events.EventEscalationRaised)); got != 1 {
		t.Fatalf("escalations = %d, want 1 under once policy", got)
	}
}

func TestSLAMonitorSkipsTerminalTickets(t *testing.T) {
	clock := newManualClock()
	s := store.New(100, clock)
	dispatcher := &capturingDispatcher{}
	monitor := NewSLAMonitor(s, clock, dispatcher, config.EscalateRecurring, zap.NewNop())

	ticket := create(t, s)
	if _, _, err := ticket.ChangeStatus("agent-1", domain.TicketStatusClosed, "", clock.Now()); err != nil {
		t.Fatalf("close: %v", err)
	}
	clock.Advance(48 * time.Hour)

	monitor.RunOnce(context.Background())
	if got := len(dispatcher.ofType(events.EventEscalationRaised)); got != 0 {
		t.Fatalf("escalations = %d, want 0 for closed ticket", got)
	}
}

func TestEscalationStopsOnceTicketCloses(t *testing.T) {
	clock := newManualClock()
	s := store.New(100, clock)
	dispatcher := &capturingDispatcher{}
	monitor := NewSLAMonitor(s, clock, dispatcher, config.EscalateRecurring, zap.NewNop())

	ticket := create(t, s)

	clock.Advance(13 * time.Hour)
	monitor.RunOnce(context.Background())
	if got := len(dispatcher.ofType(events.EventEscalationRaised)); got != 1 {
		t.Fatalf("escalations = %d, want 1", got)
	}

	clock.Advance(time.Hour)
	if _, _, err := ticket.ChangeStatus("agent-1", domain.TicketStatusClosed, "resolved manually", clock.Now()); err != nil {
		t.Fatalf("close: %v", err)
	}

	clock.Advance(time.Hour)
	monitor.RunOnce(context.Background())
	if got := len(dispatcher.ofType(events.EventEscalationRaised)); got != 1 {
		t.Fatalf("escalations after close = %d, want 1", got)
	}
	if snap := ticket.Snapshot(); snap.ClosedAt == nil {
		t.Fatal("closed_at not set")
	}
}

type recordingCloser struct {
	store  *store.Store
	clock  store.Clock
	closed []domain.TicketID
}

func (r *recordingCloser) CloseTicket(_ context.Context, actor domain.UserID, id domain.TicketID, reason string) error {
	ticket, err := r.store.Get(id)
	if err != nil {
		return err
	}
	if _, _, err := ticket.ChangeStatus(actor, domain.TicketStatusClosed, reason, r.clock.Now()); err != nil {
		return err
	}
	r.closed = append(r.closed, id)
	return nil
}

func TestAutoCloseSweepsStaleResolvedTickets(t *testing.T) {
	clock := newManualClock()
	s := store.New(100, clock)
	closer := &recordingCloser{store: s, clock: clock}
	sweeper := NewAutoCloseSweeper(s, clock, closer, 7*24*time.Hour, zap.NewNop())

	resolved := create(t, s)
	if _, _, err := resolved.ChangeStatus("agent-1", domain.TicketStatusResolved, "fixed", clock.Now()); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	inProgress := create(t, s)
	if _, _, err := inProgress.ChangeStatus("agent-1", domain.TicketStatusInProgress, "", clock.Now()); err != nil {
		t.Fatalf("progress: %v", err)
	}

	// Under the cutoff: untouched.
	clock.Advance(6 * 24 * time.Hour)
	sweeper.RunOnce(context.Background())
	if len(closer.closed) != 0 {
		t.Fatalf("closed %v before cutoff", closer.closed)
	}

	// Past the cutoff: only the resolved ticket goes.
	clock.Advance(2 * 24 * time.Hour)
	sweeper.RunOnce(context.Background())
	if len(closer.closed) != 1 || closer.closed[0] != resolved.ID() {
		t.Fatalf("closed = %v, want [%s]", closer.closed, resolved.ID())
	}
	if inProgress.Status() != domain.TicketStatusInProgress {
		t.Fatalf("in-progress ticket moved to %s", inProgress.Status())
	}
}

func TestAutoCloseActivityResetsTimer(t *testing.T) {
	clock := newManualClock()
	s := store.New(100, clock)
	closer := &recordingCloser{store: s, clock: clock}
	sweeper := NewAutoCloseSweeper(s, clock, closer, 7*24*time.Hour, zap.NewNop())

	ticket := create(t, s)
	if _, _, err := ticket.ChangeStatus("agent-1", domain.TicketStatusResolved, "", clock.Now()); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	clock.Advance(6 * 24 * time.Hour)
	if _, err := ticket.AddMessage("user-1", "is this really fixed?", nil, clock.Now()); err != nil {
		t.Fatalf("message: %v", err)
	}

	// Sweep lands 7 days after resolution but only 1 day after the last
	// message, so the ticket survives.
	clock.Advance(24 * time.Hour)
	sweeper.RunOnce(context.Background())
	if len(closer.closed) != 0 {
		t.Fatalf("closed %v despite recent activity", closer.closed)
	}
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	scheduler := NewScheduler(zap.NewNop())
	closer := &recordingCloser{}
	sweeper := NewAutoCloseSweeper(store.New(1, nil), nil, closer, time.Hour, zap.NewNop())
	if err := scheduler.Register("auto-close", "not a schedule", sweeper); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if err := scheduler.Register("auto-close", "@every 24h", sweeper); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}
