package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/store"
)

// TicketCloser closes a ticket through the normal status-change path, so
// transcript generation and archival notifications still fire.
type TicketCloser interface {
	CloseTicket(ctx context.Context, actor domain.UserID, id domain.TicketID, reason string) error
}

// AutoCloseSweeper closes tickets that have sat in RESOLVED longer than the
// configured cutoff. Tickets in any other status are never touched.
type AutoCloseSweeper struct {
	store  *store.Store
	clock  store.Clock
	closer TicketCloser
	cutoff time.Duration
	logger *zap.Logger
}

// NewAutoCloseSweeper constructs the sweeper.
func NewAutoCloseSweeper(s *store.Store, clock store.Clock, closer TicketCloser, cutoff time.Duration, logger *zap.Logger) *AutoCloseSweeper {
	if clock == nil {
		clock = store.SystemClock{}
	}
	return &AutoCloseSweeper{
		store:  s,
		clock:  clock,
		closer: closer,
		cutoff: cutoff,
		logger: logger,
	}
}

// RunOnce performs one pass. Candidates are selected from a registry snapshot
// first; each close then runs per ticket outside any registry-wide section,
// and one ticket's failure never aborts the rest.
func (a *AutoCloseSweeper) RunOnce(ctx context.Context) {
	now := a.clock.Now()
	closed := 0
	for _, ticket := range a.store.All() {
		if ticket.Status() != domain.TicketStatusResolved {
			continue
		}
		if now.Sub(ticket.UpdatedAt()) < a.cutoff {
			continue
		}
		if err := a.closer.CloseTicket(ctx, domain.SystemUser, ticket.ID(), "auto-closed after resolution period"); err != nil {
			a.logger.Error("auto-close failed",
				zap.String("ticket_id", string(ticket.ID())),
				zap.Error(err))
			continue
		}
		closed++
	}
	if closed > 0 {
		a.logger.Info("auto-close sweep complete", zap.Int("closed", closed))
	}
}
