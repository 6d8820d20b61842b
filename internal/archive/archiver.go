package archive

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
)

// cacheTTL bounds how long transcripts stay in the cache. The archive table
// and regeneration from the registry remain available afterwards.
const cacheTTL = 30 * 24 * time.Hour

// Archiver persists transcripts of closed tickets: an append-only postgres
// row for durability and a redis entry for fast retrieval. Both sinks are
// optional and write-behind; a failure here never blocks the close
// transition, because the transcript is a pure function of stored state and
// can always be regenerated.
type Archiver struct {
	pool   *pgxpool.Pool
	cache  *redis.Client
	logger *zap.Logger
}

// NewArchiver constructs the archiver. Either sink may be nil.
func NewArchiver(pool *pgxpool.Pool, cache *redis.Client, logger *zap.Logger) *Archiver {
	return &Archiver{pool: pool, cache: cache, logger: logger}
}

// RegisterHandlers subscribes to close events.
func (a *Archiver) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketClosed, a.handleTicketClosed)
}

func (a *Archiver) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	a.persist(ctx, payload.Ticket, payload.Transcript)
	a.cacheTranscript(ctx, payload.Ticket.ID, payload.Transcript)
	return nil
}

// CachedTranscript returns the cached transcript for a ticket, if present.
func (a *Archiver) CachedTranscript(ctx context.Context, id domain.TicketID) (string, bool) {
	if a == nil || a.cache == nil {
		return "", false
	}
	text, err := a.cache.Get(ctx, cacheKey(id)).Result()
	if err != nil {
		return "", false
	}
	return text, true
}

func (a *Archiver) persist(ctx context.Context, ticket domain.TicketSnapshot, text string) {
	if a.pool == nil {
		return
	}
	const query = `
        INSERT INTO ticket_transcripts (ticket_id, requester_id, template_id, final_status, closed_at, transcript)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (ticket_id) DO NOTHING`
	closedAt := ticket.UpdatedAt
	if ticket.ClosedAt != nil {
		closedAt = *ticket.ClosedAt
	}
	_, err := a.pool.Exec(ctx, query,
		string(ticket.ID),
		string(ticket.Requester),
		string(ticket.Template.ID),
		string(ticket.Status),
		closedAt,
		text,
	)
	if err != nil {
		a.logger.Error("transcript archive insert failed",
			zap.String("ticket_id", string(ticket.ID)),
			zap.Error(err))
	}
}

func (a *Archiver) cacheTranscript(ctx context.Context, id domain.TicketID, text string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, cacheKey(id), text, cacheTTL).Err(); err != nil {
		a.logger.Warn("transcript cache write failed",
			zap.String("ticket_id", string(id)),
			zap.Error(err))
	}
}

func cacheKey(id domain.TicketID) string {
	return "transcript:" + string(id)
}
