package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const transcriptSchema = `
CREATE TABLE IF NOT EXISTS ticket_transcripts (
    ticket_id     TEXT PRIMARY KEY,
    requester_id  TEXT NOT NULL,
    template_id   TEXT NOT NULL,
    final_status  TEXT NOT NULL,
    closed_at     TIMESTAMPTZ NOT NULL,
    transcript    TEXT NOT NULL,
    archived_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_ticket_transcripts_requester
    ON ticket_transcripts (requester_id);
`

// RunMigrations applies the archive schema. The in-memory registry is the
// authoritative store; postgres only holds the append-only transcript
// archive, so bootstrap is a single idempotent statement set.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	if _, err := pool.Exec(ctx, transcriptSchema); err != nil {
		return err
	}
	logger.Info("archive schema ready")
	return nil
}
