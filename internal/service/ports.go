package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// ChannelPort provisions and archives chat channels for tickets. The real
// implementation lives in the chat-platform collaborator; the engine only
// asks for work and tolerates delayed completion.
type ChannelPort interface {
	// Provision creates a channel/thread for the ticket and returns its
	// reference.
	Provision(ctx context.Context, ticket domain.TicketSnapshot, slug string) (string, error)
	// Archive moves the ticket's channel to the archive.
	Archive(ctx context.Context, ticket domain.TicketSnapshot) error
}

// LogChannelPort is the default ChannelPort: it only records what a real
// collaborator would do.
type LogChannelPort struct {
	Logger *zap.Logger
}

// Provision implements ChannelPort.
func (p LogChannelPort) Provision(ctx context.Context, ticket domain.TicketSnapshot, slug string) (string, error) {
	ref := slug + "-" + strings.ToLower(string(ticket.ID))
	p.Logger.Info("channel provisioning requested",
		zap.String("ticket_id", string(ticket.ID)),
		zap.String("channel", ref))
	return ref, nil
}

// Archive implements ChannelPort.
func (p LogChannelPort) Archive(ctx context.Context, ticket domain.TicketSnapshot) error {
	p.Logger.Info("channel archival requested", zap.String("ticket_id", string(ticket.ID)))
	return nil
}
