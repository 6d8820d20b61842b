package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/config"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/observability"
)

// NotificationService delivers workflow events to collaborators: escalation
// pings, panel refreshes, channel provisioning and transcript delivery. A
// delivery failure is logged and never blocks the operation that raised the
// event.
type NotificationService struct {
	dispatcher events.Dispatcher
	channels   ChannelPort
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, channels ChannelPort, metrics *observability.Metrics, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		channels:   channels,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to workflow events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventChannelProvisioningNeeded, n.handleChannelProvisioning)
	n.dispatcher.Subscribe(events.EventPanelRenderNeeded, n.handlePanelRender)
	n.dispatcher.Subscribe(events.EventEscalationRaised, n.handleEscalationRaised)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket created",
		zap.String("ticket_id", string(event.TicketID)),
		zap.String("actor", string(event.Actor)))
	n.sendWebhookStub(event, n.cfg.WebhookURL)
	return nil
}

func (n *NotificationService) handleChannelProvisioning(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ChannelProvisioningPayload)
	if !ok {
		return nil
	}
	ref, err := n.channels.Provision(ctx, payload.Ticket, payload.ChannelSlug)
	if err != nil {
		// The ticket itself persists; the requester can retry provisioning.
		n.logger.Error("channel provisioning failed",
			zap.String("ticket_id", string(event.TicketID)),
			zap.Error(err))
		return err
	}
	n.logger.Info("channel provisioned",
		zap.String("ticket_id", string(event.TicketID)),
		zap.String("channel", ref))
	if msg := payload.Ticket.Template.WelcomeMessage; msg != "" {
		n.logger.Info("welcome message posted",
			zap.String("channel", ref),
			zap.String("message", msg))
	}
	return nil
}

func (n *NotificationService) handlePanelRender(ctx context.Context, event events.Event) error {
	n.logger.Debug("panel refresh requested", zap.String("ticket_id", string(event.TicketID)))
	return nil
}

func (n *NotificationService) handleEscalationRaised(ctx context.Context, event events.Event) error {
	n.metrics.EscalationRaised()
	payload, _ := event.Payload.(events.EscalationRaisedPayload)
	n.logger.Warn("sla breached",
		zap.String("ticket_id", string(event.TicketID)),
		zap.Time("sla_deadline", payload.SLADeadline),
		zap.Duration("breached_by", payload.BreachedBy))
	n.sendWebhookStub(event, n.cfg.WebhookURL)
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("ticket closed",
		zap.String("ticket_id", string(event.TicketID)),
		zap.String("actor", string(event.Actor)),
		zap.Int("transcript_bytes", len(payload.Transcript)))
	n.sendWebhookStub(event, n.cfg.TranscriptWebhookURL)

	if err := n.channels.Archive(ctx, payload.Ticket); err != nil {
		n.logger.Error("channel archival failed",
			zap.String("ticket_id", string(event.TicketID)),
			zap.Error(err))
	}
	return nil
}

func (n *NotificationService) sendWebhookStub(event events.Event, url string) {
	if strings.TrimSpace(url) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", url),
		zap.String("ticket_id", string(event.TicketID)),
		zap.String("event_type", string(event.Type)))
}
