package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-workflow/internal/balancer"
	"github.com/spec-kit/ticket-workflow/internal/catalog"
	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/events"
	"github.com/spec-kit/ticket-workflow/internal/identity"
	"github.com/spec-kit/ticket-workflow/internal/observability"
	"github.com/spec-kit/ticket-workflow/internal/store"
	"github.com/spec-kit/ticket-workflow/internal/transcript"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// WorkflowService coordinates the ticket lifecycle: creation, status
// transitions, messaging, assignment and close. It is the only mutation path
// into the registry; the chat-platform adapter and the background sweeps both
// call through here.
type WorkflowService struct {
	catalog    *catalog.Catalog
	store      *store.Store
	balancer   *balancer.Balancer
	directory  identity.Directory
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	clock      store.Clock
	logger     *zap.Logger
	adminRoles []domain.RoleID
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	Catalog    *catalog.Catalog
	Store      *store.Store
	Balancer   *balancer.Balancer
	Directory  identity.Directory
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Clock      store.Clock
	Logger     *zap.Logger
	AdminRoles []domain.RoleID
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	TemplateID  domain.TemplateID
	Title       string
	Description string
	Priority    domain.TicketPriority
	Answers     map[string]string
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	clock := deps.Clock
	if clock == nil {
		clock = store.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		catalog:    deps.Catalog,
		store:      deps.Store,
		balancer:   deps.Balancer,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		clock:      clock,
		logger:     logger,
		adminRoles: deps.AdminRoles,
	}
}

// CreateTicket creates a ticket from a template and attempts auto-assignment.
// An empty eligible pool is a soft failure: the ticket is still created and
// returned unassigned.
func (s *WorkflowService) CreateTicket(ctx context.Context, requester domain.UserID, input CreateTicketInput) (domain.TicketSnapshot, error) {
	template, ok := s.catalog.Get(input.TemplateID)
	if !ok {
		return domain.TicketSnapshot{}, apperrors.NewNotFound("template", map[string]any{"template_id": input.TemplateID})
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.TicketSnapshot{}, apperrors.NewValidationError("title required", nil)
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return domain.TicketSnapshot{}, apperrors.NewValidationError("description required", nil)
	}
	for _, question := range template.Questions {
		if question.Required && strings.TrimSpace(input.Answers[question.Field]) == "" {
			return domain.TicketSnapshot{}, apperrors.NewValidationError("required intake answer missing", map[string]any{"field": question.Field})
		}
	}
	priority, err := domain.ParsePriority(string(input.Priority))
	if err != nil {
		return domain.TicketSnapshot{}, apperrors.NewValidationError(err.Error(), nil)
	}

	ticket, err := s.store.CreateTicket(requester, template, title, description, priority, input.Answers)
	if err != nil {
		if errors.Is(err, store.ErrTooManyOpenTickets) {
			return domain.TicketSnapshot{}, apperrors.NewConflict("too many open tickets", map[string]any{"requester": requester})
		}
		return domain.TicketSnapshot{}, apperrors.MapError(err)
	}
	s.metrics.TicketCreated()

	snap := ticket.Snapshot()
	s.publish(ctx, events.EventTicketCreated, snap.ID, requester, events.TicketCreatedPayload{Ticket: snap})
	s.publish(ctx, events.EventChannelProvisioningNeeded, snap.ID, requester, events.ChannelProvisioningPayload{
		Ticket:      snap,
		ChannelSlug: template.ChannelSlug,
	})
	s.publish(ctx, events.EventPanelRenderNeeded, snap.ID, requester, events.PanelRenderPayload{Ticket: snap})

	record, err := s.balancer.AutoAssign(ticket, domain.SystemUser, "auto-assigned on creation")
	switch {
	case err == nil:
		snap = ticket.Snapshot()
		s.publish(ctx, events.EventTicketAssigned, snap.ID, domain.SystemUser, events.TicketAssignedPayload{
			Assignee:   record.Assignee,
			AssignedBy: record.AssignedBy,
			Reason:     record.Reason,
		})
		s.publish(ctx, events.EventPanelRenderNeeded, snap.ID, domain.SystemUser, events.PanelRenderPayload{Ticket: snap})
	case errors.Is(err, balancer.ErrNoEligibleAgents):
		s.metrics.AssignmentFailed()
		s.logger.Warn("no eligible agents, ticket left unassigned", zap.String("ticket_id", string(snap.ID)))
	default:
		s.logger.Error("auto-assignment failed", zap.String("ticket_id", string(snap.ID)), zap.Error(err))
	}
	return snap, nil
}

// AddMessage appends a message to a ticket's log. Permitted for the requester
// and for staff eligible for the ticket's template; rejected on terminal
// tickets.
func (s *WorkflowService) AddMessage(ctx context.Context, actor domain.UserID, id domain.TicketID, content string, attachments []string) (domain.MessageRecord, error) {
	ticket, err := s.getTicket(id)
	if err != nil {
		return domain.MessageRecord{}, err
	}
	if strings.TrimSpace(content) == "" {
		return domain.MessageRecord{}, apperrors.NewValidationError("content required", nil)
	}
	if actor != ticket.Requester() && !s.canManage(actor, ticket.Template()) {
		return domain.MessageRecord{}, apperrors.NewForbidden("not a participant of this ticket")
	}

	record, err := ticket.AddMessage(actor, content, attachments, s.clock.Now())
	if err != nil {
		return domain.MessageRecord{}, mapTicketError(err)
	}
	s.publish(ctx, events.EventTicketMessageAdded, id, actor, events.TicketMessageAddedPayload{
		Author:      actor,
		BodyPreview: preview(content, 120),
		Attachments: len(attachments),
	})
	s.publish(ctx, events.EventPanelRenderNeeded, id, actor, events.PanelRenderPayload{Ticket: ticket.Snapshot()})
	return record, nil
}

// ChangeStatus moves a ticket to newStatus. Staff-only, except that closing
// is also open to the requester via CloseTicket. Entering a terminal status
// triggers transcript generation and the archival notification exactly once.
func (s *WorkflowService) ChangeStatus(ctx context.Context, actor domain.UserID, id domain.TicketID, newStatus domain.TicketStatus, reason string) (domain.TicketSnapshot, error) {
	ticket, err := s.getTicket(id)
	if err != nil {
		return domain.TicketSnapshot{}, err
	}
	if !s.canManage(actor, ticket.Template()) {
		return domain.TicketSnapshot{}, apperrors.NewForbidden("status changes require a support role")
	}
	return s.transition(ctx, ticket, actor, newStatus, reason)
}

// CloseTicket closes a ticket through the normal transition path. Permitted
// for the requester, eligible staff and the system actor (auto-close sweep).
func (s *WorkflowService) CloseTicket(ctx context.Context, actor domain.UserID, id domain.TicketID, reason string) error {
	ticket, err := s.getTicket(id)
	if err != nil {
		return err
	}
	if actor != domain.SystemUser && actor != ticket.Requester() && !s.canManage(actor, ticket.Template()) {
		return apperrors.NewForbidden("not allowed to close this ticket")
	}
	_, err = s.transition(ctx, ticket, actor, domain.TicketStatusClosed, reason)
	return err
}

// Assign assigns a ticket either to an explicit target or, when target is
// nil, to the least-loaded eligible agent. Staff-only.
func (s *WorkflowService) Assign(ctx context.Context, actor domain.UserID, id domain.TicketID, target *domain.UserID, reason string) (domain.AssignmentRecord, error) {
	ticket, err := s.getTicket(id)
	if err != nil {
		return domain.AssignmentRecord{}, err
	}
	if !s.canManage(actor, ticket.Template()) {
		return domain.AssignmentRecord{}, apperrors.NewForbidden("assignment requires a support role")
	}

	var record domain.AssignmentRecord
	if target != nil {
		record, err = s.balancer.AssignTo(ticket, actor, *target, reason)
	} else {
		record, err = s.balancer.AutoAssign(ticket, actor, reason)
	}
	if err != nil {
		switch {
		case errors.Is(err, balancer.ErrNoEligibleAgents):
			s.metrics.AssignmentFailed()
			return domain.AssignmentRecord{}, apperrors.NewConflict("no eligible agents", map[string]any{"ticket_id": id})
		case errors.Is(err, balancer.ErrUnauthorizedAssignment):
			return domain.AssignmentRecord{}, apperrors.NewForbidden("target not eligible for assignment")
		default:
			return domain.AssignmentRecord{}, mapTicketError(err)
		}
	}
	s.publish(ctx, events.EventTicketAssigned, id, actor, events.TicketAssignedPayload{
		Assignee:   record.Assignee,
		AssignedBy: record.AssignedBy,
		Reason:     record.Reason,
	})
	s.publish(ctx, events.EventPanelRenderNeeded, id, actor, events.PanelRenderPayload{Ticket: ticket.Snapshot()})
	return record, nil
}

// ListMyTickets returns snapshots of the requester's tickets.
func (s *WorkflowService) ListMyTickets(requester domain.UserID) []domain.TicketSnapshot {
	return s.store.ListByRequester(requester)
}

// ListAssigned returns snapshots of tickets assigned to the agent.
func (s *WorkflowService) ListAssigned(agent domain.UserID) []domain.TicketSnapshot {
	return s.store.ListByAssignee(agent)
}

// GetTicketInfo returns a snapshot of one ticket. Visible to the requester
// and eligible staff.
func (s *WorkflowService) GetTicketInfo(actor domain.UserID, id domain.TicketID) (domain.TicketSnapshot, error) {
	ticket, err := s.getTicket(id)
	if err != nil {
		return domain.TicketSnapshot{}, err
	}
	if actor != ticket.Requester() && !s.canManage(actor, ticket.Template()) {
		return domain.TicketSnapshot{}, apperrors.NewForbidden("not a participant of this ticket")
	}
	return ticket.Snapshot(), nil
}

// Transcript renders the ticket's transcript from current stored state. A
// transcript can be produced at any time; for an unchanged ticket the output
// is byte-identical across calls.
func (s *WorkflowService) Transcript(actor domain.UserID, id domain.TicketID) (string, error) {
	snap, err := s.GetTicketInfo(actor, id)
	if err != nil {
		return "", err
	}
	return transcript.Generate(snap), nil
}

// Stats summarizes registry activity.
type Stats struct {
	Total      int                         `json:"total"`
	Open       int                         `json:"open"`
	Closed     int                         `json:"closed"`
	ByStatus   map[domain.TicketStatus]int `json:"by_status"`
	ByTemplate map[string]int              `json:"by_template"`
	Recent     []domain.TicketSnapshot     `json:"recent"`
}

// TicketStats computes totals across the registry.
func (s *WorkflowService) TicketStats() Stats {
	stats := Stats{
		ByStatus:   make(map[domain.TicketStatus]int),
		ByTemplate: make(map[string]int),
	}
	snaps := make([]domain.TicketSnapshot, 0, s.store.Len())
	for _, ticket := range s.store.All() {
		snaps = append(snaps, ticket.Snapshot())
	}
	for _, snap := range snaps {
		stats.Total++
		stats.ByStatus[snap.Status]++
		stats.ByTemplate[snap.Template.Name]++
		if snap.Status.IsTerminal() {
			stats.Closed++
		} else {
			stats.Open++
		}
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].CreatedAt.After(snaps[j].CreatedAt) })
	if len(snaps) > 5 {
		snaps = snaps[:5]
	}
	stats.Recent = snaps
	return stats
}

// transition performs the status change and fires the follow-up events. The
// closedNow flag from the ticket guards transcript generation so it runs
// exactly once per ticket even when close races with another terminal
// transition.
func (s *WorkflowService) transition(ctx context.Context, ticket *domain.Ticket, actor domain.UserID, newStatus domain.TicketStatus, reason string) (domain.TicketSnapshot, error) {
	change, closedNow, err := ticket.ChangeStatus(actor, newStatus, reason, s.clock.Now())
	if err != nil {
		return domain.TicketSnapshot{}, mapTicketError(err)
	}

	snap := ticket.Snapshot()
	s.publish(ctx, events.EventTicketStatusChanged, snap.ID, actor, events.TicketStatusChangedPayload{
		OldStatus: change.From,
		NewStatus: change.To,
		Reason:    reason,
	})
	if closedNow {
		s.metrics.TicketClosed()
		text := transcript.Generate(snap)
		s.publish(ctx, events.EventTicketClosed, snap.ID, actor, events.TicketClosedPayload{
			Ticket:     snap,
			Reason:     reason,
			Transcript: text,
		})
	} else {
		s.publish(ctx, events.EventPanelRenderNeeded, snap.ID, actor, events.PanelRenderPayload{Ticket: snap})
	}
	return snap, nil
}

func (s *WorkflowService) getTicket(id domain.TicketID) (*domain.Ticket, error) {
	ticket, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrTicketNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// canManage reports whether the actor holds one of the template's support
// roles or a global admin role. Bot accounts never qualify.
func (s *WorkflowService) canManage(actor domain.UserID, template *domain.Template) bool {
	member, ok := s.directory.Resolve(actor)
	if !ok || member.Bot {
		return false
	}
	return member.HasAnyRole(template.SupportRoles) || member.HasAnyRole(s.adminRoles)
}

func (s *WorkflowService) publish(ctx context.Context, eventType events.EventType, ticketID domain.TicketID, actor domain.UserID, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     actor,
		Timestamp: s.clock.Now(),
		Payload:   payload,
	})
}

func mapTicketError(err error) error {
	if errors.Is(err, domain.ErrTicketTerminal) {
		return apperrors.NewConflict("ticket is closed", nil)
	}
	return apperrors.MapError(err)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
