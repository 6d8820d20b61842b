package balancer

import (
	"errors"
	"sort"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/identity"
	"github.com/spec-kit/ticket-workflow/internal/store"
)

// ErrNoEligibleAgents is returned when no member holds any of the template's
// support roles. Callers treat it as a soft failure: the ticket stays
// unassigned.
var ErrNoEligibleAgents = errors.New("no eligible agents")

// ErrUnauthorizedAssignment is returned when a manual target lacks an
// eligible role or is a bot account.
var ErrUnauthorizedAssignment = errors.New("target not eligible for assignment")

// Balancer selects assignees for tickets. Automatic mode picks the eligible
// agent with the fewest non-terminal assigned tickets; ties break to the
// lexicographically smallest agent id, so repeated runs over the same state
// pick the same agent.
type Balancer struct {
	store     *store.Store
	directory identity.Directory
}

// New constructs a balancer over the given registry and directory.
func New(s *store.Store, directory identity.Directory) *Balancer {
	return &Balancer{store: s, directory: directory}
}

// AutoAssign selects the least-loaded eligible agent for the ticket and
// records the assignment. The load snapshot and the assignment write are not
// one atomic section; a concurrent assignment can at worst cause mild load
// imbalance.
func (b *Balancer) AutoAssign(ticket *domain.Ticket, actor domain.UserID, reason string) (domain.AssignmentRecord, error) {
	pool := b.eligiblePool(ticket.Template())
	if len(pool) == 0 {
		return domain.AssignmentRecord{}, ErrNoEligibleAgents
	}

	selected := pool[0]
	selectedLoad := b.store.OpenCountByAssignee(selected.ID)
	for _, candidate := range pool[1:] {
		load := b.store.OpenCountByAssignee(candidate.ID)
		if load < selectedLoad {
			selected = candidate
			selectedLoad = load
		}
	}
	return b.store.Assign(ticket, selected.ID, actor, reason)
}

// AssignTo records a manual assignment after validating the target holds one
// of the template's support roles and is not a bot account.
func (b *Balancer) AssignTo(ticket *domain.Ticket, actor, target domain.UserID, reason string) (domain.AssignmentRecord, error) {
	member, ok := b.directory.Resolve(target)
	if !ok {
		return domain.AssignmentRecord{}, ErrUnauthorizedAssignment
	}
	if member.Bot {
		return domain.AssignmentRecord{}, ErrUnauthorizedAssignment
	}
	if !member.HasAnyRole(ticket.Template().SupportRoles) {
		return domain.AssignmentRecord{}, ErrUnauthorizedAssignment
	}
	return b.store.Assign(ticket, member.ID, actor, reason)
}

// eligiblePool returns the de-duplicated union of members holding any of the
// template's support roles, bots excluded, sorted by id.
func (b *Balancer) eligiblePool(template *domain.Template) []identity.Member {
	seen := map[domain.UserID]identity.Member{}
	for _, role := range template.SupportRoles {
		for _, member := range b.directory.MembersOf(role) {
			if member.Bot {
				continue
			}
			seen[member.ID] = member
		}
	}
	pool := make([]identity.Member, 0, len(seen))
	for _, member := range seen {
		pool = append(pool, member)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool
}
