package identity

import (
	"sort"
	"sync"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// Member is a resolved chat-platform account.
type Member struct {
	ID    domain.UserID
	Name  string
	Roles []domain.RoleID
	Bot   bool
}

// HasRole reports whether the member holds the given role.
func (m Member) HasRole(role domain.RoleID) bool {
	for _, r := range m.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the member holds any of the given roles.
func (m Member) HasAnyRole(roles []domain.RoleID) bool {
	for _, role := range roles {
		if m.HasRole(role) {
			return true
		}
	}
	return false
}

// Directory resolves user and role membership. The chat platform is the
// source of truth; this interface keeps the core testable without one.
type Directory interface {
	// Resolve looks up a member by id.
	Resolve(id domain.UserID) (Member, bool)
	// MembersOf lists members holding the role, in stable id order.
	MembersOf(role domain.RoleID) []Member
}

// MemoryDirectory is an in-memory Directory, seeded at startup or by tests.
type MemoryDirectory struct {
	mu      sync.RWMutex
	members map[domain.UserID]Member
}

// NewMemoryDirectory builds a directory from the given members.
func NewMemoryDirectory(members ...Member) *MemoryDirectory {
	d := &MemoryDirectory{members: make(map[domain.UserID]Member, len(members))}
	for _, m := range members {
		d.members[m.ID] = m
	}
	return d
}

// Add registers or replaces a member.
func (d *MemoryDirectory) Add(m Member) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[m.ID] = m
}

// Resolve implements Directory.
func (d *MemoryDirectory) Resolve(id domain.UserID) (Member, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.members[id]
	return m, ok
}

// MembersOf implements Directory.
func (d *MemoryDirectory) MembersOf(role domain.RoleID) []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Member
	for _, m := range d.members {
		if m.HasRole(role) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
