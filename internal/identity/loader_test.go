package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

func TestLoadFileEmptyPath(t *testing.T) {
	dir, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := dir.Resolve("anyone"); ok {
		t.Fatal("empty directory resolved a member")
	}
}

func TestLoadFileParsesMembers(t *testing.T) {
	raw := `members:
  - id: agent-a
    name: Alice
    roles: [support, billing]
  - id: bot-1
    name: Helper Bot
    roles: [support]
    bot: true
`
	path := filepath.Join(t.TempDir(), "members.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dir, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	alice, ok := dir.Resolve("agent-a")
	if !ok || alice.Name != "Alice" || !alice.HasRole("billing") || alice.Bot {
		t.Fatalf("alice = %+v ok=%v", alice, ok)
	}
	bot, ok := dir.Resolve("bot-1")
	if !ok || !bot.Bot {
		t.Fatalf("bot = %+v ok=%v", bot, ok)
	}

	support := dir.MembersOf("support")
	if len(support) != 2 || support[0].ID != "agent-a" {
		t.Fatalf("support members = %+v", support)
	}
}

func TestLoadFileRejectsMemberWithoutID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.yaml")
	if err := os.WriteFile(path, []byte("members:\n  - name: Nameless\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for member without id")
	}
}

func TestMembersOfStableOrder(t *testing.T) {
	dir := NewMemoryDirectory(
		Member{ID: "c", Roles: []domain.RoleID{"support"}},
		Member{ID: "a", Roles: []domain.RoleID{"support"}},
		Member{ID: "b", Roles: []domain.RoleID{"support"}},
	)
	members := dir.MembersOf("support")
	if len(members) != 3 || members[0].ID != "a" || members[1].ID != "b" || members[2].ID != "c" {
		t.Fatalf("order = %+v", members)
	}
}
