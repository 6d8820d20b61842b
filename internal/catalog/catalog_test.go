package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

func TestDefaultTemplates(t *testing.T) {
	c, err := LoadFile("", []domain.RoleID{"support"}, []domain.RoleID{"admin"})
	if err != nil {
		t.Fatalf("LoadFile defaults: %v", err)
	}

	if got := len(c.All()); got != 5 {
		t.Fatalf("default template count = %d, want 5", got)
	}

	support, ok := c.Get("SUPPORT")
	if !ok {
		t.Fatal("SUPPORT template missing")
	}
	if support.SLA.ResponseHours != 12 || support.SLA.ResolutionHours != 48 {
		t.Fatalf("SUPPORT SLA = %+v", support.SLA)
	}

	appeal, ok := c.Get("APPEAL")
	if !ok {
		t.Fatal("APPEAL template missing")
	}
	hasAdmin := false
	for _, role := range appeal.SupportRoles {
		if role == "admin" {
			hasAdmin = true
		}
	}
	if !hasAdmin {
		t.Fatalf("APPEAL support roles = %v, want admin included", appeal.SupportRoles)
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	_, err := New([]domain.Template{
		{ID: "SUPPORT", Name: "a", SLA: domain.SLAWindow{ResponseHours: 1}},
		{ID: "SUPPORT", Name: "b", SLA: domain.SLAWindow{ResponseHours: 1}},
	})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestNewRejectsMissingResponseSLA(t *testing.T) {
	_, err := New([]domain.Template{{ID: "X", Name: "x"}})
	if err == nil {
		t.Fatal("expected error for non-positive response SLA")
	}
}

func TestGetUnknownTemplate(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.Get("GHOST"); ok {
		t.Fatal("unknown template resolved")
	}
}

func TestLoadFileParsesYAML(t *testing.T) {
	raw := `templates:
  - id: VIP
    name: VIP Support
    channel_slug: vip
    support_roles: [vip-team, support]
    response_hours: 2
    resolution_hours: 8
    welcome_message: "A specialist will be right with you."
    emoji: "star"
    questions:
      - field: subject
        prompt: "What happened?"
        required: true
      - field: details
        prompt: "Anything else?"
        long: true
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	c, err := LoadFile(path, nil, nil)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	vip, ok := c.Get("VIP")
	if !ok {
		t.Fatal("VIP template missing")
	}
	if vip.SLA.ResponseHours != 2 || vip.SLA.ResolutionHours != 8 {
		t.Fatalf("VIP SLA = %+v", vip.SLA)
	}
	if len(vip.Questions) != 2 || !vip.Questions[0].Required || !vip.Questions[1].Long {
		t.Fatalf("VIP questions = %+v", vip.Questions)
	}
	if len(vip.SupportRoles) != 2 || vip.SupportRoles[0] != "vip-team" {
		t.Fatalf("VIP roles = %v", vip.SupportRoles)
	}
}

func TestLoadFileRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("templates: ["), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadFile(path, nil, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSupportRolesUnion(t *testing.T) {
	c, err := New([]domain.Template{
		{ID: "A", Name: "a", SupportRoles: []domain.RoleID{"support", "billing"}, SLA: domain.SLAWindow{ResponseHours: 1}},
		{ID: "B", Name: "b", SupportRoles: []domain.RoleID{"admin", "support"}, SLA: domain.SLAWindow{ResponseHours: 1}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	roles := c.SupportRoles()
	want := []domain.RoleID{"admin", "billing", "support"}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
}
