package transcript

import (
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

func sampleSnapshot() domain.TicketSnapshot {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	closed := created.Add(26 * time.Hour)
	assignee := domain.UserID("agent-1")
	return domain.TicketSnapshot{
		ID:        "TCK-0A1B2C3D",
		Requester: "user-1",
		Template: &domain.Template{
			ID:   "SUPPORT",
			Name: "General Support",
			Questions: []domain.IntakeQuestion{
				{Field: "subject", Prompt: "Subject"},
				{Field: "details", Prompt: "Details"},
			},
		},
		Title:       "Login broken",
		Priority:    domain.TicketPriorityHigh,
		Status:      domain.TicketStatusClosed,
		CreatedAt:   created,
		UpdatedAt:   closed,
		ClosedAt:    &closed,
		SLADeadline: created.Add(12 * time.Hour),
		AssignedTo:  &assignee,
		Answers: map[string]string{
			"details": "error 500 on submit",
			"subject": "login",
			"zextra":  "added later",
			"aextra":  "also later",
		},
		StatusHistory: []domain.StatusChange{
			{Timestamp: created, Actor: "user-1", From: domain.TicketStatusNew, To: domain.TicketStatusNew, Reason: "ticket created"},
			{Timestamp: created.Add(time.Hour), Actor: "agent-1", From: domain.TicketStatusNew, To: domain.TicketStatusInProgress},
			{Timestamp: closed, Actor: "agent-1", From: domain.TicketStatusInProgress, To: domain.TicketStatusClosed, Reason: "fixed"},
		},
		MessageLog: []domain.MessageRecord{
			{Timestamp: created, Actor: "user-1", Content: "I cannot log in"},
			{Timestamp: created.Add(2 * time.Hour), Actor: "agent-1", Content: "Looking into it", Attachments: []string{"trace.log"}},
		},
		AssignmentHistory: []domain.AssignmentRecord{
			{Timestamp: created.Add(time.Hour), Assignee: "agent-1", AssignedBy: domain.SystemUser, Reason: "auto-assigned on creation"},
		},
	}
}

func TestGenerateSections(t *testing.T) {
	text := Generate(sampleSnapshot())

	for _, want := range []string{
		"=== TICKET TRANSCRIPT ===",
		"ID: TCK-0A1B2C3D",
		"Title: Login broken",
		"Requester: user-1",
		"Template: General Support",
		"Priority: high",
		"Final status: CLOSED",
		"Assigned to: agent-1",
		"=== INTAKE ANSWERS ===",
		"=== STATUS HISTORY ===",
		"=== MESSAGES (2) ===",
		"=== ASSIGNMENTS (1) ===",
		"  Attachments: trace.log",
		"=== END OF TRANSCRIPT ===",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("transcript missing %q\n%s", want, text)
		}
	}
}

func TestGenerateTimestampsAreUTC(t *testing.T) {
	snap := sampleSnapshot()
	loc := time.FixedZone("UTC+5", 5*3600)
	snap.CreatedAt = snap.CreatedAt.In(loc)
	snap.StatusHistory[0].Timestamp = snap.StatusHistory[0].Timestamp.In(loc)

	text := Generate(snap)
	if !strings.Contains(text, "Created: 2026-03-01 10:00:00") {
		t.Fatalf("created stamp not rendered in UTC:\n%s", text)
	}
	if !strings.Contains(text, "[2026-03-01 10:00:00] NEW -> NEW by user-1 - ticket created") {
		t.Fatalf("history stamp not rendered in UTC:\n%s", text)
	}
}

func TestGenerateAnswerOrdering(t *testing.T) {
	text := Generate(sampleSnapshot())

	// Question order first, then extras sorted.
	subject := strings.Index(text, "subject: login")
	details := strings.Index(text, "details: error 500 on submit")
	aextra := strings.Index(text, "aextra: also later")
	zextra := strings.Index(text, "zextra: added later")
	if subject < 0 || details < 0 || aextra < 0 || zextra < 0 {
		t.Fatalf("missing answers:\n%s", text)
	}
	if !(subject < details && details < aextra && aextra < zextra) {
		t.Fatalf("answer order wrong: subject=%d details=%d aextra=%d zextra=%d", subject, details, aextra, zextra)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	snap := sampleSnapshot()
	first := Generate(snap)
	for i := 0; i < 5; i++ {
		if got := Generate(snap); got != first {
			t.Fatal("transcript output differs across calls for unchanged snapshot")
		}
	}
}

func TestGenerateOmitsEmptySections(t *testing.T) {
	snap := sampleSnapshot()
	snap.Answers = nil
	snap.AssignedTo = nil

	text := Generate(snap)
	if strings.Contains(text, "=== INTAKE ANSWERS ===") {
		t.Fatal("intake section rendered with no answers")
	}
	if strings.Contains(text, "Assigned to:") {
		t.Fatal("assignee line rendered with no assignee")
	}
}
