package domain

import (
	"errors"
	"testing"
	"time"
)

func testTemplate() *Template {
	return &Template{
		ID:          "SUPPORT",
		Name:        "General Support",
		ChannelSlug: "support",
		Questions: []IntakeQuestion{
			{Field: "subject", Prompt: "What do you need help with?", Required: true},
		},
		SupportRoles: []RoleID{"support"},
		SLA:          SLAWindow{ResponseHours: 12, ResolutionHours: 48},
	}
}

func TestNewTicketInitialState(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket := NewTicket("user-1", testTemplate(), "Login broken", "I cannot log in", TicketPriorityHigh, map[string]string{"subject": "login"}, now)

	if ticket.Status() != TicketStatusNew {
		t.Fatalf("status = %s, want %s", ticket.Status(), TicketStatusNew)
	}
	if ticket.ID() == "" {
		t.Fatal("expected non-empty ticket id")
	}
	want := now.Add(12 * time.Hour)
	if !ticket.SLADeadline().Equal(want) {
		t.Fatalf("sla deadline = %v, want %v", ticket.SLADeadline(), want)
	}

	snap := ticket.Snapshot()
	if len(snap.StatusHistory) != 1 {
		t.Fatalf("status history len = %d, want 1", len(snap.StatusHistory))
	}
	first := snap.StatusHistory[0]
	if first.From != TicketStatusNew || first.To != TicketStatusNew {
		t.Fatalf("first history entry %s -> %s, want NEW -> NEW", first.From, first.To)
	}
	if len(snap.MessageLog) != 1 || snap.MessageLog[0].Content != "I cannot log in" {
		t.Fatalf("expected creation description as first message, got %+v", snap.MessageLog)
	}
	if snap.ClosedAt != nil {
		t.Fatal("new ticket must not have closed_at")
	}
}

func TestNewTicketCopiesAnswers(t *testing.T) {
	now := time.Now()
	answers := map[string]string{"subject": "billing"}
	ticket := NewTicket("user-1", testTemplate(), "t", "d", TicketPriorityMedium, answers, now)

	answers["subject"] = "mutated"
	if got := ticket.Snapshot().Answers["subject"]; got != "billing" {
		t.Fatalf("answers aliased caller map: got %q", got)
	}
}

func TestChangeStatusRecordsHistory(t *testing.T) {
	now := time.Now()
	ticket := NewTicket("user-1", testTemplate(), "t", "d", TicketPriorityMedium, nil, now)

	change, closedNow, err := ticket.ChangeStatus("agent-1", TicketStatusInProgress, "picked up", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if closedNow {
		t.Fatal("non-terminal transition reported closedNow")
	}
	if change.From != TicketStatusNew || change.To != TicketStatusInProgress {
		t.Fatalf("change %s -> %s, want NEW -> IN_PROGRESS", change.From, change.To)
	}
	if ticket.Status() != TicketStatusInProgress {
		t.Fatalf("status = %s", ticket.Status())
	}
}

func TestChangeStatusRejectsUnknown(t *testing.T) {
	ticket := NewTicket("user-1", testTemplate(), "t", "d", TicketPriorityMedium, nil, time.Now())
	if _, _, err := ticket.ChangeStatus("agent-1", TicketStatus("BOGUS"), "", time.Now()); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestTerminalTicketRejectsFurtherMutation(t *testing.T) {
	now := time.Now()
	ticket := NewTicket("user-1", testTemplate(), "t", "d", TicketPriorityMedium, nil, now)

	_, closedNow, err := ticket.ChangeStatus("agent-1", TicketStatusClosed, "done", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !closedNow {
		t.Fatal("first terminal transition must report closedNow")
	}

	if _, _, err := ticket.ChangeStatus("agent-1", TicketStatusOpen, "reopen", now.Add(2*time.Hour)); !errors.Is(err, ErrTicketTerminal) {
		t.Fatalf("reopen err = %v, want ErrTicketTerminal", err)
	}
	if _, err := ticket.AddMessage("user-1", "hello?", nil, now.Add(2*time.Hour)); !errors.Is(err, ErrTicketTerminal) {
		t.Fatalf("message err = %v, want ErrTicketTerminal", err)
	}
	if _, err := ticket.RecordAssignment("agent-2", "agent-1", "", now.Add(2*time.Hour)); !errors.Is(err, ErrTicketTerminal) {
		t.Fatalf("assignment err = %v, want ErrTicketTerminal", err)
	}
}

func TestClosedAtSetOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket := NewTicket("user-1", testTemplate(), "t", "d", TicketPriorityMedium, nil, now)

	closeTime := now.Add(time.Hour)
	if _, closedNow, err := ticket.ChangeStatus("agent-1", TicketStatusClosed, "", closeTime); err != nil || !closedNow {
		t.Fatalf("close: closedNow=%v err=%v", closedNow, err)
	}
	snap := ticket.Snapshot()
	if snap.ClosedAt == nil || !snap.ClosedAt.Equal(closeTime) {
		t.Fatalf("closed_at = %v, want %v", snap.ClosedAt, closeTime)
	}
}

func TestAddMessageUpdatesActivity(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ticket := NewTicket("user-1", testTemplate(), "t", "d", TicketPriorityMedium, nil, now)

	later := now.Add(30 * time.Minute)
	record, err := ticket.AddMessage("agent-1", "on it", []string{"log.txt"}, later)
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if record.Actor != "agent-1" || len(record.Attachments) != 1 {
		t.Fatalf("unexpected record %+v", record)
	}
	if !ticket.UpdatedAt().Equal(later) {
		t.Fatalf("updated_at = %v, want %v", ticket.UpdatedAt(), later)
	}
}

func TestRecordAssignmentReplacesAssignee(t *testing.T) {
	now := time.Now()
	ticket := NewTicket("user-1", testTemplate(), "t", "d", TicketPriorityMedium, nil, now)

	if _, err := ticket.RecordAssignment("agent-1", SystemUser, "auto", now); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := ticket.RecordAssignment("agent-2", "agent-1", "handover", now.Add(time.Minute)); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	assignee, ok := ticket.Assignee()
	if !ok || assignee != "agent-2" {
		t.Fatalf("assignee = %q ok=%v, want agent-2", assignee, ok)
	}
	if got := len(ticket.Snapshot().AssignmentHistory); got != 2 {
		t.Fatalf("assignment history len = %d, want 2", got)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	now := time.Now()
	ticket := NewTicket("user-1", testTemplate(), "t", "d", TicketPriorityMedium, map[string]string{"subject": "x"}, now)

	snap := ticket.Snapshot()
	snap.Answers["subject"] = "mutated"
	snap.StatusHistory[0].Reason = "mutated"

	fresh := ticket.Snapshot()
	if fresh.Answers["subject"] != "x" {
		t.Fatal("snapshot answers alias ticket state")
	}
	if fresh.StatusHistory[0].Reason != "ticket created" {
		t.Fatal("snapshot history aliases ticket state")
	}
}

func TestParseStatusRoundTrip(t *testing.T) {
	for _, status := range AllStatuses() {
		parsed, err := ParseStatus(string(status))
		if err != nil || parsed != status {
			t.Fatalf("ParseStatus(%s) = %s, %v", status, parsed, err)
		}
	}
	if _, err := ParseStatus("nope"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParsePriorityDefaultsToMedium(t *testing.T) {
	got, err := ParsePriority("")
	if err != nil || got != TicketPriorityMedium {
		t.Fatalf("ParsePriority(\"\") = %s, %v", got, err)
	}
	if _, err := ParsePriority("urgent-ish"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}
