package transcript

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// timeLayout is the fixed timestamp format used throughout transcripts.
// Rendering in UTC keeps output independent of the host timezone.
const timeLayout = "2006-01-02 15:04:05"

// Generate renders a ticket's full history to text. It is a pure function of
// the snapshot: no lookups, no clock, byte-identical output for an unchanged
// ticket.
func Generate(t domain.TicketSnapshot) string {
	var b strings.Builder

	b.WriteString("=== TICKET TRANSCRIPT ===\n")
	fmt.Fprintf(&b, "ID: %s\n", t.ID)
	fmt.Fprintf(&b, "Title: %s\n", t.Title)
	fmt.Fprintf(&b, "Requester: %s\n", t.Requester)
	fmt.Fprintf(&b, "Template: %s\n", t.Template.Name)
	fmt.Fprintf(&b, "Priority: %s\n", t.Priority)
	fmt.Fprintf(&b, "Final status: %s\n", t.Status)
	fmt.Fprintf(&b, "Created: %s\n", stamp(t.CreatedAt))
	fmt.Fprintf(&b, "Last activity: %s\n", stamp(t.UpdatedAt))
	if t.AssignedTo != nil {
		fmt.Fprintf(&b, "Assigned to: %s\n", *t.AssignedTo)
	}

	if len(t.Answers) > 0 {
		b.WriteString("\n=== INTAKE ANSWERS ===\n")
		for _, field := range answerOrder(t) {
			fmt.Fprintf(&b, "%s: %s\n", field, t.Answers[field])
		}
	}

	b.WriteString("\n=== STATUS HISTORY ===\n")
	for _, change := range t.StatusHistory {
		fmt.Fprintf(&b, "[%s] %s -> %s by %s", stamp(change.Timestamp), change.From, change.To, change.Actor)
		if change.Reason != "" {
			fmt.Fprintf(&b, " - %s", change.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n=== MESSAGES (%d) ===\n", len(t.MessageLog))
	for _, msg := range t.MessageLog {
		fmt.Fprintf(&b, "[%s] %s: %s\n", stamp(msg.Timestamp), msg.Actor, msg.Content)
		if len(msg.Attachments) > 0 {
			fmt.Fprintf(&b, "  Attachments: %s\n", strings.Join(msg.Attachments, ", "))
		}
	}

	fmt.Fprintf(&b, "\n=== ASSIGNMENTS (%d) ===\n", len(t.AssignmentHistory))
	for _, assignment := range t.AssignmentHistory {
		fmt.Fprintf(&b, "[%s] Assigned to %s by %s", stamp(assignment.Timestamp), assignment.Assignee, assignment.AssignedBy)
		if assignment.Reason != "" {
			fmt.Fprintf(&b, " - %s", assignment.Reason)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n=== END OF TRANSCRIPT ===\n")
	return b.String()
}

// answerOrder lists answer fields in template question order, with any
// answers outside the question set appended in sorted order.
func answerOrder(t domain.TicketSnapshot) []string {
	fields := make([]string, 0, len(t.Answers))
	inQuestions := map[string]bool{}
	for _, q := range t.Template.Questions {
		if _, ok := t.Answers[q.Field]; ok {
			fields = append(fields, q.Field)
			inQuestions[q.Field] = true
		}
	}
	var extras []string
	for field := range t.Answers {
		if !inQuestions[field] {
			extras = append(extras, field)
		}
	}
	sort.Strings(extras)
	return append(fields, extras...)
}

func stamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
