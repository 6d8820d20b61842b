package domain

import "time"

// IntakeQuestion defines one question asked when a ticket is created.
type IntakeQuestion struct {
	Field    string
	Prompt   string
	Required bool
	Long     bool
}

// SLAWindow defines the response and resolution deadlines for a template.
type SLAWindow struct {
	ResponseHours   int
	ResolutionHours int
}

// ResponseDeadline computes the first-response deadline from a creation time.
func (s SLAWindow) ResponseDeadline(createdAt time.Time) time.Time {
	return createdAt.Add(time.Duration(s.ResponseHours) * time.Hour)
}

// Template is an immutable ticket-category preset: intake questions, eligible
// responder groups and SLA windows. Loaded once at startup.
type Template struct {
	ID             TemplateID
	Name           string
	ChannelSlug    string
	Questions      []IntakeQuestion
	SupportRoles   []RoleID
	SLA            SLAWindow
	WelcomeMessage string
	Color          int
	Emoji          string
}
