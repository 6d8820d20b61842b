package catalog

import "github.com/spec-kit/ticket-workflow/internal/domain"

// DefaultTemplates returns the built-in ticket categories. Support-role
// eligibility comes from configuration; appeals and partnerships additionally
// route to admin roles.
func DefaultTemplates(supportRoles, adminRoles []domain.RoleID) []domain.Template {
	appealRoles := append(append([]domain.RoleID(nil), supportRoles...), adminRoles...)
	return []domain.Template{
		{
			ID:          "SUPPORT",
			Name:        "Technical Support",
			ChannelSlug: "support",
			Questions: []domain.IntakeQuestion{
				{Field: "problem", Prompt: "Describe your problem", Required: true},
				{Field: "attempts", Prompt: "What have you already tried?", Long: true},
			},
			SupportRoles:   supportRoles,
			SLA:            domain.SLAWindow{ResponseHours: 12, ResolutionHours: 48},
			WelcomeMessage: "Thanks for opening a support ticket! Our team will help you shortly.",
			Color:          0x3498db,
			Emoji:          "🔧",
		},
		{
			ID:          "REPORT",
			Name:        "Bug Report",
			ChannelSlug: "bug",
			Questions: []domain.IntakeQuestion{
				{Field: "description", Prompt: "Bug description", Required: true, Long: true},
				{Field: "steps", Prompt: "Steps to reproduce", Required: true, Long: true},
			},
			SupportRoles:   supportRoles,
			SLA:            domain.SLAWindow{ResponseHours: 6, ResolutionHours: 24},
			WelcomeMessage: "Thanks for the bug report! We will look into it.",
			Color:          0xe74c3c,
			Emoji:          "🐛",
		},
		{
			ID:          "APPEAL",
			Name:        "Appeal",
			ChannelSlug: "appeal",
			Questions: []domain.IntakeQuestion{
				{Field: "subject", Prompt: "What are you appealing?", Required: true},
				{Field: "grounds", Prompt: "Why should we reconsider?", Required: true, Long: true},
			},
			SupportRoles:   appealRoles,
			SLA:            domain.SLAWindow{ResponseHours: 48, ResolutionHours: 168},
			WelcomeMessage: "Your appeal has been filed. The moderation team will review it.",
			Color:          0xf1c40f,
			Emoji:          "⚖️",
		},
		{
			ID:          "PURCHASE",
			Name:        "Purchase Help",
			ChannelSlug: "purchase",
			Questions: []domain.IntakeQuestion{
				{Field: "order_id", Prompt: "Order/transaction ID", Required: true},
				{Field: "problem", Prompt: "Describe the problem", Required: true, Long: true},
			},
			SupportRoles:   supportRoles,
			SLA:            domain.SLAWindow{ResponseHours: 4, ResolutionHours: 12},
			WelcomeMessage: "Thanks for reaching out about your purchase!",
			Color:          0x2ecc71,
			Emoji:          "💳",
		},
		{
			ID:          "PARTNERSHIP",
			Name:        "Partnership",
			ChannelSlug: "partnership",
			Questions: []domain.IntakeQuestion{
				{Field: "organization", Prompt: "Company/organization", Required: true},
				{Field: "proposal", Prompt: "Partnership proposal", Required: true, Long: true},
			},
			SupportRoles:   adminRoles,
			SLA:            domain.SLAWindow{ResponseHours: 24, ResolutionHours: 72},
			WelcomeMessage: "Thanks for your interest in working with us! Our business team will be in touch within 24 hours.",
			Color:          0x9b59b6,
			Emoji:          "🤝",
		},
	}
}
