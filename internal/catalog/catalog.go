package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

// Catalog is the static registry of ticket templates. Immutable after load;
// concurrent reads need no locking.
type Catalog struct {
	templates map[domain.TemplateID]*domain.Template
	order     []domain.TemplateID
}

// New builds a catalog from the given templates, rejecting duplicates.
func New(templates []domain.Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[domain.TemplateID]*domain.Template, len(templates))}
	for i := range templates {
		tpl := templates[i]
		if tpl.ID == "" {
			return nil, fmt.Errorf("template %d: missing id", i)
		}
		if _, exists := c.templates[tpl.ID]; exists {
			return nil, fmt.Errorf("duplicate template id %q", tpl.ID)
		}
		if tpl.SLA.ResponseHours <= 0 {
			return nil, fmt.Errorf("template %q: response SLA must be positive", tpl.ID)
		}
		c.templates[tpl.ID] = &tpl
		c.order = append(c.order, tpl.ID)
	}
	return c, nil
}

// Get returns the template for id.
func (c *Catalog) Get(id domain.TemplateID) (*domain.Template, bool) {
	tpl, ok := c.templates[id]
	return tpl, ok
}

// All returns templates in load order.
func (c *Catalog) All() []*domain.Template {
	out := make([]*domain.Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

// SupportRoles returns the de-duplicated union of support roles across all
// templates, sorted for stable output.
func (c *Catalog) SupportRoles() []domain.RoleID {
	seen := map[domain.RoleID]struct{}{}
	for _, tpl := range c.templates {
		for _, role := range tpl.SupportRoles {
			seen[role] = struct{}{}
		}
	}
	roles := make([]domain.RoleID, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

type templateFile struct {
	Templates []templateSpec `yaml:"templates"`
}

type templateSpec struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	ChannelSlug    string   `yaml:"channel_slug"`
	SupportRoles   []string `yaml:"support_roles"`
	ResponseHours  int      `yaml:"response_hours"`
	ResolutionHrs  int      `yaml:"resolution_hours"`
	WelcomeMessage string   `yaml:"welcome_message"`
	Color          int      `yaml:"color"`
	Emoji          string   `yaml:"emoji"`
	Questions      []struct {
		Field    string `yaml:"field"`
		Prompt   string `yaml:"prompt"`
		Required bool   `yaml:"required"`
		Long     bool   `yaml:"long"`
	} `yaml:"questions"`
}

// LoadFile reads a YAML template catalog from path. When path is empty the
// built-in defaults are used, eligible for the given support and admin roles.
func LoadFile(path string, supportRoles, adminRoles []domain.RoleID) (*Catalog, error) {
	if path == "" {
		return New(DefaultTemplates(supportRoles, adminRoles))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template catalog: %w", err)
	}
	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	templates := make([]domain.Template, 0, len(file.Templates))
	for _, spec := range file.Templates {
		tpl := domain.Template{
			ID:          domain.TemplateID(spec.ID),
			Name:        spec.Name,
			ChannelSlug: spec.ChannelSlug,
			SLA: domain.SLAWindow{
				ResponseHours:   spec.ResponseHours,
				ResolutionHours: spec.ResolutionHrs,
			},
			WelcomeMessage: spec.WelcomeMessage,
			Color:          spec.Color,
			Emoji:          spec.Emoji,
		}
		for _, role := range spec.SupportRoles {
			tpl.SupportRoles = append(tpl.SupportRoles, domain.RoleID(role))
		}
		for _, q := range spec.Questions {
			tpl.Questions = append(tpl.Questions, domain.IntakeQuestion{
				Field:    q.Field,
				Prompt:   q.Prompt,
				Required: q.Required,
				Long:     q.Long,
			})
		}
		templates = append(templates, tpl)
	}
	return New(templates)
}
