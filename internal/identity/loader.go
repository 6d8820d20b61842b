package identity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/ticket-workflow/internal/domain"
)

type directoryFile struct {
	Members []memberSpec `yaml:"members"`
}

type memberSpec struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Roles []string `yaml:"roles"`
	Bot   bool     `yaml:"bot"`
}

// LoadFile seeds a MemoryDirectory from a YAML member list. An empty path
// yields an empty directory; members are then expected to arrive via Add.
func LoadFile(path string) (*MemoryDirectory, error) {
	if path == "" {
		return NewMemoryDirectory(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory file: %w", err)
	}
	var file directoryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse directory file: %w", err)
	}

	dir := NewMemoryDirectory()
	for _, spec := range file.Members {
		if spec.ID == "" {
			return nil, fmt.Errorf("directory file: member without id")
		}
		roles := make([]domain.RoleID, 0, len(spec.Roles))
		for _, role := range spec.Roles {
			roles = append(roles, domain.RoleID(role))
		}
		dir.Add(Member{
			ID:    domain.UserID(spec.ID),
			Name:  spec.Name,
			Roles: roles,
			Bot:   spec.Bot,
		})
	}
	return dir, nil
}
