package components

import (
	"context"
	"regexp"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	pbschema "github.com/goliatone/go-pagebuilder/internal/schema"
)

var typeKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// DefinitionRepository exposes persistence operations for component definitions.
type DefinitionRepository interface {
	Create(ctx context.Context, definition *Definition) (*Definition, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Definition, error)
	GetByType(ctx context.Context, componentType string) (*Definition, error)
	List(ctx context.Context) ([]*Definition, error)
	Update(ctx context.Context, definition *Definition) (*Definition, error)
}

// NewDefinitionRepository builds the generic bun repository for definitions.
func NewDefinitionRepository(db *bun.DB) repository.Repository[*Definition] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Definition]{
		NewRecord:          func() *Definition { return &Definition{} },
		GetID:              func(d *Definition) uuid.UUID { return d.ID },
		SetID:              func(d *Definition, id uuid.UUID) { d.ID = id },
		GetIdentifier:      func() string { return "component_type" },
		GetIdentifierValue: func(d *Definition) string { return d.Type },
	})
}

// NormalizeType returns the registry key for a component type. Keys that are
// already identifiers (lowercase letters, digits, "_" and "-") keep their
// authored form once lowercased; free text such as "Event Card" becomes
// "event_card".
func NormalizeType(value string) string {
	candidate := strings.ToLower(strings.TrimSpace(value))
	if candidate == "" {
		return ""
	}
	if typeKeyPattern.MatchString(candidate) {
		return candidate
	}
	normalized, err := slug.HashNormalizeWithSeparator(candidate, "_")
	if err != nil || normalized == "" {
		return candidate
	}
	return normalized
}

func cloneDefinition(def *Definition) *Definition {
	if def == nil {
		return nil
	}
	cloned := *def
	cloned.SettingsSchema = pbschema.CloneMap(def.SettingsSchema)
	cloned.UISchema = pbschema.CloneMap(def.UISchema)
	return &cloned
}

func cloneDefinitions(defs []*Definition) []*Definition {
	out := make([]*Definition, 0, len(defs))
	for _, def := range defs {
		out = append(out, cloneDefinition(def))
	}
	return out
}
