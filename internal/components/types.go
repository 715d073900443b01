package components

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Definition is the catalog entry for a component type. The engine reads
// definitions and never writes them outside of seeding.
type Definition struct {
	bun.BaseModel `bun:"table:component_definitions,alias:cd"`

	ID              uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Type            string         `bun:"component_type,notnull,unique" json:"component_type"`
	DisplayName     string         `bun:"display_name,notnull" json:"display_name"`
	Description     string         `bun:"description" json:"description,omitempty"`
	DescriptionHTML string         `bun:"description_html" json:"description_html,omitempty"`
	Category        string         `bun:"category" json:"category,omitempty"`
	Icon            string         `bun:"icon" json:"icon,omitempty"`
	SettingsSchema  map[string]any `bun:"settings_schema,type:jsonb" json:"settings_schema,omitempty"`
	UISchema        map[string]any `bun:"ui_schema,type:jsonb" json:"ui_schema,omitempty"`
	Retired         bool           `bun:"retired,notnull,default:false" json:"retired"`
	CreatedAt       time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// CatalogFilter narrows a catalog for presentation.
type CatalogFilter struct {
	Search         string
	Category       string
	IncludeRetired bool
}

// CatalogGroup is a category heading with its definitions.
type CatalogGroup struct {
	Category    string
	Definitions []*Definition
}
