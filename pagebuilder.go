package pagebuilder

import (
	"context"

	"github.com/google/uuid"

	pagescmd "github.com/goliatone/go-pagebuilder/internal/commands/pages"
	"github.com/goliatone/go-pagebuilder/internal/components"
	"github.com/goliatone/go-pagebuilder/internal/di"
	"github.com/goliatone/go-pagebuilder/internal/editor"
	"github.com/goliatone/go-pagebuilder/internal/forms"
	"github.com/goliatone/go-pagebuilder/internal/pages"
)

// PageService exports the page service contract.
type PageService = pages.Service

// Registry exports the component definition registry.
type Registry = *components.Registry

// EditorSession exports the builder editing session.
type EditorSession = *editor.Session

// CommandHandlers exports the page command handler set.
type CommandHandlers = *pagescmd.HandlerSet

type (
	Page              = pages.Page
	PageVersion       = pages.PageVersion
	ComponentInstance = pages.ComponentInstance
	Definition        = components.Definition
	CatalogFilter     = components.CatalogFilter
	CatalogGroup      = components.CatalogGroup
	FieldSet          = forms.FieldSet
	FieldError        = forms.FieldError
	Option            = di.Option
)

// Module is the page builder entry point.
type Module struct {
	container *di.Container
}

// New validates cfg and wires every service.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced wiring.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Pages() PageService {
	return m.container.PageService()
}

func (m *Module) Registry() Registry {
	return m.container.Registry()
}

// Catalog lists definitions matching filter, grouped by category.
func (m *Module) Catalog(ctx context.Context, filter CatalogFilter) ([]CatalogGroup, error) {
	defs, err := m.container.Registry().ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	return components.GroupByCategory(components.Filter(defs, filter)), nil
}

// OpenEditor starts an editing session on pageID for actor.
func (m *Module) OpenEditor(ctx context.Context, pageID, actor uuid.UUID) (EditorSession, error) {
	return m.container.OpenEditor(ctx, pageID, actor)
}

// RenderForm builds the settings form for componentType populated with values.
func (m *Module) RenderForm(ctx context.Context, componentType string, values map[string]any) (FieldSet, error) {
	def, err := m.container.Registry().GetDefinition(ctx, componentType)
	if err != nil {
		return FieldSet{}, err
	}
	return forms.Render(def.SettingsSchema, def.UISchema, values)
}

// ValidateSettings checks values against componentType's schema. An empty
// result means the values are valid.
func (m *Module) ValidateSettings(ctx context.Context, componentType string, values map[string]any) ([]FieldError, error) {
	def, err := m.container.Registry().GetDefinition(ctx, componentType)
	if err != nil {
		return nil, err
	}
	return forms.Validate(def.SettingsSchema, values), nil
}

// Commands returns the page command handlers, or nil when commands are
// disabled.
func (m *Module) Commands() CommandHandlers {
	return m.container.CommandHandlers()
}

// Close releases subscriptions and owned storage.
func (m *Module) Close() error {
	return m.container.Close()
}
