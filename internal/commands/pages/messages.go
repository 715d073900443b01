package pagescmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	createPageMessageType              = "pagebuilder.pages.create"
	addComponentMessageType            = "pagebuilder.pages.add_component"
	removeComponentMessageType         = "pagebuilder.pages.remove_component"
	duplicateComponentMessageType      = "pagebuilder.pages.duplicate_component"
	reorderComponentsMessageType       = "pagebuilder.pages.reorder_components"
	updateComponentSettingsMessageType = "pagebuilder.pages.update_component_settings"
	publishPageMessageType             = "pagebuilder.pages.publish"
	unpublishPageMessageType           = "pagebuilder.pages.unpublish"
	restoreVersionMessageType          = "pagebuilder.pages.restore_version"
)

// CreatePageCommand creates an empty draft page.
type CreatePageCommand struct {
	Slug    string    `json:"slug,omitempty"`
	Title   string    `json:"title"`
	ActorID uuid.UUID `json:"actor_id"`
}

// Type implements command.Message.
func (CreatePageCommand) Type() string { return createPageMessageType }

func (m CreatePageCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Title) == "" {
		errs["title"] = validation.NewError("pagebuilder.pages.create.title_required", "title is required")
	}
	return result(errs)
}

// AddComponentCommand appends an instance of ComponentType to a page.
type AddComponentCommand struct {
	PageID          uuid.UUID `json:"page_id"`
	ComponentType   string    `json:"component_type"`
	ActorID         uuid.UUID `json:"actor_id"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

func (AddComponentCommand) Type() string { return addComponentMessageType }

func (m AddComponentCommand) Validate() error {
	errs := target("add_component", m.PageID, m.ExpectedVersion)
	if strings.TrimSpace(m.ComponentType) == "" {
		errs["component_type"] = validation.NewError("pagebuilder.pages.add_component.component_type_required", "component_type is required")
	}
	return result(errs)
}

type RemoveComponentCommand struct {
	PageID          uuid.UUID `json:"page_id"`
	Index           int       `json:"index"`
	ActorID         uuid.UUID `json:"actor_id"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

func (RemoveComponentCommand) Type() string { return removeComponentMessageType }

func (m RemoveComponentCommand) Validate() error {
	errs := target("remove_component", m.PageID, m.ExpectedVersion)
	index(errs, "remove_component", "index", m.Index)
	return result(errs)
}

type DuplicateComponentCommand struct {
	PageID          uuid.UUID `json:"page_id"`
	Index           int       `json:"index"`
	ActorID         uuid.UUID `json:"actor_id"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

func (DuplicateComponentCommand) Type() string { return duplicateComponentMessageType }

func (m DuplicateComponentCommand) Validate() error {
	errs := target("duplicate_component", m.PageID, m.ExpectedVersion)
	index(errs, "duplicate_component", "index", m.Index)
	return result(errs)
}

// ReorderComponentsCommand moves the instance at From to To.
type ReorderComponentsCommand struct {
	PageID          uuid.UUID `json:"page_id"`
	From            int       `json:"from"`
	To              int       `json:"to"`
	ActorID         uuid.UUID `json:"actor_id"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

func (ReorderComponentsCommand) Type() string { return reorderComponentsMessageType }

func (m ReorderComponentsCommand) Validate() error {
	errs := target("reorder_components", m.PageID, m.ExpectedVersion)
	index(errs, "reorder_components", "from", m.From)
	index(errs, "reorder_components", "to", m.To)
	return result(errs)
}

// UpdateComponentSettingsCommand replaces the settings of one instance.
type UpdateComponentSettingsCommand struct {
	PageID          uuid.UUID      `json:"page_id"`
	Index           int            `json:"index"`
	Settings        map[string]any `json:"settings"`
	ActorID         uuid.UUID      `json:"actor_id"`
	ExpectedVersion *int           `json:"expected_version,omitempty"`
}

func (UpdateComponentSettingsCommand) Type() string { return updateComponentSettingsMessageType }

func (m UpdateComponentSettingsCommand) Validate() error {
	errs := target("update_component_settings", m.PageID, m.ExpectedVersion)
	index(errs, "update_component_settings", "index", m.Index)
	if m.Settings == nil {
		errs["settings"] = validation.NewError("pagebuilder.pages.update_component_settings.settings_required", "settings is required")
	}
	return result(errs)
}

type PublishPageCommand struct {
	PageID          uuid.UUID `json:"page_id"`
	ActorID         uuid.UUID `json:"actor_id"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

func (PublishPageCommand) Type() string { return publishPageMessageType }

func (m PublishPageCommand) Validate() error {
	return result(target("publish", m.PageID, m.ExpectedVersion))
}

// UnpublishPageCommand takes a published page back to draft, or to archived
// when Archive is set.
type UnpublishPageCommand struct {
	PageID          uuid.UUID `json:"page_id"`
	Archive         bool      `json:"archive,omitempty"`
	ActorID         uuid.UUID `json:"actor_id"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

func (UnpublishPageCommand) Type() string { return unpublishPageMessageType }

func (m UnpublishPageCommand) Validate() error {
	return result(target("unpublish", m.PageID, m.ExpectedVersion))
}

type RestoreVersionCommand struct {
	PageID          uuid.UUID `json:"page_id"`
	Version         int       `json:"version"`
	ActorID         uuid.UUID `json:"actor_id"`
	ExpectedVersion *int      `json:"expected_version,omitempty"`
}

func (RestoreVersionCommand) Type() string { return restoreVersionMessageType }

func (m RestoreVersionCommand) Validate() error {
	errs := target("restore_version", m.PageID, m.ExpectedVersion)
	if m.Version <= 0 {
		errs["version"] = validation.NewError("pagebuilder.pages.restore_version.version_invalid", "version must be greater than zero")
	}
	return result(errs)
}

func target(op string, pageID uuid.UUID, expected *int) validation.Errors {
	errs := validation.Errors{}
	if pageID == uuid.Nil {
		errs["page_id"] = validation.NewError("pagebuilder.pages."+op+".page_id_required", "page_id is required")
	}
	if expected != nil && *expected <= 0 {
		errs["expected_version"] = validation.NewError("pagebuilder.pages."+op+".expected_version_invalid", "expected_version must be greater than zero when provided")
	}
	return errs
}

func index(errs validation.Errors, op, field string, value int) {
	if value < 0 {
		errs[field] = validation.NewError("pagebuilder.pages."+op+"."+field+"_invalid", field+" must not be negative")
	}
}

func result(errs validation.Errors) error {
	if len(errs) > 0 {
		return errs
	}
	return nil
}
