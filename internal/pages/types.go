package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-pagebuilder/internal/domain"
)

// ComponentInstance is one placed block on a page. It has no identity beyond
// its position in the page content.
type ComponentInstance struct {
	ComponentType string         `json:"component_type"`
	Settings      map[string]any `json:"settings"`
}

// Page is the aggregate root of the builder.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID          uuid.UUID           `bun:",pk,type:uuid" json:"id"`
	Slug        string              `bun:"slug,notnull,unique" json:"slug"`
	Title       string              `bun:"title,notnull" json:"title"`
	Status      domain.Status       `bun:"status,notnull,default:'draft'" json:"status"`
	Version     int                 `bun:"version,notnull,default:1" json:"version"`
	ContentData []ComponentInstance `bun:"content_data,type:jsonb,notnull" json:"content_data"`
	PublishedAt *time.Time          `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedBy   uuid.UUID           `bun:"created_by,type:uuid" json:"created_by"`
	UpdatedBy   uuid.UUID           `bun:"updated_by,type:uuid" json:"updated_by"`
	CreatedAt   time.Time           `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time           `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// VersionSnapshot is the page state captured by a version record.
type VersionSnapshot struct {
	Title       string              `json:"title"`
	Status      domain.Status       `json:"status"`
	ContentData []ComponentInstance `json:"content_data"`
}

// PageVersion records the state of a page after a persisted mutation.
type PageVersion struct {
	bun.BaseModel `bun:"table:page_versions,alias:pv"`

	ID        uuid.UUID       `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID       `bun:"page_id,notnull,type:uuid,unique:page_version" json:"page_id"`
	Version   int             `bun:"version,notnull,unique:page_version" json:"version"`
	Operation string          `bun:"operation,notnull" json:"operation"`
	Snapshot  VersionSnapshot `bun:"snapshot,type:jsonb,notnull" json:"snapshot"`
	CreatedBy uuid.UUID       `bun:"created_by,type:uuid" json:"created_by"`
	CreatedAt time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Operation names recorded on version records.
const (
	OperationCreate          = "create"
	OperationUpdate          = "update"
	OperationAddComponent    = "add_component"
	OperationRemoveComponent = "remove_component"
	OperationDuplicate       = "duplicate_component"
	OperationReorder         = "reorder_components"
	OperationUpdateSettings  = "update_component_settings"
	OperationPublish         = "publish"
	OperationUnpublish       = "unpublish"
	OperationRestore         = "restore_version"
)

// Mutation describes a write produced by the service.
type Mutation struct {
	Page            *Page
	ExpectedVersion int
	Operation       string
	Actor           uuid.UUID
}

// ClonePage returns a deep copy of page.
func ClonePage(page *Page) *Page {
	if page == nil {
		return nil
	}
	cloned := *page
	cloned.ContentData = CloneContent(page.ContentData)
	if page.PublishedAt != nil {
		ts := *page.PublishedAt
		cloned.PublishedAt = &ts
	}
	return &cloned
}

func cloneVersion(version *PageVersion) *PageVersion {
	if version == nil {
		return nil
	}
	cloned := *version
	cloned.Snapshot.ContentData = CloneContent(version.Snapshot.ContentData)
	return &cloned
}

func snapshotOf(page *Page) VersionSnapshot {
	return VersionSnapshot{
		Title:       page.Title,
		Status:      page.Status,
		ContentData: CloneContent(page.ContentData),
	}
}
