package pages

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PageRepository is the persistence boundary for page aggregates. Writes are
// whole-page replacements guarded by the version the caller read; every write
// appends a version record in the same unit of work.
type PageRepository interface {
	Create(ctx context.Context, page *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Replace(ctx context.Context, mutation Mutation) (*Page, error)
	ListVersions(ctx context.Context, pageID uuid.UUID) ([]*PageVersion, error)
	GetVersion(ctx context.Context, pageID uuid.UUID, version int) (*PageVersion, error)
}

// NewPageRepository builds the generic bun repository for pages.
func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.Slug
		},
	})
}

// NewPageVersionRepository builds the generic bun repository for version records.
func NewPageVersionRepository(db *bun.DB) repository.Repository[*PageVersion] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PageVersion]{
		NewRecord: func() *PageVersion { return &PageVersion{} },
		GetID: func(pv *PageVersion) uuid.UUID {
			return pv.ID
		},
		SetID: func(pv *PageVersion, id uuid.UUID) {
			pv.ID = id
		},
		GetIdentifier: func() string {
			return ""
		},
		GetIdentifierValue: func(*PageVersion) string {
			return ""
		},
	})
}

func versionRecord(page *Page, operation string, actor uuid.UUID) *PageVersion {
	return &PageVersion{
		ID:        uuid.New(),
		PageID:    page.ID,
		Version:   page.Version,
		Operation: operation,
		Snapshot:  snapshotOf(page),
		CreatedBy: actor,
		CreatedAt: page.UpdatedAt,
	}
}
