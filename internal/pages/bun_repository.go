package pages

import (
	"context"
	"fmt"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-pagebuilder/internal/storage/sqlerr"
)

// BunPageRepository implements PageRepository on bun. Pages are not cached:
// the version precondition has to be checked against the store.
type BunPageRepository struct {
	db       *bun.DB
	repo     repository.Repository[*Page]
	versions repository.Repository[*PageVersion]
}

func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return &BunPageRepository{
		db:       db,
		repo:     NewPageRepository(db),
		versions: NewPageVersionRepository(db),
	}
}

func (r *BunPageRepository) Create(ctx context.Context, page *Page) (*Page, error) {
	record := ClonePage(page)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("insert page: %w", err)
		}
		version := versionRecord(record, OperationCreate, record.CreatedBy)
		if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
			return fmt.Errorf("insert page version: %w", err)
		}
		return nil
	})
	if err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, &ConflictError{Resource: "page", Key: page.Slug}
		}
		return nil, &TransientError{Operation: OperationCreate, Cause: err}
	}
	return record, nil
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return normalizeLoaded(result), nil
}

func (r *BunPageRepository) GetBySlug(ctx context.Context, slug string) (*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "page", Key: slug}
	}
	return normalizeLoaded(records[0]), nil
}

func (r *BunPageRepository) List(ctx context.Context) ([]*Page, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.slug ASC")
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "page", "")
	}
	for i := range records {
		records[i] = normalizeLoaded(records[i])
	}
	return records, nil
}

// Replace writes the mutated page only when the stored version still equals
// mutation.ExpectedVersion, then appends the version record.
func (r *BunPageRepository) Replace(ctx context.Context, mutation Mutation) (*Page, error) {
	record := ClonePage(mutation.Page)
	record.Version = mutation.ExpectedVersion + 1

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model(record).
			Column("slug", "title", "status", "version", "content_data", "published_at", "updated_by", "updated_at").
			Where("?TableAlias.id = ?", record.ID).
			Where("?TableAlias.version = ?", mutation.ExpectedVersion).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			current := new(Page)
			err := tx.NewSelect().Model(current).Column("version").Where("?TableAlias.id = ?", record.ID).Scan(ctx)
			if sqlerr.IsNoRows(err) {
				return &NotFoundError{Resource: "page", Key: record.ID.String()}
			}
			if err != nil {
				return err
			}
			return &ConflictError{
				Resource:        "page",
				Key:             record.ID.String(),
				ExpectedVersion: mutation.ExpectedVersion,
				ActualVersion:   current.Version,
			}
		}
		version := versionRecord(record, mutation.Operation, mutation.Actor)
		if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
			return fmt.Errorf("insert page version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, mapWriteError(err, mutation.Operation, record.Slug)
	}
	return record, nil
}

func (r *BunPageRepository) ListVersions(ctx context.Context, pageID uuid.UUID) ([]*PageVersion, error) {
	if _, err := r.GetByID(ctx, pageID); err != nil {
		return nil, err
	}
	records, _, err := r.versions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.version ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page_version", pageID.String())
	}
	return records, nil
}

func (r *BunPageRepository) GetVersion(ctx context.Context, pageID uuid.UUID, number int) (*PageVersion, error) {
	key := pageID.String() + "@" + strconv.Itoa(number)
	records, _, err := r.versions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.version = ?", number)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page_version", key)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "page_version", Key: key}
	}
	return records[0], nil
}

func normalizeLoaded(page *Page) *Page {
	if page != nil && page.ContentData == nil {
		page.ContentData = []ComponentInstance{}
	}
	return page
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || sqlerr.IsNoRows(err) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return &TransientError{Operation: "read " + resource, Cause: err}
}

func mapWriteError(err error, operation, slug string) error {
	var (
		notFound *NotFoundError
		conflict *ConflictError
	)
	switch {
	case goerrors.As(err, &notFound), goerrors.As(err, &conflict):
		return err
	case sqlerr.IsUniqueViolation(err):
		return &ConflictError{Resource: "page", Key: slug}
	default:
		return &TransientError{Operation: operation, Cause: err}
	}
}
