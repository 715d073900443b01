package pagescmd

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/commands"
	"github.com/goliatone/go-pagebuilder/internal/components"
	"github.com/goliatone/go-pagebuilder/internal/pages"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type flakyRepository struct {
	pages.PageRepository
	down bool
}

func (r *flakyRepository) Replace(ctx context.Context, mutation pages.Mutation) (*pages.Page, error) {
	if r.down {
		return nil, &pages.TransientError{Operation: mutation.Operation, Cause: errors.New("connection refused")}
	}
	return r.PageRepository.Replace(ctx, mutation)
}

type fixture struct {
	svc  pages.Service
	repo *flakyRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	defRepo := components.NewMemoryDefinitionRepository()
	defs := []*components.Definition{
		{
			Type:        "hero",
			DisplayName: "Hero",
			SettingsSchema: map[string]any{
				"type":       "object",
				"required":   []any{"headline"},
				"properties": map[string]any{"headline": map[string]any{"type": "string", "default": "Welcome"}},
			},
		},
		{Type: "quote", DisplayName: "Quote"},
	}
	if _, err := components.Seed(ctx, defRepo, defs, func() time.Time { return fixedNow }); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := &flakyRepository{PageRepository: pages.NewMemoryPageRepository()}
	svc := pages.NewService(repo, components.NewRegistry(defRepo), pages.WithClock(func() time.Time { return fixedNow }))
	return &fixture{svc: svc, repo: repo}
}

func (f *fixture) createPage(t *testing.T, slug string) *pages.Page {
	t.Helper()
	ctx := context.Background()
	if err := NewCreatePageHandler(f.svc, nil).Execute(ctx, CreatePageCommand{Slug: slug, Title: "Page " + slug}); err != nil {
		t.Fatalf("create: %v", err)
	}
	page, err := f.svc.GetPageBySlug(ctx, slug)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	return page
}

func textCodeOf(err error) string {
	var retryable *goerrors.RetryableError
	if goerrors.As(err, &retryable) && retryable.BaseError != nil {
		return retryable.TextCode
	}
	var base *goerrors.Error
	if goerrors.As(err, &base) {
		return base.TextCode
	}
	return ""
}

func TestCommandValidation(t *testing.T) {
	cases := []struct {
		name string
		msg  interface{ Validate() error }
	}{
		{"create without title", CreatePageCommand{}},
		{"add without page", AddComponentCommand{ComponentType: "hero"}},
		{"add without type", AddComponentCommand{PageID: uuid.New()}},
		{"remove negative index", RemoveComponentCommand{PageID: uuid.New(), Index: -1}},
		{"reorder negative target", ReorderComponentsCommand{PageID: uuid.New(), To: -2}},
		{"settings missing", UpdateComponentSettingsCommand{PageID: uuid.New()}},
		{"zero expected version", PublishPageCommand{PageID: uuid.New(), ExpectedVersion: new(int)}},
		{"restore version zero", RestoreVersionCommand{PageID: uuid.New()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.msg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	valid := ReorderComponentsCommand{PageID: uuid.New(), From: 0, To: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid command, got %v", err)
	}
}

func TestHandlerValidationShortCircuits(t *testing.T) {
	f := newFixture(t)
	err := NewAddComponentHandler(f.svc, nil).Execute(context.Background(), AddComponentCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestAddAndReorderThroughHandlers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.createPage(t, "admissions")

	add := NewAddComponentHandler(f.svc, nil)
	for _, componentType := range []string{"hero", "quote"} {
		if err := add.Execute(ctx, AddComponentCommand{PageID: page.ID, ComponentType: componentType}); err != nil {
			t.Fatalf("add %s: %v", componentType, err)
		}
	}
	if err := NewReorderComponentsHandler(f.svc, nil).Execute(ctx, ReorderComponentsCommand{PageID: page.ID, From: 0, To: 1}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	stored, err := f.svc.GetPage(ctx, page.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Version != page.Version+3 {
		t.Fatalf("expected version %d, got %d", page.Version+3, stored.Version)
	}
	if stored.ContentData[0].ComponentType != "quote" || stored.ContentData[1].ComponentType != "hero" {
		t.Fatalf("unexpected order %+v", stored.ContentData)
	}
}

func TestHandlersCategorizeServiceErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.createPage(t, "research")

	err := NewRemoveComponentHandler(f.svc, nil).Execute(ctx, RemoveComponentCommand{PageID: page.ID, Index: 3})
	if !goerrors.IsCategory(err, goerrors.CategoryBadInput) || textCodeOf(err) != "INDEX_OUT_OF_RANGE" {
		t.Fatalf("expected bad_input INDEX_OUT_OF_RANGE, got %v (%s)", err, textCodeOf(err))
	}

	err = NewPublishPageHandler(f.svc, nil).Execute(ctx, PublishPageCommand{PageID: uuid.New()})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) || textCodeOf(err) != "PAGE_NOT_FOUND" {
		t.Fatalf("expected PAGE_NOT_FOUND, got %v (%s)", err, textCodeOf(err))
	}

	err = NewAddComponentHandler(f.svc, nil).Execute(ctx, AddComponentCommand{PageID: page.ID, ComponentType: "carousel"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) || textCodeOf(err) != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v (%s)", err, textCodeOf(err))
	}

	stale := page.Version + 5
	err = NewPublishPageHandler(f.svc, nil).Execute(ctx, PublishPageCommand{PageID: page.ID, ExpectedVersion: &stale})
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) || textCodeOf(err) != "VERSION_CONFLICT" {
		t.Fatalf("expected VERSION_CONFLICT, got %v (%s)", err, textCodeOf(err))
	}

	err = NewCreatePageHandler(f.svc, nil).Execute(ctx, CreatePageCommand{Slug: "research", Title: "Again"})
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) || textCodeOf(err) != "SLUG_CONFLICT" {
		t.Fatalf("expected SLUG_CONFLICT, got %v (%s)", err, textCodeOf(err))
	}
}

func TestTransientErrorsRetryableUnlessIndexRelative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := f.createPage(t, "library")
	if err := NewAddComponentHandler(f.svc, nil).Execute(ctx, AddComponentCommand{PageID: page.ID, ComponentType: "quote"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	f.repo.down = true

	err := NewPublishPageHandler(f.svc, nil).Execute(ctx, PublishPageCommand{PageID: page.ID})
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) || !goerrors.IsRetryableError(err) {
		t.Fatalf("expected retryable external error, got %v", err)
	}

	err = NewDuplicateComponentHandler(f.svc, nil).Execute(ctx, DuplicateComponentCommand{PageID: page.ID, Index: 0})
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) || goerrors.IsRetryableError(err) {
		t.Fatalf("expected non-retryable external error for duplicate, got %v", err)
	}
	if textCodeOf(err) != "STORE_UNAVAILABLE" {
		t.Fatalf("expected STORE_UNAVAILABLE, got %s", textCodeOf(err))
	}
}

func TestHandlersCoverEveryOperation(t *testing.T) {
	f := newFixture(t)
	handlers := NewHandlerSet(f.svc, commands.CommandLogger(nil, "pages")).All()
	if len(handlers) != 9 {
		t.Fatalf("expected nine handlers, got %d", len(handlers))
	}
	for i, handler := range handlers {
		if handler == nil {
			t.Fatalf("handler %d is nil", i)
		}
	}
}
