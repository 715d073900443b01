package pagebuilder_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"

	pagebuilder "github.com/goliatone/go-pagebuilder"
	pagescmd "github.com/goliatone/go-pagebuilder/internal/commands/pages"
	"github.com/goliatone/go-pagebuilder/internal/di"
	"github.com/goliatone/go-pagebuilder/internal/pages"
)

const heroDefinition = `---
component_type: hero
display_name: Hero Banner
category: Layout
settings_schema:
  type: object
  required: [headline]
  properties:
    headline:
      type: string
      default: Welcome
      minLength: 1
    tone:
      type: string
      enum: [light, dark]
      default: light
---
Large headline with an optional tone.
`

const quoteDefinition = `{
  "component_type": "quote",
  "display_name": "Student Quote",
  "category": "Content",
  "settings_schema": {
    "type": "object",
    "properties": {"text": {"type": "string", "default": ""}}
  }
}`

func newModule(t *testing.T, mutate func(*pagebuilder.Config)) *pagebuilder.Module {
	t.Helper()
	cfg := pagebuilder.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	fsys := fstest.MapFS{
		"hero.md":    {Data: []byte(heroDefinition)},
		"quote.json": {Data: []byte(quoteDefinition)},
	}
	module, err := pagebuilder.New(context.Background(), cfg, di.WithDefinitionsFS(fsys))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func TestModuleCatalogGroupsByCategory(t *testing.T) {
	module := newModule(t, nil)

	groups, err := module.Catalog(context.Background(), pagebuilder.CatalogFilter{})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(groups))
	}

	groups, err = module.Catalog(context.Background(), pagebuilder.CatalogFilter{Search: "quote"})
	if err != nil {
		t.Fatalf("catalog search: %v", err)
	}
	if len(groups) != 1 || groups[0].Definitions[0].Type != "quote" {
		t.Fatalf("expected only the quote definition, got %#v", groups)
	}
}

func TestModuleRenderFormAndValidate(t *testing.T) {
	module := newModule(t, nil)
	ctx := context.Background()

	fields, err := module.RenderForm(ctx, "hero", map[string]any{"headline": "Open Day"})
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	headline, ok := fields.Lookup("headline")
	if !ok || headline.Value != "Open Day" {
		t.Fatalf("expected headline value Open Day, got %#v", headline)
	}
	tone, ok := fields.Lookup("tone")
	if !ok || len(tone.Options) != 2 {
		t.Fatalf("expected tone select with 2 options, got %#v", tone)
	}

	problems, err := module.ValidateSettings(ctx, "hero", map[string]any{"headline": "", "tone": "neon"})
	if err != nil {
		t.Fatalf("validate settings: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %#v", problems)
	}

	if _, err := module.RenderForm(ctx, "missing", nil); !errors.Is(err, pagebuilder.ErrDefinitionNotFound) {
		t.Fatalf("expected ErrDefinitionNotFound, got %v", err)
	}
}

func TestModuleEditorRoundTrip(t *testing.T) {
	module := newModule(t, nil)
	ctx := context.Background()
	actor := uuid.New()

	page, err := module.Pages().CreatePage(ctx, pages.CreatePageRequest{Slug: "open-day", Title: "Open Day", ActorID: actor})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	session, err := module.OpenEditor(ctx, page.ID, actor)
	if err != nil {
		t.Fatalf("open editor: %v", err)
	}
	if _, err := session.Add(ctx, "hero"); err != nil {
		t.Fatalf("add hero: %v", err)
	}
	if _, err := session.Add(ctx, "quote"); err != nil {
		t.Fatalf("add quote: %v", err)
	}
	if _, err := session.Reorder(ctx, 1, 0); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if !session.Select(1) {
		t.Fatalf("expected hero at index 1 to be selectable")
	}
	if err := session.StageSettings(map[string]any{"headline": "Visit us", "tone": "dark"}); err != nil {
		t.Fatalf("stage settings: %v", err)
	}
	if _, err := session.SaveSettings(ctx); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	published, err := session.Publish(ctx)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.ContentData[0].ComponentType != "quote" || published.ContentData[1].Settings["headline"] != "Visit us" {
		t.Fatalf("unexpected content after editing: %#v", published.ContentData)
	}

	versions, err := module.Pages().ListVersions(ctx, page.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != published.Version {
		t.Fatalf("expected %d versions, got %d", published.Version, len(versions))
	}
}

func TestModuleSurfacesTypedErrors(t *testing.T) {
	module := newModule(t, nil)
	ctx := context.Background()

	page, err := module.Pages().CreatePage(ctx, pages.CreatePageRequest{Slug: "news", Title: "News"})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	_, err = module.Pages().ReorderComponents(ctx, pages.ReorderComponentsRequest{PageID: page.ID, From: 0, To: 1})
	var indexErr *pagebuilder.IndexOutOfRangeError
	if !errors.As(err, &indexErr) {
		t.Fatalf("expected IndexOutOfRangeError, got %v", err)
	}

	_, err = module.Pages().GetPage(ctx, uuid.New())
	if !errors.Is(err, pagebuilder.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestModuleCommandsRespectConfig(t *testing.T) {
	disabled := newModule(t, nil)
	if disabled.Commands() != nil {
		t.Fatalf("expected no command handlers when commands are disabled")
	}

	module := newModule(t, func(cfg *pagebuilder.Config) {
		cfg.Commands.Enabled = true
	})
	handlers := module.Commands()
	if handlers == nil {
		t.Fatalf("expected command handlers")
	}

	ctx := context.Background()
	if err := handlers.Create.Execute(ctx, pagescmd.CreatePageCommand{Slug: "events", Title: "Events", ActorID: uuid.New()}); err != nil {
		t.Fatalf("create via command: %v", err)
	}
	page, err := module.Pages().GetPageBySlug(ctx, "events")
	if err != nil {
		t.Fatalf("get page by slug: %v", err)
	}
	if page.Title != "Events" {
		t.Fatalf("unexpected title %q", page.Title)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := pagebuilder.DefaultConfig()
	cfg.Cache.Enabled = true

	if _, err := pagebuilder.New(context.Background(), cfg); !errors.Is(err, pagebuilder.ErrCacheRequiresBunStorage) {
		t.Fatalf("expected ErrCacheRequiresBunStorage, got %v", err)
	}
}
