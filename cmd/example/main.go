package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"

	pagebuilder "github.com/goliatone/go-pagebuilder"
	pagescmd "github.com/goliatone/go-pagebuilder/internal/commands/pages"
	"github.com/goliatone/go-pagebuilder/internal/di"
	"github.com/goliatone/go-pagebuilder/internal/pages"
)

//go:embed definitions
var definitionFiles embed.FS

// summaryRenderer prints a one line summary of every instance.
type summaryRenderer struct{}

func (summaryRenderer) Render(_ context.Context, componentType string, settings map[string]any) (string, error) {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, settings[key]))
	}
	return fmt.Sprintf("<%s %s>", componentType, strings.Join(parts, " ")), nil
}

func main() {
	ctx := context.Background()

	cfg := pagebuilder.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "info"
	cfg.Commands.Enabled = true
	cfg.Commands.AutoRegisterDispatcher = true
	if dsn := os.Getenv("PAGEBUILDER_DSN"); dsn != "" {
		cfg.Storage.Provider = "bun"
		cfg.Storage.DSN = dsn
		cfg.Cache.Enabled = true
		if driver := os.Getenv("PAGEBUILDER_DRIVER"); driver != "" {
			cfg.Storage.Driver = driver
		}
	}

	definitions, err := fs.Sub(definitionFiles, "definitions")
	if err != nil {
		log.Fatalf("definitions: %v", err)
	}

	module, err := pagebuilder.New(ctx, cfg,
		di.WithDefinitionsFS(definitions),
		di.WithRenderer(summaryRenderer{}),
	)
	if err != nil {
		log.Fatalf("initialise page builder: %v", err)
	}
	defer module.Close()

	if err := run(ctx, module); err != nil {
		log.Fatalf("walkthrough: %v", err)
	}
}

func run(ctx context.Context, module *pagebuilder.Module) error {
	editorID := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

	groups, err := module.Catalog(ctx, pagebuilder.CatalogFilter{})
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	fmt.Println("Component catalog:")
	for _, group := range groups {
		names := make([]string, 0, len(group.Definitions))
		for _, def := range group.Definitions {
			names = append(names, def.DisplayName)
		}
		fmt.Printf("  %s: %s\n", group.Category, strings.Join(names, ", "))
	}

	page, err := module.Pages().CreatePage(ctx, pages.CreatePageRequest{
		Slug:    "Open Day 2026",
		Title:   "Open Day 2026",
		ActorID: editorID,
	})
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	fmt.Printf("\nCreated page %q (v%d)\n", page.Slug, page.Version)

	session, err := module.OpenEditor(ctx, page.ID, editorID)
	if err != nil {
		return fmt.Errorf("open editor: %w", err)
	}
	for _, componentType := range []string{"hero", "event_card", "quote", "divider"} {
		if _, err := session.Add(ctx, componentType); err != nil {
			return fmt.Errorf("add %s: %w", componentType, err)
		}
	}
	if _, err := session.Reorder(ctx, 2, 1); err != nil {
		return fmt.Errorf("reorder: %w", err)
	}

	session.Select(2)
	if err := session.StageSettings(map[string]any{"title": "", "starts_at": "2026-10-03T10:00:00Z", "capacity": 0}); err != nil {
		return fmt.Errorf("stage settings: %w", err)
	}
	if _, err := session.SaveSettings(ctx); err != nil {
		var invalid *pagebuilder.ValidationError
		if !errors.As(err, &invalid) {
			return fmt.Errorf("save settings: %w", err)
		}
		fmt.Println("\nRejected settings:")
		for _, fieldErr := range invalid.Errors {
			fmt.Printf("  %s: %s\n", fieldErr.Field, fieldErr.Message)
		}
	}
	if err := session.StageSettings(map[string]any{
		"title":     "Campus tour",
		"starts_at": "2026-10-03T10:00:00Z",
		"audience":  "prospective",
		"capacity":  120,
	}); err != nil {
		return fmt.Errorf("stage settings: %w", err)
	}
	if _, err := session.SaveSettings(ctx); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	form, err := session.Form(ctx)
	if err != nil {
		return fmt.Errorf("form: %w", err)
	}
	fmt.Println("\nEvent card form:")
	for _, group := range form.Grouped() {
		label := group.Name
		if label == "" {
			label = "General"
		}
		for _, field := range group.Fields {
			fmt.Printf("  [%s] %s (%s) = %v\n", label, field.Label, field.Widget, field.Value)
		}
	}

	current := session.Page()
	if err := dispatcher.Dispatch(ctx, pagescmd.UpdateComponentSettingsCommand{
		PageID:          current.ID,
		Index:           0,
		Settings:        map[string]any{"headline": "Open Day 2026", "subheading": "Meet our students and staff"},
		ActorID:         editorID,
		ExpectedVersion: &current.Version,
	}); err != nil {
		return fmt.Errorf("dispatch settings update: %w", err)
	}
	if _, err := session.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	if _, err := session.Publish(ctx); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	session.SetPreviewMode(true)
	canvas, err := session.Canvas(ctx)
	if err != nil {
		return fmt.Errorf("canvas: %w", err)
	}
	fmt.Printf("\nPublished preview (v%d):\n", canvas.Version)
	for _, item := range canvas.Items {
		fmt.Printf("  %d %s\n", item.Index, item.Output)
	}

	versions, err := module.Pages().ListVersions(ctx, page.ID)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}
	fmt.Println("\nVersion history:")
	for _, version := range versions {
		fmt.Printf("  v%d %-18s %s\n", version.Version, version.Operation, version.Snapshot.Status)
	}

	final, err := module.Pages().GetPage(ctx, page.ID)
	if err != nil {
		return fmt.Errorf("get page: %w", err)
	}
	encoded, err := json.MarshalIndent(final.ContentData, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("\nContent data:\n%s\n", encoded)
	return nil
}
