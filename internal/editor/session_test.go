package editor_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/components"
	"github.com/goliatone/go-pagebuilder/internal/domain"
	"github.com/goliatone/go-pagebuilder/internal/editor"
	"github.com/goliatone/go-pagebuilder/internal/pages"
)

var (
	fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	actorID  = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
)

func testDefinitions() []*components.Definition {
	return []*components.Definition{
		{
			Type:        "hero",
			DisplayName: "Hero banner",
			Category:    "Layout",
			SettingsSchema: map[string]any{
				"type":     "object",
				"required": []any{"headline"},
				"properties": map[string]any{
					"headline": map[string]any{"type": "string", "default": "Welcome"},
					"subtitle": map[string]any{"type": "string"},
				},
			},
			UISchema: map[string]any{
				"ui:order": []any{"headline", "*"},
				"subtitle": map[string]any{"ui:widget": "textarea"},
			},
		},
		{Type: "quote", DisplayName: "Quote", Category: "Content"},
		{Type: "divider", DisplayName: "Divider", Category: "Layout"},
	}
}

type harness struct {
	svc      pages.Service
	registry *components.Registry
	page     *pages.Page
}

func newHarness(t *testing.T, types ...string) *harness {
	t.Helper()
	ctx := context.Background()
	defRepo := components.NewMemoryDefinitionRepository()
	if _, err := components.Seed(ctx, defRepo, testDefinitions(), func() time.Time { return fixedNow }); err != nil {
		t.Fatalf("seed definitions: %v", err)
	}
	registry := components.NewRegistry(defRepo)
	svc := pages.NewService(pages.NewMemoryPageRepository(), registry, pages.WithClock(func() time.Time { return fixedNow }))

	page, err := svc.CreatePage(ctx, pages.CreatePageRequest{Slug: "open-day", Title: "Open Day", ActorID: actorID})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	for _, componentType := range types {
		page, err = svc.AddComponent(ctx, pages.AddComponentRequest{PageID: page.ID, ComponentType: componentType, ActorID: actorID})
		if err != nil {
			t.Fatalf("add %s: %v", componentType, err)
		}
	}
	return &harness{svc: svc, registry: registry, page: page}
}

func (h *harness) open(t *testing.T, svc pages.Service, opts ...editor.Option) *editor.Session {
	t.Helper()
	if svc == nil {
		svc = h.svc
	}
	opts = append([]editor.Option{editor.WithActor(actorID)}, opts...)
	session, err := editor.Open(context.Background(), svc, h.registry, h.page.ID, opts...)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session
}

func types(page *pages.Page) []string {
	out := make([]string, len(page.ContentData))
	for i, item := range page.ContentData {
		out[i] = item.ComponentType
	}
	return out
}

type failingService struct {
	pages.Service
	err error
}

func (f *failingService) RemoveComponent(context.Context, pages.RemoveComponentRequest) (*pages.Page, error) {
	return nil, f.err
}

type gatedService struct {
	pages.Service
	entered chan struct{}
	release chan struct{}
}

func (g *gatedService) AddComponent(ctx context.Context, req pages.AddComponentRequest) (*pages.Page, error) {
	close(g.entered)
	<-g.release
	return g.Service.AddComponent(ctx, req)
}

type gatedRegistry struct {
	*components.Registry
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRegistry) Resolve(ctx context.Context, componentType string) (*components.Definition, error) {
	close(g.entered)
	<-g.release
	return g.Registry.Resolve(ctx, componentType)
}

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, componentType string, settings map[string]any) (string, error) {
	if componentType == "divider" {
		return "<hr>", nil
	}
	return fmt.Sprintf("<%s>%v</%s>", componentType, settings["headline"], componentType), nil
}

func TestOpenUnknownPage(t *testing.T) {
	h := newHarness(t)
	_, err := editor.Open(context.Background(), h.svc, h.registry, uuid.New())
	if !errors.Is(err, pages.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveSelectedInstanceClearsSelection(t *testing.T) {
	h := newHarness(t, "hero", "quote")
	session := h.open(t, nil)
	session.Select(0)

	page, err := session.Remove(context.Background(), 0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !reflect.DeepEqual(types(page), []string{"quote"}) {
		t.Fatalf("expected [quote], got %v", types(page))
	}
	if _, ok := session.Selected(); ok {
		t.Fatalf("expected selection cleared")
	}
	if page.Version != h.page.Version+1 {
		t.Fatalf("expected version %d, got %d", h.page.Version+1, page.Version)
	}
}

func TestRemoveBeforeSelectionShiftsIt(t *testing.T) {
	h := newHarness(t, "hero", "quote", "divider")
	session := h.open(t, nil)
	session.Select(2)

	if _, err := session.Remove(context.Background(), 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if index, ok := session.Selected(); !ok || index != 1 {
		t.Fatalf("expected selection 1, got %d (%v)", index, ok)
	}
}

func TestReorderSelectionFollowsInstance(t *testing.T) {
	h := newHarness(t, "hero", "quote", "divider")
	session := h.open(t, nil)
	session.Select(0)

	page, err := session.Reorder(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if !reflect.DeepEqual(types(page), []string{"quote", "divider", "hero"}) {
		t.Fatalf("unexpected order %v", types(page))
	}
	if index, _ := session.Selected(); index != 2 {
		t.Fatalf("expected selection to follow hero to 2, got %d", index)
	}
}

func TestDuplicateBeforeSelectionShiftsIt(t *testing.T) {
	h := newHarness(t, "hero", "quote")
	session := h.open(t, nil)
	session.Select(1)

	page, err := session.Duplicate(context.Background(), 0)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if !reflect.DeepEqual(types(page), []string{"hero", "hero", "quote"}) {
		t.Fatalf("unexpected content %v", types(page))
	}
	if index, _ := session.Selected(); index != 2 {
		t.Fatalf("expected selection 2, got %d", index)
	}
}

func TestFailedMutationRevertsState(t *testing.T) {
	h := newHarness(t, "hero", "quote")
	storeErr := &pages.TransientError{Operation: pages.OperationRemoveComponent, Cause: errors.New("connection refused")}
	session := h.open(t, &failingService{Service: h.svc, err: storeErr})
	session.Select(0)
	if err := session.StageSettings(map[string]any{"headline": "Draft"}); err != nil {
		t.Fatalf("stage: %v", err)
	}

	_, err := session.Remove(context.Background(), 0)
	if err != storeErr {
		t.Fatalf("expected service error unchanged, got %v", err)
	}
	if !reflect.DeepEqual(types(session.Page()), []string{"hero", "quote"}) {
		t.Fatalf("expected content restored, got %v", types(session.Page()))
	}
	if session.Page().Version != h.page.Version {
		t.Fatalf("expected version unchanged")
	}
	if index, ok := session.Selected(); !ok || index != 0 {
		t.Fatalf("expected selection restored to 0")
	}
	if !session.IsDirty() || session.IsSaving() {
		t.Fatalf("expected dirty and not saving after revert")
	}
}

func TestLocalIndexErrorSkipsService(t *testing.T) {
	h := newHarness(t, "hero")
	session := h.open(t, &failingService{Service: h.svc, err: errors.New("must not be called")})

	_, err := session.Remove(context.Background(), 4)
	var rangeErr *pages.IndexOutOfRangeError
	if !errors.As(err, &rangeErr) || rangeErr.Length != 1 {
		t.Fatalf("expected IndexOutOfRangeError, got %v", err)
	}
}

func TestSecondMutationWhileSavingIsRejected(t *testing.T) {
	h := newHarness(t, "quote")
	gate := &gatedService{Service: h.svc, entered: make(chan struct{}), release: make(chan struct{})}
	session := h.open(t, gate)

	type result struct {
		page *pages.Page
		err  error
	}
	done := make(chan result, 1)
	go func() {
		page, err := session.Add(context.Background(), "hero")
		done <- result{page, err}
	}()
	<-gate.entered

	if !session.IsSaving() {
		t.Fatalf("expected saving while the service call is pending")
	}
	view := session.View()
	if !reflect.DeepEqual(types(view), []string{"quote", "hero"}) {
		t.Fatalf("expected optimistic view, got %v", types(view))
	}
	if view.ContentData[1].Settings["headline"] != "Welcome" {
		t.Fatalf("expected optimistic defaults, got %v", view.ContentData[1].Settings)
	}
	if len(session.Page().ContentData) != 1 {
		t.Fatalf("authoritative page must not change before the service returns")
	}
	if _, err := session.Remove(context.Background(), 0); !errors.Is(err, editor.ErrMutationInFlight) {
		t.Fatalf("expected ErrMutationInFlight, got %v", err)
	}

	close(gate.release)
	res := <-done
	if res.err != nil {
		t.Fatalf("add: %v", res.err)
	}
	if session.IsSaving() || len(session.Page().ContentData) != 2 {
		t.Fatalf("expected adopted page after save")
	}
}

func TestSaveSettingsValidationKeepsStagedValues(t *testing.T) {
	h := newHarness(t, "hero")
	session := h.open(t, nil)
	session.Select(0)
	ctx := context.Background()

	if err := session.StageSettings(map[string]any{"subtitle": "No headline"}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	fieldErrs, err := session.ValidateStaged(ctx)
	if err != nil || len(fieldErrs) == 0 {
		t.Fatalf("expected staged validation errors, got %v (%v)", fieldErrs, err)
	}
	_, err = session.SaveSettings(ctx)
	if !errors.Is(err, pages.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !session.IsDirty() {
		t.Fatalf("staged values must survive a rejected save")
	}
	if session.Page().ContentData[0].Settings["headline"] != "Welcome" {
		t.Fatalf("content must be unchanged")
	}

	if err := session.StageSettings(map[string]any{"headline": "Visit us"}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	page, err := session.SaveSettings(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if page.ContentData[0].Settings["headline"] != "Visit us" || session.IsDirty() {
		t.Fatalf("expected saved settings and clean session")
	}
}

func TestSaveSettingsWithoutChangesIsNoop(t *testing.T) {
	h := newHarness(t, "hero")
	session := h.open(t, nil)
	if _, err := session.SaveSettings(context.Background()); !errors.Is(err, editor.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	session.Select(0)
	page, err := session.SaveSettings(context.Background())
	if err != nil || page.Version != h.page.Version {
		t.Fatalf("expected unchanged page, got %v (%v)", page, err)
	}
}

func TestSelectOutOfBoundsClears(t *testing.T) {
	h := newHarness(t, "hero")
	session := h.open(t, nil)
	if !session.Select(0) {
		t.Fatalf("expected selection")
	}
	if session.Select(3) {
		t.Fatalf("expected out of bounds select to clear")
	}
	if _, ok := session.Selected(); ok {
		t.Fatalf("expected no selection")
	}
	if err := session.StageSettings(map[string]any{}); !errors.Is(err, editor.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestFormShowsStagedValues(t *testing.T) {
	h := newHarness(t, "hero")
	session := h.open(t, nil)
	session.Select(0)
	ctx := context.Background()

	form, err := session.Form(ctx)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if form.Fields[0].Name != "headline" || form.Fields[0].Value != "Welcome" {
		t.Fatalf("unexpected first field %+v", form.Fields[0])
	}

	if err := session.StageSettings(map[string]any{"headline": "Hello"}); err != nil {
		t.Fatalf("stage: %v", err)
	}
	form, err = session.Form(ctx)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	headline, _ := form.Lookup("headline")
	subtitle, _ := form.Lookup("subtitle")
	if headline.Value != "Hello" || subtitle.Widget != "textarea" {
		t.Fatalf("unexpected staged form %+v %+v", headline, subtitle)
	}

	session.DiscardSettings()
	if session.IsDirty() {
		t.Fatalf("expected clean after discard")
	}
}

func TestCanvasEditAndPreviewModes(t *testing.T) {
	h := newHarness(t, "hero", "divider")
	session := h.open(t, nil, editor.WithRenderer(stubRenderer{}))
	session.Select(0)
	ctx := context.Background()

	canvas, err := session.Canvas(ctx)
	if err != nil {
		t.Fatalf("canvas: %v", err)
	}
	want := []editor.CanvasItem{
		{Index: 0, Type: "hero", DisplayName: "Hero banner", Selected: true, Output: "<hero>Welcome</hero>"},
		{Index: 1, Type: "divider", DisplayName: "Divider", Output: "<hr>"},
	}
	if !reflect.DeepEqual(canvas.Items, want) {
		t.Fatalf("unexpected edit canvas %#v", canvas.Items)
	}

	session.SetPreviewMode(true)
	canvas, err = session.Canvas(ctx)
	if err != nil {
		t.Fatalf("canvas: %v", err)
	}
	if !canvas.Preview || canvas.Items[0].DisplayName != "" || canvas.Items[0].Selected {
		t.Fatalf("preview must carry outputs only, got %#v", canvas.Items[0])
	}
}

func TestCanvasRequiresRenderer(t *testing.T) {
	h := newHarness(t)
	session := h.open(t, nil)
	if _, err := session.Canvas(context.Background()); !errors.Is(err, editor.ErrRendererRequired) {
		t.Fatalf("expected ErrRendererRequired, got %v", err)
	}
}

func TestPublishAndUnpublish(t *testing.T) {
	h := newHarness(t, "hero")
	session := h.open(t, nil)
	ctx := context.Background()

	page, err := session.Publish(ctx)
	if err != nil || page.Status != domain.StatusPublished {
		t.Fatalf("expected published, got %v (%v)", page, err)
	}
	page, err = session.Unpublish(ctx, false)
	if err != nil || page.Status != domain.StatusDraft {
		t.Fatalf("expected draft, got %v (%v)", page, err)
	}
}

func TestConcurrentEditorsConflictAndRefresh(t *testing.T) {
	h := newHarness(t, "hero")
	first := h.open(t, nil)
	second := h.open(t, nil)
	ctx := context.Background()

	if _, err := first.Add(ctx, "quote"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := second.Add(ctx, "divider")
	var conflict *pages.ConflictError
	if !errors.As(err, &conflict) || !conflict.IsVersionConflict() {
		t.Fatalf("expected version conflict, got %v", err)
	}

	page, err := second.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !reflect.DeepEqual(types(page), []string{"hero", "quote"}) {
		t.Fatalf("expected refreshed content, got %v", types(page))
	}
	if _, err := second.Add(ctx, "divider"); err != nil {
		t.Fatalf("add after refresh: %v", err)
	}
}

func TestAddResolvesDefaultsWithoutHoldingSession(t *testing.T) {
	h := newHarness(t, "hero")
	gate := &gatedRegistry{Registry: h.registry, entered: make(chan struct{}), release: make(chan struct{})}
	session, err := editor.Open(context.Background(), h.svc, gate, h.page.ID, editor.WithActor(actorID))
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := session.Add(context.Background(), "hero")
		done <- err
	}()
	<-gate.entered

	states := make(chan editor.State, 1)
	go func() { states <- session.State() }()
	select {
	case state := <-states:
		if state.Saving {
			t.Fatalf("expected no save in flight while resolving defaults")
		}
		if got := types(state.Page); !reflect.DeepEqual(got, []string{"hero"}) {
			t.Fatalf("expected untouched page while resolving, got %v", got)
		}
	case <-time.After(time.Second):
		close(gate.release)
		t.Fatalf("session state blocked while the registry was resolving")
	}

	close(gate.release)
	if err := <-done; err != nil {
		t.Fatalf("add: %v", err)
	}
	page := session.Page()
	if got := types(page); !reflect.DeepEqual(got, []string{"hero", "hero"}) {
		t.Fatalf("unexpected types %v", got)
	}
	if page.ContentData[1].Settings["headline"] != "Welcome" {
		t.Fatalf("expected defaults on added instance, got %#v", page.ContentData[1].Settings)
	}
}
