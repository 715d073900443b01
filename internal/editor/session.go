package editor

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/components"
	"github.com/goliatone/go-pagebuilder/internal/domain"
	"github.com/goliatone/go-pagebuilder/internal/forms"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	pbschema "github.com/goliatone/go-pagebuilder/internal/schema"
	"github.com/goliatone/go-pagebuilder/internal/validation"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// Registry is the definition lookup a session needs.
type Registry interface {
	GetDefinition(ctx context.Context, componentType string) (*components.Definition, error)
	Resolve(ctx context.Context, componentType string) (*components.Definition, error)
}

type Option func(*Session)

// WithRenderer sets the renderer used by Canvas.
func WithRenderer(renderer interfaces.ComponentRenderer) Option {
	return func(s *Session) {
		s.renderer = renderer
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActor records who performs the session's mutations.
func WithActor(actor uuid.UUID) Option {
	return func(s *Session) {
		s.actor = actor
	}
}

// WithVersionCheck controls whether mutations carry the session's page
// version as expected version. Enabled by default.
func WithVersionCheck(enabled bool) Option {
	return func(s *Session) {
		s.versionCheck = enabled
	}
}

// Session is one editor's working state over a single page. The page it
// holds is authoritative: it only changes to a page returned by the service.
// While a mutation is in flight View returns the optimistic page instead.
type Session struct {
	mu sync.Mutex

	service  pages.Service
	registry Registry
	renderer interfaces.ComponentRenderer
	logger   interfaces.Logger

	actor        uuid.UUID
	versionCheck bool

	page       *pages.Page
	optimistic *pages.Page
	selected   *int
	staged     map[string]any
	preview    bool
	saving     bool
}

// State is a copy of the session's UI state.
type State struct {
	Page          *pages.Page
	SelectedIndex *int
	PreviewMode   bool
	Dirty         bool
	Saving        bool
}

// Open loads the page and starts a session on it.
func Open(ctx context.Context, service pages.Service, registry Registry, pageID uuid.UUID, opts ...Option) (*Session, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	s := &Session{
		service:      service,
		registry:     registry,
		logger:       logging.NoOp(),
		versionCheck: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	page, err := service.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	s.page = page
	s.logger = logging.WithFields(s.logger, map[string]any{"page_id": page.ID.String()})
	s.logger.Debug("editor.session.open", "version", page.Version, "components", len(page.ContentData))
	return s, nil
}

// Page returns a copy of the authoritative page.
func (s *Session) Page() *pages.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pages.ClonePage(s.page)
}

// View returns the page the editor should display: the optimistic page while
// saving, the authoritative page otherwise.
func (s *Session) View() *pages.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pages.ClonePage(s.viewLocked())
}

func (s *Session) viewLocked() *pages.Page {
	if s.saving && s.optimistic != nil {
		return s.optimistic
	}
	return s.page
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Page:          pages.ClonePage(s.viewLocked()),
		SelectedIndex: copyIndex(s.selected),
		PreviewMode:   s.preview,
		Dirty:         s.staged != nil,
		Saving:        s.saving,
	}
}

// Selected returns the selected index.
func (s *Session) Selected() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return 0, false
	}
	return *s.selected, true
}

// IsDirty reports staged settings that have not been saved.
func (s *Session) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staged != nil
}

func (s *Session) IsSaving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

func (s *Session) PreviewMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

func (s *Session) SetPreviewMode(preview bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = preview
}

// Select selects the instance at index in the displayed page. An index out
// of bounds clears the selection. Changing the selection drops staged
// settings. Select reports whether an instance is selected afterwards.
func (s *Session) Select(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.viewLocked().ContentData) {
		s.clearSelectionLocked()
		return false
	}
	if s.selected == nil || *s.selected != index {
		s.staged = nil
	}
	s.selected = &index
	return true
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelectionLocked()
}

func (s *Session) clearSelectionLocked() {
	s.selected = nil
	s.staged = nil
}

// StageSettings keeps values as the pending settings of the selected
// instance and marks the session dirty. Nothing is persisted.
func (s *Session) StageSettings(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return ErrNoSelection
	}
	staged := pbschema.CloneMap(values)
	if staged == nil {
		staged = map[string]any{}
	}
	s.staged = staged
	return nil
}

func (s *Session) DiscardSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}

// Form renders the settings form of the selected instance, showing staged
// values when there are any.
func (s *Session) Form(ctx context.Context) (forms.FieldSet, error) {
	instance, values, err := s.selectedInstance()
	if err != nil {
		return forms.FieldSet{}, err
	}
	def, err := s.registry.GetDefinition(ctx, instance.ComponentType)
	if err != nil {
		return forms.FieldSet{}, err
	}
	return forms.Render(def.SettingsSchema, def.UISchema, values)
}

// ValidateStaged checks the settings that SaveSettings would send. It
// returns nil when they are valid.
func (s *Session) ValidateStaged(ctx context.Context) ([]forms.FieldError, error) {
	instance, values, err := s.selectedInstance()
	if err != nil {
		return nil, err
	}
	def, err := s.registry.GetDefinition(ctx, instance.ComponentType)
	if err != nil {
		return nil, err
	}
	return forms.Validate(validation.NormalizeSchema(def.SettingsSchema), values), nil
}

func (s *Session) selectedInstance() (pages.ComponentInstance, map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.viewLocked()
	if s.selected == nil || *s.selected >= len(view.ContentData) {
		return pages.ComponentInstance{}, nil, ErrNoSelection
	}
	instance := pages.CloneInstance(view.ContentData[*s.selected])
	values := instance.Settings
	if s.staged != nil {
		values = pbschema.CloneMap(s.staged)
	}
	return instance, values, nil
}

// Add appends a new instance of componentType.
func (s *Session) Add(ctx context.Context, componentType string) (*pages.Page, error) {
	// Resolved before run takes the session lock; the service resolves again
	// and rejects unknown or retired types.
	settings := map[string]any{}
	if def, err := s.registry.Resolve(ctx, componentType); err == nil {
		settings = pbschema.Defaults(validation.NormalizeSchema(def.SettingsSchema))
	}
	return s.run(ctx, action{
		name: pages.OperationAddComponent,
		apply: func(page *pages.Page) error {
			page.ContentData = pages.AppendComponent(page.ContentData, pages.ComponentInstance{
				ComponentType: componentType,
				Settings:      settings,
			})
			return nil
		},
		commit: func(ctx context.Context, pageID uuid.UUID, expected *int) (*pages.Page, error) {
			return s.service.AddComponent(ctx, pages.AddComponentRequest{
				PageID:          pageID,
				ComponentType:   componentType,
				ActorID:         s.actor,
				ExpectedVersion: expected,
			})
		},
	})
}

// Remove drops the instance at index. A selection on it is cleared, a
// selection after it shifts down.
func (s *Session) Remove(ctx context.Context, index int) (*pages.Page, error) {
	return s.run(ctx, action{
		name: pages.OperationRemoveComponent,
		apply: func(page *pages.Page) error {
			content, err := pages.RemoveComponent(page.ContentData, index)
			page.ContentData = content
			return err
		},
		follow: func(selected int) (int, bool) {
			switch {
			case selected == index:
				return 0, false
			case selected > index:
				return selected - 1, true
			default:
				return selected, true
			}
		},
		commit: func(ctx context.Context, pageID uuid.UUID, expected *int) (*pages.Page, error) {
			return s.service.RemoveComponent(ctx, pages.RemoveComponentRequest{
				PageID:          pageID,
				Index:           index,
				ActorID:         s.actor,
				ExpectedVersion: expected,
			})
		},
	})
}

// Duplicate inserts a copy of the instance at index right after it.
func (s *Session) Duplicate(ctx context.Context, index int) (*pages.Page, error) {
	return s.run(ctx, action{
		name: pages.OperationDuplicate,
		apply: func(page *pages.Page) error {
			content, err := pages.DuplicateComponent(page.ContentData, index)
			page.ContentData = content
			return err
		},
		follow: func(selected int) (int, bool) {
			if selected > index {
				return selected + 1, true
			}
			return selected, true
		},
		commit: func(ctx context.Context, pageID uuid.UUID, expected *int) (*pages.Page, error) {
			return s.service.DuplicateComponent(ctx, pages.DuplicateComponentRequest{
				PageID:          pageID,
				Index:           index,
				ActorID:         s.actor,
				ExpectedVersion: expected,
			})
		},
	})
}

// Reorder moves the instance at from to to. The selection follows the
// instance it pointed at.
func (s *Session) Reorder(ctx context.Context, from, to int) (*pages.Page, error) {
	return s.run(ctx, action{
		name: pages.OperationReorder,
		apply: func(page *pages.Page) error {
			content, err := pages.MoveComponent(page.ContentData, from, to)
			page.ContentData = content
			return err
		},
		follow: func(selected int) (int, bool) {
			return pages.MoveIndex(selected, from, to), true
		},
		commit: func(ctx context.Context, pageID uuid.UUID, expected *int) (*pages.Page, error) {
			return s.service.ReorderComponents(ctx, pages.ReorderComponentsRequest{
				PageID:          pageID,
				From:            from,
				To:              to,
				ActorID:         s.actor,
				ExpectedVersion: expected,
			})
		},
	})
}

// SaveSettings persists the staged settings of the selected instance. On
// failure the staged values are kept so they can be corrected.
func (s *Session) SaveSettings(ctx context.Context) (*pages.Page, error) {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return nil, ErrNoSelection
	}
	if s.staged == nil {
		page := pages.ClonePage(s.page)
		s.mu.Unlock()
		return page, nil
	}
	index := *s.selected
	settings := pbschema.CloneMap(s.staged)
	s.mu.Unlock()

	return s.run(ctx, action{
		name: pages.OperationUpdateSettings,
		apply: func(page *pages.Page) error {
			content, err := pages.ReplaceSettings(page.ContentData, index, settings)
			page.ContentData = content
			return err
		},
		saved: true,
		commit: func(ctx context.Context, pageID uuid.UUID, expected *int) (*pages.Page, error) {
			return s.service.UpdateComponentSettings(ctx, pages.UpdateComponentSettingsRequest{
				PageID:          pageID,
				Index:           index,
				Settings:        settings,
				ActorID:         s.actor,
				ExpectedVersion: expected,
			})
		},
	})
}

func (s *Session) Publish(ctx context.Context) (*pages.Page, error) {
	return s.run(ctx, action{
		name: pages.OperationPublish,
		apply: func(page *pages.Page) error {
			next, _, ok := page.Status.Next(domain.TransitionPublish)
			if ok {
				page.Status = next
			}
			return nil
		},
		commit: func(ctx context.Context, pageID uuid.UUID, expected *int) (*pages.Page, error) {
			return s.service.PublishPage(ctx, pages.PublishPageRequest{
				PageID:          pageID,
				ActorID:         s.actor,
				ExpectedVersion: expected,
			})
		},
	})
}

// Unpublish takes the page back to draft, or to archived when archive is set.
func (s *Session) Unpublish(ctx context.Context, archive bool) (*pages.Page, error) {
	transition := domain.TransitionUnpublish
	if archive {
		transition = domain.TransitionArchive
	}
	return s.run(ctx, action{
		name: pages.OperationUnpublish,
		apply: func(page *pages.Page) error {
			next, _, ok := page.Status.Next(transition)
			if ok {
				page.Status = next
			}
			return nil
		},
		commit: func(ctx context.Context, pageID uuid.UUID, expected *int) (*pages.Page, error) {
			return s.service.UnpublishPage(ctx, pages.UnpublishPageRequest{
				PageID:          pageID,
				Archive:         archive,
				ActorID:         s.actor,
				ExpectedVersion: expected,
			})
		},
	})
}

// Refresh reloads the page from the service, for example after a version
// conflict with another editor.
func (s *Session) Refresh(ctx context.Context) (*pages.Page, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil, ErrMutationInFlight
	}
	s.saving = true
	pageID := s.page.ID
	s.mu.Unlock()

	page, err := s.service.GetPage(ctx, pageID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return nil, err
	}
	s.page = page
	s.revalidateSelectionLocked()
	return pages.ClonePage(page), nil
}

type action struct {
	name   string
	apply  func(page *pages.Page) error
	follow func(selected int) (int, bool)
	commit func(ctx context.Context, pageID uuid.UUID, expected *int) (*pages.Page, error)
	saved  bool
}

// run applies a structural action optimistically, waits for the service and
// adopts its page. On failure the page, selection and staged settings are
// put back as they were and the service error is returned unchanged.
func (s *Session) run(ctx context.Context, act action) (*pages.Page, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil, ErrMutationInFlight
	}
	prior := s.page
	priorSelected := copyIndex(s.selected)
	priorStaged := s.staged

	draft := pages.ClonePage(prior)
	if err := act.apply(draft); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.selected != nil && act.follow != nil {
		if next, ok := act.follow(*s.selected); ok {
			s.selected = &next
		} else {
			s.clearSelectionLocked()
		}
	}
	s.optimistic = draft
	s.saving = true

	var expected *int
	if s.versionCheck {
		version := prior.Version
		expected = &version
	}
	logger := s.logger
	s.mu.Unlock()

	logger.Debug("editor.mutation.start", "action", act.name, "version", prior.Version)
	page, err := act.commit(ctx, prior.ID, expected)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	s.optimistic = nil
	if err != nil {
		s.page = prior
		s.selected = priorSelected
		s.staged = priorStaged
		logger.Warn("editor.mutation.reverted", "action", act.name, "version", prior.Version, "error", err)
		return nil, err
	}
	s.page = page
	if act.saved {
		s.staged = nil
	}
	s.revalidateSelectionLocked()
	logger.Debug("editor.mutation.applied", "action", act.name, "version", page.Version)
	return pages.ClonePage(page), nil
}

func (s *Session) revalidateSelectionLocked() {
	if s.selected != nil && (*s.selected < 0 || *s.selected >= len(s.page.ContentData)) {
		s.clearSelectionLocked()
	}
}

func copyIndex(index *int) *int {
	if index == nil {
		return nil
	}
	value := *index
	return &value
}
