package pages

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/components"
	"github.com/goliatone/go-pagebuilder/internal/domain"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	pbschema "github.com/goliatone/go-pagebuilder/internal/schema"
	"github.com/goliatone/go-pagebuilder/internal/validation"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// Service exposes page reads and the content mutation operations. Every
// mutation is read, transform, validate, replace: it either returns the new
// page with its version bumped by one or fails leaving the stored page as it
// was.
type Service interface {
	CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error)
	UpdatePage(ctx context.Context, req UpdatePageRequest) (*Page, error)
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	GetPageBySlug(ctx context.Context, slug string) (*Page, error)
	ListPages(ctx context.Context) ([]*Page, error)

	AddComponent(ctx context.Context, req AddComponentRequest) (*Page, error)
	RemoveComponent(ctx context.Context, req RemoveComponentRequest) (*Page, error)
	DuplicateComponent(ctx context.Context, req DuplicateComponentRequest) (*Page, error)
	ReorderComponents(ctx context.Context, req ReorderComponentsRequest) (*Page, error)
	UpdateComponentSettings(ctx context.Context, req UpdateComponentSettingsRequest) (*Page, error)
	PublishPage(ctx context.Context, req PublishPageRequest) (*Page, error)
	UnpublishPage(ctx context.Context, req UnpublishPageRequest) (*Page, error)

	ListVersions(ctx context.Context, pageID uuid.UUID) ([]*PageVersion, error)
	GetVersion(ctx context.Context, pageID uuid.UUID, version int) (*PageVersion, error)
	RestoreVersion(ctx context.Context, req RestoreVersionRequest) (*Page, error)
}

// DefinitionResolver is the registry view the service needs.
type DefinitionResolver interface {
	GetDefinition(ctx context.Context, componentType string) (*components.Definition, error)
	Resolve(ctx context.Context, componentType string) (*components.Definition, error)
}

// CreatePageRequest creates an empty draft page. Slug defaults to the title.
type CreatePageRequest struct {
	Slug    string
	Title   string
	ActorID uuid.UUID
}

// UpdatePageRequest changes page metadata. Nil fields are left untouched.
type UpdatePageRequest struct {
	PageID          uuid.UUID
	Title           *string
	Slug            *string
	ActorID         uuid.UUID
	ExpectedVersion *int
}

type AddComponentRequest struct {
	PageID          uuid.UUID
	ComponentType   string
	ActorID         uuid.UUID
	ExpectedVersion *int
}

type RemoveComponentRequest struct {
	PageID          uuid.UUID
	Index           int
	ActorID         uuid.UUID
	ExpectedVersion *int
}

type DuplicateComponentRequest struct {
	PageID          uuid.UUID
	Index           int
	ActorID         uuid.UUID
	ExpectedVersion *int
}

type ReorderComponentsRequest struct {
	PageID          uuid.UUID
	From            int
	To              int
	ActorID         uuid.UUID
	ExpectedVersion *int
}

// UpdateComponentSettingsRequest replaces the settings of one instance. The
// settings object must be complete; it is not merged.
type UpdateComponentSettingsRequest struct {
	PageID          uuid.UUID
	Index           int
	Settings        map[string]any
	ActorID         uuid.UUID
	ExpectedVersion *int
}

type PublishPageRequest struct {
	PageID          uuid.UUID
	ActorID         uuid.UUID
	ExpectedVersion *int
}

// UnpublishPageRequest takes a published page back to draft, or to archived
// when Archive is set.
type UnpublishPageRequest struct {
	PageID          uuid.UUID
	Archive         bool
	ActorID         uuid.UUID
	ExpectedVersion *int
}

// RestoreVersionRequest copies the content of a recorded version into the
// live page as a new version.
type RestoreVersionRequest struct {
	PageID          uuid.UUID
	Version         int
	ActorID         uuid.UUID
	ExpectedVersion *int
}

type IDGenerator func() uuid.UUID

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger sets the logger used for operation logs.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	pages    PageRepository
	registry DefinitionResolver
	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
}

// NewService wires a page service.
func NewService(pages PageRepository, registry DefinitionResolver, opts ...ServiceOption) Service {
	s := &service{
		pages:    pages,
		registry: registry,
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fieldError("title", ErrTitleRequired)
	}
	slugValue := req.Slug
	if strings.TrimSpace(slugValue) == "" {
		slugValue = title
	}
	normalized, err := normalizeSlug(slugValue)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	page := &Page{
		ID:          s.id(),
		Slug:        normalized,
		Title:       title,
		Status:      domain.StatusDraft,
		Version:     1,
		ContentData: []ComponentInstance{},
		CreatedBy:   req.ActorID,
		UpdatedBy:   req.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.pages.Create(ctx, page)
	if err != nil {
		s.opLogger(OperationCreate, page.ID).Error("pages.create.failed", "slug", normalized, "error", err)
		return nil, err
	}
	s.opLogger(OperationCreate, created.ID).Info("pages.create.complete", "slug", created.Slug)
	return created, nil
}

func (s *service) UpdatePage(ctx context.Context, req UpdatePageRequest) (*Page, error) {
	return s.mutate(ctx, OperationUpdate, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		changed := false
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return false, fieldError("title", ErrTitleRequired)
			}
			if title != page.Title {
				page.Title = title
				changed = true
			}
		}
		if req.Slug != nil {
			normalized, err := normalizeSlug(*req.Slug)
			if err != nil {
				return false, err
			}
			if normalized != page.Slug {
				if page.PublishedAt != nil {
					return false, fieldError("slug", ErrSlugImmutable)
				}
				page.Slug = normalized
				changed = true
			}
		}
		return changed, nil
	})
}

func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*Page, error) {
	if id == uuid.Nil {
		return nil, fieldError("page_id", ErrPageIDRequired)
	}
	return s.pages.GetByID(ctx, id)
}

// GetPageBySlug looks a page up by slug. Unknown slugs fail with
// *NotFoundError.
func (s *service) GetPageBySlug(ctx context.Context, slugValue string) (*Page, error) {
	normalized, err := normalizeSlug(slugValue)
	if err != nil {
		return nil, err
	}
	return s.pages.GetBySlug(ctx, normalized)
}

func (s *service) ListPages(ctx context.Context) ([]*Page, error) {
	return s.pages.List(ctx)
}

func (s *service) AddComponent(ctx context.Context, req AddComponentRequest) (*Page, error) {
	return s.mutate(ctx, OperationAddComponent, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		def, err := s.registry.Resolve(ctx, req.ComponentType)
		if err != nil {
			return false, componentTypeError(req.ComponentType, err)
		}
		settings := pbschema.Defaults(validation.NormalizeSchema(def.SettingsSchema))
		page.ContentData = AppendComponent(page.ContentData, ComponentInstance{
			ComponentType: def.Type,
			Settings:      settings,
		})
		return true, nil
	})
}

func (s *service) RemoveComponent(ctx context.Context, req RemoveComponentRequest) (*Page, error) {
	return s.mutate(ctx, OperationRemoveComponent, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		content, err := RemoveComponent(page.ContentData, req.Index)
		if err != nil {
			return false, err
		}
		page.ContentData = content
		return true, nil
	})
}

func (s *service) DuplicateComponent(ctx context.Context, req DuplicateComponentRequest) (*Page, error) {
	return s.mutate(ctx, OperationDuplicate, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		content, err := DuplicateComponent(page.ContentData, req.Index)
		if err != nil {
			return false, err
		}
		page.ContentData = content
		return true, nil
	})
}

func (s *service) ReorderComponents(ctx context.Context, req ReorderComponentsRequest) (*Page, error) {
	return s.mutate(ctx, OperationReorder, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		content, err := MoveComponent(page.ContentData, req.From, req.To)
		if err != nil {
			return false, err
		}
		if req.From == req.To {
			return false, nil
		}
		page.ContentData = content
		return true, nil
	})
}

func (s *service) UpdateComponentSettings(ctx context.Context, req UpdateComponentSettingsRequest) (*Page, error) {
	return s.mutate(ctx, OperationUpdateSettings, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		if err := checkIndex("index", req.Index, len(page.ContentData)); err != nil {
			return false, err
		}
		instance := page.ContentData[req.Index]
		def, err := s.registry.GetDefinition(ctx, instance.ComponentType)
		if err != nil {
			return false, componentTypeError(instance.ComponentType, err)
		}
		settings := req.Settings
		if settings == nil {
			settings = map[string]any{}
		}
		if err := validateSettings(def, settings); err != nil {
			return false, err
		}
		content, err := ReplaceSettings(page.ContentData, req.Index, settings)
		if err != nil {
			return false, err
		}
		page.ContentData = content
		return true, nil
	})
}

func (s *service) PublishPage(ctx context.Context, req PublishPageRequest) (*Page, error) {
	return s.mutate(ctx, OperationPublish, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		next, changed, ok := page.Status.Next(domain.TransitionPublish)
		if !ok {
			return false, &StateTransitionError{From: page.Status, Transition: domain.TransitionPublish}
		}
		if !changed {
			return false, nil
		}
		published := s.now().UTC()
		page.Status = next
		page.PublishedAt = &published
		return true, nil
	})
}

func (s *service) UnpublishPage(ctx context.Context, req UnpublishPageRequest) (*Page, error) {
	transition := domain.TransitionUnpublish
	if req.Archive {
		transition = domain.TransitionArchive
	}
	return s.mutate(ctx, OperationUnpublish, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		next, changed, ok := page.Status.Next(transition)
		if !ok {
			return false, &StateTransitionError{From: page.Status, Transition: transition}
		}
		if !changed {
			return false, nil
		}
		page.Status = next
		return true, nil
	})
}

func (s *service) ListVersions(ctx context.Context, pageID uuid.UUID) ([]*PageVersion, error) {
	if pageID == uuid.Nil {
		return nil, fieldError("page_id", ErrPageIDRequired)
	}
	return s.pages.ListVersions(ctx, pageID)
}

func (s *service) GetVersion(ctx context.Context, pageID uuid.UUID, version int) (*PageVersion, error) {
	if pageID == uuid.Nil {
		return nil, fieldError("page_id", ErrPageIDRequired)
	}
	return s.pages.GetVersion(ctx, pageID, version)
}

// RestoreVersion revalidates every restored instance against the current
// registry; status is left as it is.
func (s *service) RestoreVersion(ctx context.Context, req RestoreVersionRequest) (*Page, error) {
	return s.mutate(ctx, OperationRestore, req.PageID, req.ActorID, req.ExpectedVersion, func(page *Page) (bool, error) {
		record, err := s.pages.GetVersion(ctx, page.ID, req.Version)
		if err != nil {
			return false, err
		}
		restored := CloneContent(record.Snapshot.ContentData)
		for i, instance := range restored {
			def, err := s.registry.GetDefinition(ctx, instance.ComponentType)
			if err != nil {
				return false, componentTypeError(instance.ComponentType, err)
			}
			if err := validateSettings(def, instance.Settings); err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					verr.Errors = prefixFields(i, verr.Errors)
				}
				return false, err
			}
		}
		page.ContentData = restored
		return true, nil
	})
}

// mutate loads the page, lets apply edit a private copy and persists it with
// the loaded version as precondition. apply returning false is a no-op: the
// loaded page is returned and nothing is written.
func (s *service) mutate(ctx context.Context, operation string, pageID, actor uuid.UUID, expected *int, apply func(page *Page) (bool, error)) (*Page, error) {
	logger := s.opLogger(operation, pageID)
	if pageID == uuid.Nil {
		return nil, fieldError("page_id", ErrPageIDRequired)
	}

	current, err := s.pages.GetByID(ctx, pageID)
	if err != nil {
		logger.Warn("pages.mutation.load_failed", "error", err)
		return nil, err
	}
	if expected != nil && *expected != current.Version {
		logger.Warn("pages.mutation.stale", "expected_version", *expected, "version", current.Version)
		return nil, &ConflictError{
			Resource:        "page",
			Key:             pageID.String(),
			ExpectedVersion: *expected,
			ActualVersion:   current.Version,
		}
	}

	next := ClonePage(current)
	changed, err := apply(next)
	if err != nil {
		logger.Warn("pages.mutation.rejected", "version", current.Version, "error", err)
		return nil, err
	}
	if !changed {
		logger.Debug("pages.mutation.noop", "version", current.Version)
		return current, nil
	}

	next.UpdatedBy = actor
	next.UpdatedAt = s.now().UTC()
	updated, err := s.pages.Replace(ctx, Mutation{
		Page:            next,
		ExpectedVersion: current.Version,
		Operation:       operation,
		Actor:           actor,
	})
	if err != nil {
		logger.Error("pages.mutation.failed", "version", current.Version, "error", err)
		return nil, err
	}
	logger.Info("pages.mutation.complete", "version", updated.Version, "components", len(updated.ContentData), "status", string(updated.Status))
	return updated, nil
}

func (s *service) opLogger(operation string, pageID uuid.UUID) interfaces.Logger {
	return logging.WithFields(s.logger, map[string]any{
		"operation": operation,
		"page_id":   pageID.String(),
	})
}

func validateSettings(def *components.Definition, settings map[string]any) error {
	err := validation.ValidatePayload(def.SettingsSchema, settings)
	if err == nil {
		return nil
	}
	issues := validation.Issues(err)
	fields := make([]FieldError, 0, len(issues))
	for _, issue := range issues {
		fields = append(fields, FieldError{Field: issue.Field(), Message: issue.Message})
	}
	return &ValidationError{Errors: fields, Cause: err}
}

func componentTypeError(componentType string, err error) error {
	var (
		notFound *components.NotFoundError
		retired  *components.RetiredError
	)
	switch {
	case errors.As(err, &notFound):
		return &ValidationError{
			Errors: []FieldError{{Field: "component_type", Message: "unknown component type " + strconv.Quote(componentType)}},
			Cause:  err,
		}
	case errors.As(err, &retired):
		return &ValidationError{
			Errors: []FieldError{{Field: "component_type", Message: "component type " + strconv.Quote(componentType) + " is retired"}},
			Cause:  err,
		}
	default:
		return err
	}
}

func prefixFields(index int, fields []FieldError) []FieldError {
	out := make([]FieldError, len(fields))
	prefix := "content_data." + strconv.Itoa(index)
	for i, fe := range fields {
		out[i] = fe
		if fe.Field == "" {
			out[i].Field = prefix
		} else {
			out[i].Field = prefix + "." + fe.Field
		}
	}
	return out
}

func normalizeSlug(value string) (string, error) {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		return "", fieldError("slug", ErrSlugRequired)
	}
	normalized, err := slug.Default().Normalize(candidate)
	if err != nil || normalized == "" {
		return "", &ValidationError{
			Errors: []FieldError{{Field: "slug", Message: "slug " + strconv.Quote(value) + " cannot be normalized"}},
			Cause:  err,
		}
	}
	return normalized, nil
}

func fieldError(field string, err error) error {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: strings.TrimPrefix(err.Error(), "pages: ")}},
		Cause:  err,
	}
}
