package pagescmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"

	"github.com/goliatone/go-pagebuilder/internal/commands"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// PageHandler runs one page command through the page service. Service
// errors are returned categorized by pages.Categorize.
type PageHandler[T command.Message] struct {
	inner *commands.Handler[T]
}

// Execute satisfies command.Commander[T].Execute.
func (h *PageHandler[T]) Execute(ctx context.Context, msg T) error {
	return h.inner.Execute(ctx, msg)
}

func newPageHandler[T command.Message](
	operation string,
	logger interfaces.Logger,
	exec func(context.Context, T) (*pages.Page, error),
	fields func(T) map[string]any,
	opts []commands.HandlerOption[T],
) *PageHandler[T] {
	logger = logging.Ensure(logger)
	run := func(ctx context.Context, msg T) error {
		_, err := exec(ctx, msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return pages.Categorize(operation, err)
	}

	handlerOpts := []commands.HandlerOption[T]{
		commands.WithLogger[T](logger),
		commands.WithOperation[T]("pages." + operation),
		commands.WithMessageFields(fields),
		commands.WithTelemetry(commands.DefaultTelemetry[T](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)
	return &PageHandler[T]{inner: commands.NewHandler(run, handlerOpts...)}
}

func NewCreatePageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CreatePageCommand]) *PageHandler[CreatePageCommand] {
	return newPageHandler(pages.OperationCreate, logger,
		func(ctx context.Context, msg CreatePageCommand) (*pages.Page, error) {
			return service.CreatePage(ctx, pages.CreatePageRequest{
				Slug:    msg.Slug,
				Title:   msg.Title,
				ActorID: msg.ActorID,
			})
		},
		func(msg CreatePageCommand) map[string]any {
			return map[string]any{"slug": msg.Slug}
		}, opts)
}

func NewAddComponentHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[AddComponentCommand]) *PageHandler[AddComponentCommand] {
	return newPageHandler(pages.OperationAddComponent, logger,
		func(ctx context.Context, msg AddComponentCommand) (*pages.Page, error) {
			return service.AddComponent(ctx, pages.AddComponentRequest{
				PageID:          msg.PageID,
				ComponentType:   msg.ComponentType,
				ActorID:         msg.ActorID,
				ExpectedVersion: msg.ExpectedVersion,
			})
		},
		func(msg AddComponentCommand) map[string]any {
			return pageFields(msg.PageID, "component_type", msg.ComponentType)
		}, opts)
}

func NewRemoveComponentHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RemoveComponentCommand]) *PageHandler[RemoveComponentCommand] {
	return newPageHandler(pages.OperationRemoveComponent, logger,
		func(ctx context.Context, msg RemoveComponentCommand) (*pages.Page, error) {
			return service.RemoveComponent(ctx, pages.RemoveComponentRequest{
				PageID:          msg.PageID,
				Index:           msg.Index,
				ActorID:         msg.ActorID,
				ExpectedVersion: msg.ExpectedVersion,
			})
		},
		func(msg RemoveComponentCommand) map[string]any {
			return pageFields(msg.PageID, "index", msg.Index)
		}, opts)
}

func NewDuplicateComponentHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DuplicateComponentCommand]) *PageHandler[DuplicateComponentCommand] {
	return newPageHandler(pages.OperationDuplicate, logger,
		func(ctx context.Context, msg DuplicateComponentCommand) (*pages.Page, error) {
			return service.DuplicateComponent(ctx, pages.DuplicateComponentRequest{
				PageID:          msg.PageID,
				Index:           msg.Index,
				ActorID:         msg.ActorID,
				ExpectedVersion: msg.ExpectedVersion,
			})
		},
		func(msg DuplicateComponentCommand) map[string]any {
			return pageFields(msg.PageID, "index", msg.Index)
		}, opts)
}

func NewReorderComponentsHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ReorderComponentsCommand]) *PageHandler[ReorderComponentsCommand] {
	return newPageHandler(pages.OperationReorder, logger,
		func(ctx context.Context, msg ReorderComponentsCommand) (*pages.Page, error) {
			return service.ReorderComponents(ctx, pages.ReorderComponentsRequest{
				PageID:          msg.PageID,
				From:            msg.From,
				To:              msg.To,
				ActorID:         msg.ActorID,
				ExpectedVersion: msg.ExpectedVersion,
			})
		},
		func(msg ReorderComponentsCommand) map[string]any {
			fields := pageFields(msg.PageID, "from", msg.From)
			fields["to"] = msg.To
			return fields
		}, opts)
}

func NewUpdateComponentSettingsHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateComponentSettingsCommand]) *PageHandler[UpdateComponentSettingsCommand] {
	return newPageHandler(pages.OperationUpdateSettings, logger,
		func(ctx context.Context, msg UpdateComponentSettingsCommand) (*pages.Page, error) {
			return service.UpdateComponentSettings(ctx, pages.UpdateComponentSettingsRequest{
				PageID:          msg.PageID,
				Index:           msg.Index,
				Settings:        msg.Settings,
				ActorID:         msg.ActorID,
				ExpectedVersion: msg.ExpectedVersion,
			})
		},
		func(msg UpdateComponentSettingsCommand) map[string]any {
			return pageFields(msg.PageID, "index", msg.Index)
		}, opts)
}

func NewPublishPageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishPageCommand]) *PageHandler[PublishPageCommand] {
	return newPageHandler(pages.OperationPublish, logger,
		func(ctx context.Context, msg PublishPageCommand) (*pages.Page, error) {
			return service.PublishPage(ctx, pages.PublishPageRequest{
				PageID:          msg.PageID,
				ActorID:         msg.ActorID,
				ExpectedVersion: msg.ExpectedVersion,
			})
		},
		func(msg PublishPageCommand) map[string]any {
			return pageFields(msg.PageID, "", nil)
		}, opts)
}

func NewUnpublishPageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UnpublishPageCommand]) *PageHandler[UnpublishPageCommand] {
	return newPageHandler(pages.OperationUnpublish, logger,
		func(ctx context.Context, msg UnpublishPageCommand) (*pages.Page, error) {
			return service.UnpublishPage(ctx, pages.UnpublishPageRequest{
				PageID:          msg.PageID,
				Archive:         msg.Archive,
				ActorID:         msg.ActorID,
				ExpectedVersion: msg.ExpectedVersion,
			})
		},
		func(msg UnpublishPageCommand) map[string]any {
			return pageFields(msg.PageID, "archive", msg.Archive)
		}, opts)
}

func NewRestoreVersionHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RestoreVersionCommand]) *PageHandler[RestoreVersionCommand] {
	return newPageHandler(pages.OperationRestore, logger,
		func(ctx context.Context, msg RestoreVersionCommand) (*pages.Page, error) {
			return service.RestoreVersion(ctx, pages.RestoreVersionRequest{
				PageID:          msg.PageID,
				Version:         msg.Version,
				ActorID:         msg.ActorID,
				ExpectedVersion: msg.ExpectedVersion,
			})
		},
		func(msg RestoreVersionCommand) map[string]any {
			return pageFields(msg.PageID, "restore_version", msg.Version)
		}, opts)
}

// Subscription releases a dispatcher subscription.
type Subscription interface {
	Unsubscribe()
}

// HandlerSet holds one handler per page command.
type HandlerSet struct {
	Create                  *PageHandler[CreatePageCommand]
	AddComponent            *PageHandler[AddComponentCommand]
	RemoveComponent         *PageHandler[RemoveComponentCommand]
	DuplicateComponent      *PageHandler[DuplicateComponentCommand]
	ReorderComponents       *PageHandler[ReorderComponentsCommand]
	UpdateComponentSettings *PageHandler[UpdateComponentSettingsCommand]
	Publish                 *PageHandler[PublishPageCommand]
	Unpublish               *PageHandler[UnpublishPageCommand]
	RestoreVersion          *PageHandler[RestoreVersionCommand]
}

// NewHandlerSet builds every page command handler over service.
func NewHandlerSet(service pages.Service, logger interfaces.Logger) *HandlerSet {
	return &HandlerSet{
		Create:                  NewCreatePageHandler(service, logger),
		AddComponent:            NewAddComponentHandler(service, logger),
		RemoveComponent:         NewRemoveComponentHandler(service, logger),
		DuplicateComponent:      NewDuplicateComponentHandler(service, logger),
		ReorderComponents:       NewReorderComponentsHandler(service, logger),
		UpdateComponentSettings: NewUpdateComponentSettingsHandler(service, logger),
		Publish:                 NewPublishPageHandler(service, logger),
		Unpublish:               NewUnpublishPageHandler(service, logger),
		RestoreVersion:          NewRestoreVersionHandler(service, logger),
	}
}

// All lists the handlers for generic registries.
func (s *HandlerSet) All() []any {
	return []any{
		s.Create,
		s.AddComponent,
		s.RemoveComponent,
		s.DuplicateComponent,
		s.ReorderComponents,
		s.UpdateComponentSettings,
		s.Publish,
		s.Unpublish,
		s.RestoreVersion,
	}
}

// Subscribe registers every handler with the go-command dispatcher. No
// retries are configured: index-relative commands must not be replayed.
func (s *HandlerSet) Subscribe() []Subscription {
	return []Subscription{
		dispatcher.SubscribeCommand(s.Create),
		dispatcher.SubscribeCommand(s.AddComponent),
		dispatcher.SubscribeCommand(s.RemoveComponent),
		dispatcher.SubscribeCommand(s.DuplicateComponent),
		dispatcher.SubscribeCommand(s.ReorderComponents),
		dispatcher.SubscribeCommand(s.UpdateComponentSettings),
		dispatcher.SubscribeCommand(s.Publish),
		dispatcher.SubscribeCommand(s.Unpublish),
		dispatcher.SubscribeCommand(s.RestoreVersion),
	}
}

func pageFields(pageID uuid.UUID, key string, value any) map[string]any {
	fields := map[string]any{}
	if pageID != uuid.Nil {
		fields["page_id"] = pageID.String()
	}
	if key != "" {
		fields[key] = value
	}
	return fields
}
