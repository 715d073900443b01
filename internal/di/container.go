package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-pagebuilder/internal/commands"
	pagescmd "github.com/goliatone/go-pagebuilder/internal/commands/pages"
	"github.com/goliatone/go-pagebuilder/internal/components"
	"github.com/goliatone/go-pagebuilder/internal/editor"
	"github.com/goliatone/go-pagebuilder/internal/logging"
	"github.com/goliatone/go-pagebuilder/internal/logging/gologger"
	"github.com/goliatone/go-pagebuilder/internal/pages"
	"github.com/goliatone/go-pagebuilder/internal/runtimeconfig"
	"github.com/goliatone/go-pagebuilder/internal/storage"
	"github.com/goliatone/go-pagebuilder/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// Container wires the page builder services.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	renderer       interfaces.ComponentRenderer
	clock          func() time.Time
	ids            pages.IDGenerator

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	definitionsFS fs.FS

	definitionRepo components.DefinitionRepository
	pageRepo       pages.PageRepository

	registry *components.Registry
	pageSvc  pages.Service

	commandRegistry   CommandRegistry
	commandDispatcher CommandDispatcher
	commandHandlers   *pagescmd.HandlerSet
	subscriptions     []CommandSubscription
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB stores pages and definitions through db. The caller keeps
// ownership of the connection.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the definition cache service and key serializer.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithRenderer sets the component renderer used by editor canvases.
func WithRenderer(renderer interfaces.ComponentRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithDefinitionsFS seeds definitions from fsys instead of the configured
// directory.
func WithDefinitionsFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.definitionsFS = fsys
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

func WithIDGenerator(ids pages.IDGenerator) Option {
	return func(c *Container) {
		c.ids = ids
	}
}

func WithDefinitionRepository(repo components.DefinitionRepository) Option {
	return func(c *Container) {
		c.definitionRepo = repo
	}
}

func WithPageRepository(repo pages.PageRepository) Option {
	return func(c *Container) {
		c.pageRepo = repo
	}
}

// WithPageService replaces the page service built from the repositories.
func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

func WithCommandRegistry(registry CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = registry
	}
}

func WithCommandDispatcher(dispatcher CommandDispatcher) Option {
	return func(c *Container) {
		c.commandDispatcher = dispatcher
	}
}

// NewContainer validates cfg and builds every service. Storage is opened,
// migrated and seeded here when configured.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{
		Config:   cfg,
		clock:    time.Now,
		cacheTTL: cfg.Cache.DefaultTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()

	c.registry = components.NewRegistry(c.definitionRepo,
		components.WithLogger(logging.ComponentsLogger(c.loggerProvider)))

	if err := c.seedDefinitions(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if c.pageSvc == nil {
		pageOpts := []pages.ServiceOption{
			pages.WithClock(c.clock),
			pages.WithLogger(logging.PagesLogger(c.loggerProvider)),
		}
		if c.ids != nil {
			pageOpts = append(pageOpts, pages.WithIDGenerator(c.ids))
		}
		c.pageSvc = pages.NewService(c.pageRepo, c.registry, pageOpts...)
	}

	if err := c.registerCommands(); err != nil {
		c.Close()
		return nil, err
	}

	c.logger.Info("container.ready",
		"storage", c.storageName(),
		"cache", c.cacheService != nil,
		"commands", c.commandHandlers != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		if strings.EqualFold(strings.TrimSpace(c.Config.Logging.Provider), "gologger") {
			provider, err := gologger.NewProvider(gologger.Config{
				Level:     c.Config.Logging.Level,
				Format:    c.Config.Logging.Format,
				AddSource: c.Config.Logging.AddSource,
				Focus:     c.Config.Logging.Focus,
			})
			if err != nil {
				return err
			}
			c.loggerProvider = provider
		}
	}
	c.logger = logging.ModuleLogger(c.loggerProvider, "pagebuilder.di")
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	logger := logging.StorageLogger(c.loggerProvider)
	if c.bunDB == nil && strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), runtimeconfig.StorageProviderBun) {
		db, err := storage.Open(ctx, storage.Config{
			Driver: c.Config.Storage.Driver,
			DSN:    c.Config.Storage.DSN,
		})
		if err != nil {
			logger.Error("storage.open_failed", "driver", c.Config.Storage.Driver, "error", err)
			return err
		}
		c.bunDB = db
		c.ownsDB = true
		logger.Info("storage.opened", "driver", c.Config.Storage.Driver)
	}
	if c.bunDB != nil && c.Config.Storage.AutoMigrate {
		if err := storage.Migrate(ctx, c.bunDB); err != nil {
			logger.Error("storage.migrate_failed", "error", err)
			c.Close()
			return err
		}
		logger.Debug("storage.migrated")
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("cache.disabled", "error", err)
			return
		}
		c.cacheService = service
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB != nil {
		if c.definitionRepo == nil {
			c.definitionRepo = components.NewBunDefinitionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		}
		if c.pageRepo == nil {
			c.pageRepo = pages.NewBunPageRepository(c.bunDB)
		}
	}
	if c.definitionRepo == nil {
		c.definitionRepo = components.NewMemoryDefinitionRepository()
	}
	if c.pageRepo == nil {
		c.pageRepo = pages.NewMemoryPageRepository()
	}
}

func (c *Container) seedDefinitions(ctx context.Context) error {
	fsys := c.definitionsFS
	if fsys == nil {
		if !c.Config.Definitions.Seed {
			return nil
		}
		fsys = os.DirFS(c.Config.Definitions.Dir)
	}
	defs, err := components.NewLoader(fsys).Load()
	if err != nil {
		return fmt.Errorf("load component definitions: %w", err)
	}
	result, err := components.Seed(ctx, c.definitionRepo, defs, c.clock)
	if err != nil {
		return fmt.Errorf("seed component definitions: %w", err)
	}
	c.logger.Info("definitions.seeded", "created", result.Created, "updated", result.Updated)
	return nil
}

func (c *Container) registerCommands() error {
	if !c.Config.Commands.Enabled {
		return nil
	}
	c.commandHandlers = pagescmd.NewHandlerSet(c.pageSvc, commands.CommandLogger(c.loggerProvider, "pages"))

	var errs error
	for _, handler := range c.commandHandlers.All() {
		if c.commandRegistry != nil {
			if err := c.commandRegistry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if c.commandDispatcher != nil {
			subscription, err := c.commandDispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				c.subscriptions = append(c.subscriptions, subscription)
			}
		}
	}
	if c.commandDispatcher == nil && c.Config.Commands.AutoRegisterDispatcher {
		for _, subscription := range c.commandHandlers.Subscribe() {
			c.subscriptions = append(c.subscriptions, subscription)
		}
	}
	return errs
}

func (c *Container) storageName() string {
	if c.bunDB != nil {
		return runtimeconfig.StorageProviderBun
	}
	return runtimeconfig.StorageProviderMemory
}

// Close releases dispatcher subscriptions and any database connection the
// container opened itself.
func (c *Container) Close() error {
	for _, subscription := range c.subscriptions {
		subscription.Unsubscribe()
	}
	c.subscriptions = nil
	if c.ownsDB && c.bunDB != nil {
		err := c.bunDB.Close()
		c.bunDB = nil
		c.ownsDB = false
		return err
	}
	return nil
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func (c *Container) DefinitionRepository() components.DefinitionRepository {
	return c.definitionRepo
}

func (c *Container) PageRepository() pages.PageRepository {
	return c.pageRepo
}

func (c *Container) Registry() *components.Registry {
	return c.registry
}

func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

func (c *Container) Renderer() interfaces.ComponentRenderer {
	return c.renderer
}

// CommandHandlers returns the page command handlers, or nil when commands
// are disabled.
func (c *Container) CommandHandlers() *pagescmd.HandlerSet {
	return c.commandHandlers
}

func (c *Container) Subscriptions() []CommandSubscription {
	return append([]CommandSubscription(nil), c.subscriptions...)
}

// OpenEditor starts an editing session on pageID for actor.
func (c *Container) OpenEditor(ctx context.Context, pageID, actor uuid.UUID) (*editor.Session, error) {
	return editor.Open(ctx, c.pageSvc, c.registry, pageID,
		editor.WithActor(actor),
		editor.WithRenderer(c.renderer),
		editor.WithVersionCheck(c.Config.Editor.VersionCheck),
		editor.WithLogger(logging.EditorLogger(c.loggerProvider)),
	)
}
