package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStorageProviderUnknown = errors.New("pagebuilder config: storage provider is invalid")
	ErrStorageDriverUnknown   = errors.New("pagebuilder config: storage driver is invalid")
	// ErrStorageDSNRequired is returned when the bun provider has no connection string.
	ErrStorageDSNRequired = errors.New("pagebuilder config: storage dsn is required for the bun provider")
	// ErrCacheRequiresBunStorage keeps the definition cache behind the bun repository.
	ErrCacheRequiresBunStorage = errors.New("pagebuilder config: definition cache requires the bun storage provider")
	ErrCacheTTLInvalid         = errors.New("pagebuilder config: cache ttl must be positive when cache is enabled")
	ErrDefinitionsDirRequired  = errors.New("pagebuilder config: definitions directory is required when seeding definitions")
	// ErrDispatcherRequiresCommands ensures dispatcher wiring only runs when commands are enabled.
	ErrDispatcherRequiresCommands = errors.New("pagebuilder config: dispatcher auto-registration requires commands to be enabled")
	ErrLoggingProviderRequired    = errors.New("pagebuilder config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown     = errors.New("pagebuilder config: logging provider is invalid")
	ErrLoggingLevelInvalid        = errors.New("pagebuilder config: logging level is invalid")
	ErrLoggingFormatInvalid       = errors.New("pagebuilder config: logging format is invalid")
)

const (
	StorageProviderMemory = "memory"
	StorageProviderBun    = "bun"
)

// Config aggregates the page builder module settings.
type Config struct {
	Storage     StorageConfig
	Cache       CacheConfig
	Definitions DefinitionsConfig
	Editor      EditorConfig
	Commands    CommandsConfig
	Logging     LoggingConfig
	Features    Features
}

// StorageConfig selects the repository implementation. Driver and DSN are
// read by the bun provider only.
type StorageConfig struct {
	Provider    string
	Driver      string
	DSN         string
	AutoMigrate bool
}

// CacheConfig controls the component definition cache.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// DefinitionsConfig points at a directory of component definition documents
// (*.json, *.md) seeded into the registry on startup.
type DefinitionsConfig struct {
	Dir  string
	Seed bool
}

type EditorConfig struct {
	// VersionCheck sends the session page version with every mutation.
	VersionCheck bool
}

type CommandsConfig struct {
	Enabled                bool
	AutoRegisterDispatcher bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

type Features struct {
	Logger bool
}

// DefaultConfig returns an in-memory configuration suitable for tests and
// embedding.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider:    StorageProviderMemory,
			Driver:      "sqlite3",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Definitions: DefinitionsConfig{
			Dir: "components",
		},
		Editor: EditorConfig{
			VersionCheck: true,
		},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := normalize(cfg.Storage.Provider)
	switch provider {
	case "", StorageProviderMemory:
	case StorageProviderBun:
		if !isSupportedDriver(cfg.Storage.Driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if cfg.Cache.Enabled {
		if provider != StorageProviderBun {
			return ErrCacheRequiresBunStorage
		}
		if cfg.Cache.DefaultTTL <= 0 {
			return ErrCacheTTLInvalid
		}
	}
	if cfg.Definitions.Seed && strings.TrimSpace(cfg.Definitions.Dir) == "" {
		return ErrDefinitionsDirRequired
	}
	if cfg.Commands.AutoRegisterDispatcher && !cfg.Commands.Enabled {
		return ErrDispatcherRequiresCommands
	}
	if cfg.Features.Logger {
		logProvider := normalize(cfg.Logging.Provider)
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(logProvider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDriver(driver string) bool {
	switch normalize(driver) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql", "pgx", "pg":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "gologger", "noop":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
