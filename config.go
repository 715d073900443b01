package pagebuilder

import "github.com/goliatone/go-pagebuilder/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown     = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown       = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
	ErrCacheRequiresBunStorage    = runtimeconfig.ErrCacheRequiresBunStorage
	ErrCacheTTLInvalid            = runtimeconfig.ErrCacheTTLInvalid
	ErrDefinitionsDirRequired     = runtimeconfig.ErrDefinitionsDirRequired
	ErrDispatcherRequiresCommands = runtimeconfig.ErrDispatcherRequiresCommands
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config            = runtimeconfig.Config
	StorageConfig     = runtimeconfig.StorageConfig
	CacheConfig       = runtimeconfig.CacheConfig
	DefinitionsConfig = runtimeconfig.DefinitionsConfig
	EditorConfig      = runtimeconfig.EditorConfig
	CommandsConfig    = runtimeconfig.CommandsConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
	Features          = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
