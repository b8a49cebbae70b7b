package guide

import "github.com/goliatone/go-guide/internal/runtimeconfig"

var (
	ErrContentDirRequired     = runtimeconfig.ErrContentDirRequired
	ErrContentPatternInvalid  = runtimeconfig.ErrContentPatternInvalid
	ErrOutputDirRequired      = runtimeconfig.ErrOutputDirRequired
	ErrOutputDirOverlaps      = runtimeconfig.ErrOutputDirOverlaps
	ErrWorkersInvalid         = runtimeconfig.ErrWorkersInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ContentConfig  = runtimeconfig.ContentConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	LayoutConfig   = runtimeconfig.LayoutConfig
	OutputConfig   = runtimeconfig.OutputConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
