package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-guide/pkg/interfaces"
)

const (
	rootModule      = "guide"
	loaderModule    = "guide.loader"
	composeModule   = "guide.compose"
	emitterModule   = "guide.emitter"
	generatorModule = "guide.generator"
)

const (
	fieldPagePath   = "page_path"
	fieldPageOutput = "output_path"
	fieldBuildID    = "build_id"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// LoaderLogger returns the logger namespace reserved for source loading.
func LoaderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, loaderModule)
}

// ComposeLogger returns the logger namespace reserved for HTML composition.
func ComposeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, composeModule)
}

// EmitterLogger returns the logger namespace reserved for output writes.
func EmitterLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, emitterModule)
}

// GeneratorLogger returns the logger namespace reserved for build orchestration.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// WithPageContext enriches the logger with the page source and output paths.
// Empty values are ignored.
func WithPageContext(logger interfaces.Logger, path, output string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldPagePath] = trimmed
	}
	if trimmed := strings.TrimSpace(output); trimmed != "" {
		fields[fieldPageOutput] = trimmed
	}
	return WithFields(logger, fields)
}

// WithBuildID tags every entry with the identifier of the running build.
func WithBuildID(logger interfaces.Logger, id string) interfaces.Logger {
	if strings.TrimSpace(id) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldBuildID: id})
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
