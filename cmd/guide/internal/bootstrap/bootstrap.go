package bootstrap

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-guide"
	"github.com/goliatone/go-guide/internal/di"
)

// Options captures the command line overrides applied on top of the
// configuration file (or the defaults when no file is given).
type Options struct {
	ConfigPath string
	ContentDir string
	OutputDir  string
	// Workers overrides the worker count when non-nil.
	Workers   *int
	LogLevel  string
	DIOptions []di.Option
}

// Resources holds the initialised module.
type Resources struct {
	Module *guide.Module
	Config guide.Config
}

// ResolveConfig loads the configuration and applies overrides from opts.
func ResolveConfig(opts Options) (guide.Config, error) {
	cfg := guide.DefaultConfig()
	if path := strings.TrimSpace(opts.ConfigPath); path != "" {
		loaded, err := guide.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if dir := strings.TrimSpace(opts.ContentDir); dir != "" {
		cfg.Content.Dir = dir
	}
	if dir := strings.TrimSpace(opts.OutputDir); dir != "" {
		cfg.Output.Dir = dir
	}
	if opts.Workers != nil {
		cfg.Output.Workers = *opts.Workers
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BuildModule resolves configuration and constructs the guide module.
func BuildModule(opts Options) (*Resources, error) {
	cfg, err := ResolveConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("resolve config: %w", err)
	}
	module, err := guide.New(cfg, opts.DIOptions...)
	if err != nil {
		return nil, fmt.Errorf("initialise module: %w", err)
	}
	return &Resources{Module: module, Config: cfg}, nil
}
