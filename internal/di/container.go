package di

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-guide/internal/commands"
	buildcmd "github.com/goliatone/go-guide/internal/commands/build"
	"github.com/goliatone/go-guide/internal/compose"
	"github.com/goliatone/go-guide/internal/emitter"
	"github.com/goliatone/go-guide/internal/generator"
	"github.com/goliatone/go-guide/internal/loader"
	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/internal/logging/console"
	"github.com/goliatone/go-guide/internal/logging/gologger"
	"github.com/goliatone/go-guide/internal/markdown"
	"github.com/goliatone/go-guide/internal/runtimeconfig"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

// Container wires module dependencies from a validated configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	contentFS      fs.FS
	writer         emitter.ArtifactWriter
	markdown       interfaces.MarkdownParser

	loader    *loader.Loader
	composer  *compose.Composer
	generator generator.Service

	buildHandler *buildcmd.BuildSiteHandler
	cleanHandler *buildcmd.CleanSiteHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected by the logging configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithContentFS reads sources from fsys instead of the configured content directory.
func WithContentFS(fsys fs.FS) Option {
	return func(c *Container) {
		if fsys != nil {
			c.contentFS = fsys
		}
	}
}

// WithArtifactWriter overrides the filesystem writer rooted at the output directory.
func WithArtifactWriter(writer emitter.ArtifactWriter) Option {
	return func(c *Container) {
		if writer != nil {
			c.writer = writer
		}
	}
}

// WithMarkdownParser overrides the goldmark parser used for prose blocks.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		if parser != nil {
			c.markdown = parser
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if c.contentFS == nil {
		c.contentFS = os.DirFS(cfg.Content.Dir)
	}
	if c.writer == nil {
		c.writer = emitter.NewFSWriter(cfg.Output.Dir)
	}
	if c.markdown == nil {
		c.markdown = markdown.NewGoldmarkParser(interfaces.ParseOptions{
			Extensions: cfg.Markdown.Extensions,
			Sanitize:   cfg.Markdown.Sanitize,
			HardWraps:  cfg.Markdown.HardWraps,
			SafeMode:   cfg.Markdown.SafeMode,
		})
	}

	c.loader = loader.New(c.contentFS, loader.Config{
		Pattern:   cfg.Content.Pattern,
		Recursive: cfg.Content.Recursive,
	}, logging.LoaderLogger(c.loggerProvider))

	composer, err := compose.New(compose.Config{
		LayoutPath:     cfg.Layout.Path,
		SiteTitle:      cfg.Layout.SiteTitle,
		Lang:           cfg.Layout.Lang,
		HeadingAnchors: cfg.Layout.HeadingAnchors,
	}, c.markdown, logging.ComposeLogger(c.loggerProvider))
	if err != nil {
		return nil, err
	}
	c.composer = composer

	c.generator = generator.NewService(generator.Config{
		Workers:     cfg.Output.Workers,
		Incremental: cfg.Output.Incremental,
		CleanBuild:  cfg.Output.CleanBuild,
	}, generator.Dependencies{
		Loader:   c.loader,
		Composer: c.composer,
		Writer:   c.writer,
		Logger:   logging.GeneratorLogger(c.loggerProvider),

		EmitterLogger: logging.EmitterLogger(c.loggerProvider),
	})

	commandLogger := commands.CommandLogger(c.loggerProvider, "site")
	c.buildHandler = buildcmd.NewBuildSiteHandler(c.generator, commandLogger)
	c.cleanHandler = buildcmd.NewCleanSiteHandler(c.generator, commandLogger)

	logging.ModuleLogger(c.loggerProvider, "").Debug("container.configured",
		"content_dir", cfg.Content.Dir,
		"output_dir", cfg.Output.Dir,
		"incremental", cfg.Output.Incremental,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure logger: %w", err)
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{Writer: os.Stderr, MinLevel: &level})
	}
	return nil
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Loader returns the source loader.
func (c *Container) Loader() *loader.Loader {
	return c.loader
}

// Composer returns the document composer.
func (c *Container) Composer() *compose.Composer {
	return c.composer
}

// GeneratorService returns the configured generator.
func (c *Container) GeneratorService() generator.Service {
	return c.generator
}

// BuildHandler returns the go-command handler for BuildSiteCommand.
func (c *Container) BuildHandler() *buildcmd.BuildSiteHandler {
	return c.buildHandler
}

// CleanHandler returns the go-command handler for CleanSiteCommand.
func (c *Container) CleanHandler() *buildcmd.CleanSiteHandler {
	return c.cleanHandler
}
