package guide

import (
	"context"

	buildcmd "github.com/goliatone/go-guide/internal/commands/build"
	"github.com/goliatone/go-guide/internal/di"
	"github.com/goliatone/go-guide/internal/generator"
)

// GeneratorService exports the guide generator contract.
type GeneratorService = generator.Service

// BuildOptions selects the sources of a build and how it is run.
type BuildOptions = generator.BuildOptions

// BuildResult summarises a build.
type BuildResult = generator.BuildResult

// PageDiagnostic reports the outcome of a single page.
type PageDiagnostic = generator.PageDiagnostic

// Module represents the top level guide renderer façade.
type Module struct {
	container *di.Container
}

// New constructs a guide module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	return m.container.GeneratorService()
}

// Build renders the selected sources through the build command handler. The
// result is returned even when some pages failed; err then carries every
// page failure.
func (m *Module) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	var result *BuildResult
	err := m.container.BuildHandler().Execute(ctx, buildcmd.BuildSiteCommand{
		Paths:  opts.Paths,
		Force:  opts.Force,
		DryRun: opts.DryRun,
		ResultCallback: func(env buildcmd.ResultEnvelope) {
			result = env.Result
		},
	})
	return result, err
}

// Clean removes every generated artifact from the output directory.
func (m *Module) Clean(ctx context.Context) error {
	return m.container.CleanHandler().Execute(ctx, buildcmd.CleanSiteCommand{})
}
