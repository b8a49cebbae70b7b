package generator

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-guide/internal/emitter"
	"github.com/goliatone/go-guide/internal/loader"
	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/internal/page"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

var (
	errLoaderRequired   = errors.New("generator: page loader is required")
	errComposerRequired = errors.New("generator: composer is required")
	errWriterRequired   = errors.New("generator: artifact writer is required")
)

// Service describes the guide build contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	BuildPage(ctx context.Context, path string) (PageDiagnostic, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	// ContentDir is the directory below the content root searched for
	// sources. Empty means the root itself.
	ContentDir  string
	Workers     int
	Incremental bool
	// CleanBuild removes the output directory before a full build.
	CleanBuild bool
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// Paths limits the build to the given sources relative to the content
	// root. Empty builds every discovered source.
	Paths  []string
	DryRun bool
	// Force re-renders pages the incremental manifest considers current.
	Force bool
}

// PageStatus is the outcome of a single page.
type PageStatus string

const (
	StatusBuilt     PageStatus = "built"
	StatusUnchanged PageStatus = "unchanged"
	StatusSkipped   PageStatus = "skipped"
	StatusFailed    PageStatus = "failed"
)

// PageDiagnostic records what happened to one source during a build.
type PageDiagnostic struct {
	Path     string
	Output   string
	Status   PageStatus
	Duration time.Duration
	// Checksum is the hex SHA-256 of the source bytes.
	Checksum       string
	OutputChecksum string
	Err            error
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	BuildID        string
	PagesBuilt     int
	PagesUnchanged int
	PagesSkipped   int
	PagesFailed    int
	Duration       time.Duration
	Diagnostics    []PageDiagnostic
	Errors         []error
	DryRun         bool
}

// PageLoader discovers and parses guide sources.
type PageLoader interface {
	Discover(ctx context.Context, dir string) ([]string, error)
	LoadFile(ctx context.Context, name string) (*page.Page, error)
}

// DocumentComposer renders a parsed page into an HTML document.
type DocumentComposer interface {
	Compose(pg *page.Page) ([]byte, error)
	Fingerprint() string
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Loader   PageLoader
	Composer DocumentComposer
	Writer   emitter.ArtifactWriter
	Logger   interfaces.Logger

	// EmitterLogger receives output write entries. Defaults to Logger.
	EmitterLogger interfaces.Logger
}

// NewService wires a generator implementation with the provided configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.EmitterLogger == nil {
		deps.EmitterLogger = deps.Logger
	}
	return &service{
		cfg:   cfg,
		deps:  deps,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type service struct {
	cfg   Config
	deps  Dependencies
	now   func() time.Time
	newID func() string
}

// build holds the state shared by the workers of one run.
type build struct {
	writer      emitter.ArtifactWriter
	emitter     *emitter.Emitter
	manifest    *buildManifest
	fingerprint string
	force       bool
	logger      interfaces.Logger
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	start := s.now()
	result := &BuildResult{BuildID: s.newID(), DryRun: opts.DryRun}
	logger := logging.WithBuildID(s.deps.Logger, result.BuildID).WithContext(ctx)

	writer := s.deps.Writer
	if opts.DryRun {
		writer = emitter.DryRun(writer)
	}

	sources, err := s.resolveSources(ctx, opts.Paths)
	if err != nil {
		return nil, err
	}
	logger.Info("generator.build.started",
		"pages", len(sources),
		"dry_run", opts.DryRun,
		"force", opts.Force,
	)

	if s.cfg.CleanBuild && !opts.DryRun && len(opts.Paths) == 0 {
		if err := writer.RemoveAll(ctx); err != nil {
			return nil, err
		}
	}

	run := &build{
		writer:      writer,
		emitter:     emitter.New(writer, logging.WithBuildID(s.deps.EmitterLogger, result.BuildID).WithContext(ctx)),
		fingerprint: s.deps.Composer.Fingerprint(),
		force:       opts.Force,
		logger:      logger,
	}
	if s.cfg.Incremental {
		run.manifest = s.loadManifest(ctx, writer, logger)
	}

	var (
		mu          sync.Mutex
		errorsSlice []error
	)
	collect := func(diag PageDiagnostic) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, diag)
		switch diag.Status {
		case StatusBuilt:
			result.PagesBuilt++
		case StatusUnchanged:
			result.PagesUnchanged++
		case StatusSkipped:
			result.PagesSkipped++
		case StatusFailed:
			result.PagesFailed++
			errorsSlice = append(errorsSlice, diag.Err)
		}
	}

	sources = rejectOutputCollisions(run, sources, collect)
	dispatchErr := s.renderConcurrently(ctx, run, sources, collect)

	sort.Slice(result.Diagnostics, func(i, j int) bool {
		return result.Diagnostics[i].Path < result.Diagnostics[j].Path
	})

	if dispatchErr == nil && run.manifest != nil && !opts.DryRun && len(errorsSlice) == 0 {
		if err := s.persistManifest(ctx, run, result.Diagnostics, len(opts.Paths) == 0); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	if dispatchErr != nil {
		errorsSlice = append(errorsSlice, dispatchErr)
	}

	result.Duration = s.now().Sub(start)
	logger.Info("generator.build.completed",
		"built", result.PagesBuilt,
		"unchanged", result.PagesUnchanged,
		"skipped", result.PagesSkipped,
		"failed", result.PagesFailed,
		"duration_ms", result.Duration.Milliseconds(),
	)

	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

func (s *service) BuildPage(ctx context.Context, path string) (PageDiagnostic, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.validate(); err != nil {
		return PageDiagnostic{}, err
	}
	rel, err := loader.CleanPath(path)
	if err != nil {
		return PageDiagnostic{Path: path, Status: StatusFailed, Err: err}, err
	}
	run := &build{
		writer:      s.deps.Writer,
		emitter:     emitter.New(s.deps.Writer, s.deps.EmitterLogger),
		fingerprint: s.deps.Composer.Fingerprint(),
		force:       true,
		logger:      s.deps.Logger,
	}
	diag := s.renderPage(ctx, run, rel)
	return diag, diag.Err
}

func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.deps.Writer == nil {
		return errWriterRequired
	}
	return emitter.New(s.deps.Writer, s.deps.EmitterLogger).Clean(ctx)
}

func (s *service) validate() error {
	switch {
	case s.deps.Loader == nil:
		return errLoaderRequired
	case s.deps.Composer == nil:
		return errComposerRequired
	case s.deps.Writer == nil:
		return errWriterRequired
	}
	return nil
}

func (s *service) resolveSources(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return s.deps.Loader.Discover(ctx, s.cfg.ContentDir)
	}
	seen := make(map[string]struct{}, len(paths))
	sources := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := loader.CleanPath(p)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[rel]; ok {
			continue
		}
		seen[rel] = struct{}{}
		sources = append(sources, rel)
	}
	sort.Strings(sources)
	return sources, nil
}

// rejectOutputCollisions fails every source whose output path is shared with
// another source and returns the remaining sources in order. Sources with an
// unresolvable output are left for renderPage to report.
func rejectOutputCollisions(run *build, sources []string, collect func(PageDiagnostic)) []string {
	outputs := make(map[string]string, len(sources))
	owners := make(map[string][]string, len(sources))
	for _, source := range sources {
		output, err := emitter.OutputPath(source)
		if err != nil {
			continue
		}
		outputs[source] = output
		owners[output] = append(owners[output], source)
	}

	kept := make([]string, 0, len(sources))
	for _, source := range sources {
		output, ok := outputs[source]
		if !ok || len(owners[output]) < 2 {
			kept = append(kept, source)
			continue
		}
		others := slices.DeleteFunc(slices.Clone(owners[output]), func(other string) bool {
			return other == source
		})
		err := &page.IOError{
			Path: source,
			Op:   "resolve",
			Err:  fmt.Errorf("output %s is also produced by %s", output, strings.Join(others, ", ")),
		}
		logging.WithPageContext(run.logger, source, output).Error("generator.page.failed", "error", err)
		collect(PageDiagnostic{Path: source, Output: output, Status: StatusFailed, Err: err})
	}
	return kept
}

func (s *service) renderConcurrently(
	ctx context.Context,
	run *build,
	sources []string,
	collect func(PageDiagnostic),
) error {
	if len(sources) == 0 {
		return nil
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < s.effectiveWorkerCount(len(sources)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range jobs {
				collect(s.renderPage(ctx, run, source))
			}
		}()
	}

	for _, source := range sources {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- source:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

// renderPage runs load, compose and emit for one source. Failures are
// captured in the diagnostic and never affect other pages.
func (s *service) renderPage(ctx context.Context, run *build, source string) PageDiagnostic {
	start := s.now()
	diag := PageDiagnostic{Path: source}
	fail := func(err error) PageDiagnostic {
		diag.Status = StatusFailed
		diag.Err = err
		diag.Duration = s.now().Sub(start)
		logging.WithPageContext(run.logger, source, diag.Output).Error("generator.page.failed", "error", err)
		return diag
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	output, err := emitter.OutputPath(source)
	if err != nil {
		return fail(err)
	}
	diag.Output = output

	pg, err := s.deps.Loader.LoadFile(ctx, source)
	if err != nil {
		return fail(err)
	}
	diag.Checksum = hex.EncodeToString(pg.Checksum)

	if !run.force && run.manifest != nil &&
		run.manifest.shouldSkipPage(source, diag.Checksum, run.fingerprint, output) &&
		run.writer.Exists(ctx, output) {
		diag.Status = StatusSkipped
		diag.Duration = s.now().Sub(start)
		logging.WithPageContext(run.logger, source, output).Debug("generator.page.skipped")
		return diag
	}

	document, err := s.deps.Composer.Compose(pg)
	if err != nil {
		return fail(fmt.Errorf("generator: compose %s: %w", source, err))
	}

	emission, err := run.emitter.Emit(ctx, source, document)
	if err != nil {
		return fail(err)
	}

	diag.OutputChecksum = emission.Checksum
	diag.Status = StatusBuilt
	if emission.Status == emitter.StatusUnchanged {
		diag.Status = StatusUnchanged
	}
	diag.Duration = s.now().Sub(start)
	logging.WithPageContext(run.logger, source, output).Debug("generator.page.rendered",
		"status", string(diag.Status),
		"duration_ms", diag.Duration.Milliseconds(),
	)
	return diag
}

func (s *service) effectiveWorkerCount(pages int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if pages > 0 && workers > pages {
		return pages
	}
	return workers
}

// loadManifest reads the previous manifest. A missing or unreadable manifest
// degrades to a full rebuild.
func (s *service) loadManifest(ctx context.Context, writer emitter.ArtifactWriter, logger interfaces.Logger) *buildManifest {
	data, err := writer.ReadFile(ctx, manifestFileName)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("generator.manifest.read_failed", "error", err)
		}
		return newBuildManifest()
	}
	manifest, err := parseManifest(data)
	if err != nil {
		logger.Warn("generator.manifest.invalid", "error", err)
		return newBuildManifest()
	}
	return manifest
}

func (s *service) persistManifest(ctx context.Context, run *build, diagnostics []PageDiagnostic, full bool) error {
	manifest := run.manifest
	now := s.now().UTC()
	keep := make(map[string]struct{}, len(diagnostics))
	for _, diag := range diagnostics {
		keep[diag.Path] = struct{}{}
		if diag.Status == StatusSkipped {
			continue
		}
		manifest.setPage(manifestPage{
			Source:         diag.Path,
			Output:         diag.Output,
			SourceChecksum: diag.Checksum,
			OutputChecksum: diag.OutputChecksum,
			Fingerprint:    run.fingerprint,
			RenderedAt:     now,
		})
	}
	if full {
		manifest.prunePages(keep)
	}
	manifest.GeneratedAt = now

	data, err := manifest.marshal()
	if err != nil {
		return fmt.Errorf("generator: encode manifest: %w", err)
	}
	if _, err := run.writer.WriteFile(ctx, emitter.WriteRequest{
		Path:     manifestFileName,
		Content:  data,
		Category: emitter.CategoryManifest,
	}); err != nil {
		return fmt.Errorf("generator: write manifest: %w", err)
	}
	return nil
}
