package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/goliatone/go-guide/cmd/guide/internal/bootstrap"
	buildcmd "github.com/goliatone/go-guide/internal/commands/build"
	"github.com/goliatone/go-guide/internal/generator"
)

type buildHandler interface {
	Execute(ctx context.Context, msg buildcmd.BuildSiteCommand) error
}

type cleanHandler interface {
	Execute(ctx context.Context, msg buildcmd.CleanSiteCommand) error
}

type handlerSet struct {
	build buildHandler
	clean cleanHandler
}

type moduleOptions = bootstrap.Options

type moduleResources struct {
	handlers handlerSet
}

var moduleBuilder = func(opts moduleOptions) (*moduleResources, error) {
	resources, err := bootstrap.BuildModule(opts)
	if err != nil {
		return nil, err
	}
	container := resources.Module.Container()
	return &moduleResources{
		handlers: handlerSet{
			build: container.BuildHandler(),
			clean: container.CleanHandler(),
		},
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("guide: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New("missing subcommand (expected build or clean)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch args[0] {
	case "build":
		return runBuild(ctx, args[1:])
	case "clean":
		return runClean(ctx, args[1:])
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func commonFlags(fs *flag.FlagSet, opts *moduleOptions) {
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&opts.ContentDir, "content", "", "Directory holding guide sources")
	fs.StringVar(&opts.OutputDir, "out", "", "Directory receiving rendered HTML")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Minimum log level (trace, debug, info, warn, error)")
}

func runBuild(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	var opts moduleOptions
	commonFlags(fs, &opts)
	workers := fs.Int("workers", 0, "Number of concurrent render workers (0 uses every CPU)")
	dryRun := fs.Bool("dry-run", false, "Render pages without writing output")
	force := fs.Bool("force", false, "Re-render pages even when the manifest says they are current")
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "workers" {
			opts.Workers = workers
		}
	})

	resources, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if resources == nil || resources.handlers.build == nil {
		return errors.New("build handler not configured")
	}

	cmd := buildcmd.BuildSiteCommand{
		Paths:          fs.Args(),
		DryRun:         *dryRun,
		Force:          *force,
		ResultCallback: logBuildResult,
	}
	if err := resources.handlers.build.Execute(ctx, cmd); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	return nil
}

func runClean(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	var opts moduleOptions
	commonFlags(fs, &opts)
	if err := fs.Parse(args); err != nil {
		return err
	}

	resources, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	if resources == nil || resources.handlers.clean == nil {
		return errors.New("clean handler not configured")
	}

	if err := resources.handlers.clean.Execute(ctx, buildcmd.CleanSiteCommand{}); err != nil {
		return fmt.Errorf("clean: %w", err)
	}
	log.Printf("module=guide operation=clean output removed")
	return nil
}

func logBuildResult(env buildcmd.ResultEnvelope) {
	operation, _ := env.Metadata["operation"].(string)
	if operation == "" {
		operation = "build"
	}
	result := env.Result
	if result == nil {
		log.Printf("module=guide operation=%s completed", operation)
		return
	}
	log.Printf("module=guide operation=%s summary build_id=%s built=%d unchanged=%d skipped=%d failed=%d duration=%s",
		operation,
		result.BuildID,
		result.PagesBuilt,
		result.PagesUnchanged,
		result.PagesSkipped,
		result.PagesFailed,
		result.Duration,
	)
	for _, diag := range result.Diagnostics {
		if diag.Status != generator.StatusFailed {
			continue
		}
		log.Printf("module=guide operation=%s page=%s status=failed error=%q", operation, diag.Path, diag.Err)
	}
}
