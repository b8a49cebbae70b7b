package buildcmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-guide/internal/commands"
	"github.com/goliatone/go-guide/internal/generator"
	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

// ErrServiceRequired indicates a handler was constructed without a generator.
var ErrServiceRequired = errors.New("buildcmd: generator service is required")

// BuildSiteHandler orchestrates generator builds using the shared command handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return ErrServiceRequired
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Paths:  append([]string(nil), msg.Paths...),
			DryRun: msg.DryRun,
			Force:  msg.Force,
		})
		operation := "build"
		if msg.DryRun {
			operation = "dry_run"
		}
		if result != nil {
			commands.RecordOutcome(ctx, map[string]any{
				"build_id":        result.BuildID,
				"pages_built":     result.PagesBuilt,
				"pages_unchanged": result.PagesUnchanged,
				"pages_skipped":   result.PagesSkipped,
				"pages_failed":    result.PagesFailed,
			})
		}
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": operation,
			},
		})
		return err
	}

	// Builds run until the caller cancels; there is no default deadline.
	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithTimeout[BuildSiteCommand](0),
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Paths) > 0 {
				fields["paths"] = len(msg.Paths)
			}
			if msg.Force {
				fields["force"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler clears generator artifacts.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, _ CleanSiteCommand) error {
		if service == nil {
			return ErrServiceRequired
		}
		return service.Clean(ctx)
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithTimeout[CleanSiteCommand](0),
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand]("site.clean"),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
