package commands

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

// TelemetryStatus classifies how a command run ended.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks once a command returns.
// Outcome holds whatever the command body reported through RecordOutcome,
// e.g. page counts for a build. Code is the text code of the wrapped error.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Outcome   map[string]any
	Duration  time.Duration
	Error     error
	Code      string
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is called after every command execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

type outcomeKey struct{}

type outcomeRecorder struct {
	mu     sync.Mutex
	fields map[string]any
}

func (r *outcomeRecorder) record(fields map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fields == nil {
		r.fields = make(map[string]any, len(fields))
	}
	maps.Copy(r.fields, fields)
}

func (r *outcomeRecorder) snapshot() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.fields)
}

// RecordOutcome attaches result fields to the command running under ctx.
// It is a no-op outside a Handler execution.
func RecordOutcome(ctx context.Context, fields map[string]any) {
	if ctx == nil || len(fields) == 0 {
		return
	}
	if rec, ok := ctx.Value(outcomeKey{}).(*outcomeRecorder); ok {
		rec.record(fields)
	}
}

// DefaultTelemetry logs one summary line per command run. Outcome fields are
// emitted in key order so the line is stable across runs.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := outcomeArgs(info.Outcome)
		args = append(args, "duration_ms", info.Duration.Milliseconds())
		if info.Status == TelemetryStatusSuccess {
			entry.Info("command.execute.success", args...)
			return
		}
		args = append(args, "error", info.Error)
		if info.Code != "" {
			args = append(args, "error_code", info.Code)
		}
		entry.Error("command.execute."+string(info.Status), args...)
	}
}

func outcomeArgs(outcome map[string]any) []any {
	keys := slices.Sorted(maps.Keys(outcome))
	args := make([]any, 0, len(keys)*2+4)
	for _, k := range keys {
		args = append(args, k, outcome[k])
	}
	return args
}
