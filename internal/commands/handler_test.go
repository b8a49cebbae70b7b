package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/internal/page"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

type testMessage struct{}

func (testMessage) Type() string { return "guide.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "guide.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerScopesContextLoggingFields(t *testing.T) {
	var fields map[string]any
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		fields = logging.ContextFields(ctx)
		return nil
	}, WithOperation[testMessage]("site.build"))

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fields["command"] != "guide.test.message" || fields["operation"] != "site.build" {
		t.Fatalf("expected command scope on context, got %#v", fields)
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerReportsTelemetry(t *testing.T) {
	var infos []TelemetryInfo
	record := func(_ context.Context, _ testMessage, info TelemetryInfo) {
		infos = append(infos, info)
	}

	ok := NewHandler[testMessage](func(context.Context, testMessage) error { return nil },
		WithOperation[testMessage]("guide.build"),
		WithMessageFields(func(testMessage) map[string]any { return map[string]any{"paths": 2} }),
		WithTelemetry(Telemetry[testMessage](record)),
	)
	if err := ok.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	failing := NewHandler[testMessage](func(context.Context, testMessage) error { return errors.New("boom") },
		WithTelemetry(Telemetry[testMessage](record)),
	)
	if err := failing.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected execution error")
	}

	timingOut := NewHandler[testMessage](func(ctx context.Context, _ testMessage) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout[testMessage](5*time.Millisecond), WithTelemetry(Telemetry[testMessage](record)))
	if err := timingOut.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected timeout error")
	}

	if len(infos) != 3 {
		t.Fatalf("expected 3 telemetry entries, got %d", len(infos))
	}
	if infos[0].Status != TelemetryStatusSuccess || infos[0].Operation != "guide.build" {
		t.Fatalf("unexpected success telemetry %+v", infos[0])
	}
	if infos[0].Command != "guide.test.message" || infos[0].Fields["paths"] != 2 {
		t.Fatalf("expected command and message fields, got %+v", infos[0])
	}
	if infos[1].Status != TelemetryStatusFailed || infos[1].Error == nil {
		t.Fatalf("unexpected failure telemetry %+v", infos[1])
	}
	if infos[2].Status != TelemetryStatusContextError {
		t.Fatalf("unexpected timeout telemetry %+v", infos[2])
	}
}

func TestCommandLoggerFallsBackToNoOp(t *testing.T) {
	logger := CommandLogger(nil, "")
	if logger == nil {
		t.Fatal("expected logger")
	}
	logger.Info("command.test")
}

func TestCommandLoggerNamesGroup(t *testing.T) {
	rec := &recordingLogger{}
	provider := &namedProvider{logger: rec}

	CommandLogger(provider, " site ").Info("command.test", "paths", 2)
	CommandLogger(provider, "").Info("command.test")

	if diff := cmp.Diff([]string{"guide.commands.site", "guide.commands"}, provider.names); diff != "" {
		t.Fatalf("requested names mismatch (-want +got):\n%s", diff)
	}
	want := []logEntry{
		{level: "info", msg: "command.test", args: []any{
			"paths", 2,
			"command_group", "site",
			"component", "command",
			"module", "guide.commands.site",
		}},
		{level: "info", msg: "command.test", args: []any{
			"component", "command",
			"module", "guide.commands",
		}},
	}
	if diff := cmp.Diff(want, rec.entries, cmp.AllowUnexported(logEntry{})); diff != "" {
		t.Fatalf("log entries mismatch (-want +got):\n%s", diff)
	}
}

type namedProvider struct {
	names  []string
	logger interfaces.Logger
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestHandlerTagsPageErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		category goerrors.Category
		code     string
	}{
		{
			name:     "malformed source",
			err:      &page.ParseError{Path: "index.slim", Line: 3, Msg: "unexpected indent"},
			category: goerrors.CategoryBadInput,
			code:     codePageParse,
		},
		{
			name:     "unwritable output",
			err:      &page.IOError{Path: "index.html", Op: "write", Err: fs.ErrPermission},
			category: goerrors.CategoryOperation,
			code:     codePageIO,
		},
		{
			name: "io failure outranks parse failure",
			err: errors.Join(
				&page.ParseError{Path: "a.slim", Line: 1, Msg: "bad"},
				&page.IOError{Path: "b.html", Op: "write", Err: fs.ErrPermission},
			),
			category: goerrors.CategoryOperation,
			code:     codePageIO,
		},
		{
			name:     "other failure",
			err:      fmt.Errorf("render: %w", errors.New("boom")),
			category: goerrors.CategoryCommand,
			code:     codeFailed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var info TelemetryInfo
			h := NewHandler[testMessage](func(context.Context, testMessage) error { return tc.err },
				WithTelemetry(Telemetry[testMessage](func(_ context.Context, _ testMessage, i TelemetryInfo) { info = i })),
			)

			err := h.Execute(context.Background(), testMessage{})
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected category %s, got %v", tc.category, err)
			}
			var wrapped *goerrors.Error
			if !errors.As(err, &wrapped) || wrapped.TextCode != tc.code {
				t.Fatalf("expected text code %s, got %#v", tc.code, wrapped)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected original error to stay reachable, got %v", err)
			}
			if info.Code != tc.code || info.Status != TelemetryStatusFailed {
				t.Fatalf("unexpected telemetry %+v", info)
			}
		})
	}
}

func TestHandlerCollectsRecordedOutcome(t *testing.T) {
	var info TelemetryInfo
	h := NewHandler[testMessage](func(ctx context.Context, _ testMessage) error {
		RecordOutcome(ctx, map[string]any{"pages_built": 3})
		RecordOutcome(ctx, map[string]any{"pages_failed": 0})
		return nil
	}, WithTelemetry(Telemetry[testMessage](func(_ context.Context, _ testMessage, i TelemetryInfo) { info = i })))

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := map[string]any{"pages_built": 3, "pages_failed": 0}
	if diff := cmp.Diff(want, info.Outcome); diff != "" {
		t.Fatalf("outcome mismatch (-want +got):\n%s", diff)
	}

	// Outside a handler the call is dropped.
	RecordOutcome(context.Background(), map[string]any{"pages_built": 1})
}

func TestDefaultTelemetryLogsOutcomeInKeyOrder(t *testing.T) {
	logger := &recordingLogger{}
	telemetry := DefaultTelemetry[testMessage](logger)

	telemetry(context.Background(), testMessage{}, TelemetryInfo{
		Outcome:  map[string]any{"pages_failed": 1, "build_id": "b-1", "pages_built": 2},
		Duration: 1500 * time.Millisecond,
		Error:    errors.New("boom"),
		Code:     codePageParse,
		Status:   TelemetryStatusFailed,
	})

	want := []logEntry{{
		level: "error",
		msg:   "command.execute.failed",
		args: []any{
			"build_id", "b-1",
			"pages_built", 2,
			"pages_failed", 1,
			"duration_ms", int64(1500),
			"error", errors.New("boom"),
			"error_code", codePageParse,
		},
	}}
	if diff := cmp.Diff(want, logger.entries, cmp.AllowUnexported(logEntry{}), cmp.Comparer(func(a, b error) bool {
		return a.Error() == b.Error()
	})); diff != "" {
		t.Fatalf("log entries mismatch (-want +got):\n%s", diff)
	}
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) log(level, msg string, args []any) {
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.log("trace", msg, args) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.log("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.log("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.log("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.log("error", msg, args) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.log("fatal", msg, args) }

func (l *recordingLogger) WithContext(context.Context) interfaces.Logger { return l }
