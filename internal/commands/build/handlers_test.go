package buildcmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-guide/internal/commands"
	"github.com/goliatone/go-guide/internal/generator"
)

func TestBuildSiteHandler_Execute_Build(t *testing.T) {
	cmd := loadBuildFixture(t, "build_basic.json")

	var capturedOpts generator.BuildOptions
	callbackInvoked := false

	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			capturedOpts = opts
			return &generator.BuildResult{PagesBuilt: 2}, nil
		},
	}

	handler := NewBuildSiteHandler(svc, nil)

	cmd.ResultCallback = func(env ResultEnvelope) {
		callbackInvoked = true
		if env.Result == nil || env.Result.PagesBuilt != 2 {
			t.Fatalf("expected build result with 2 pages, got %#v", env.Result)
		}
		if env.Metadata["operation"] != "build" {
			t.Fatalf("expected operation build, got %v", env.Metadata["operation"])
		}
	}

	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute build: %v", err)
	}

	want := generator.BuildOptions{
		Paths: []string{"guides/composing.html.slim", "index.slim"},
		Force: true,
	}
	if diff := cmp.Diff(want, capturedOpts); diff != "" {
		t.Fatalf("build options mismatch (-want +got):\n%s", diff)
	}
	if !callbackInvoked {
		t.Fatal("expected callback to be invoked")
	}
}

func TestBuildSiteHandler_Execute_DryRun(t *testing.T) {
	cmd := loadBuildFixture(t, "build_dry_run.json")

	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
			if !opts.DryRun || len(opts.Paths) != 0 {
				t.Fatalf("unexpected options %+v", opts)
			}
			return &generator.BuildResult{DryRun: true}, nil
		},
	}

	var operation any
	cmd.ResultCallback = func(env ResultEnvelope) { operation = env.Metadata["operation"] }

	if err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute dry run: %v", err)
	}
	if operation != "dry_run" {
		t.Fatalf("expected dry_run operation, got %v", operation)
	}
}

func TestBuildSiteHandler_Execute_FailureStillReportsResult(t *testing.T) {
	buildErr := errors.New("page failed")
	svc := &fakeGeneratorService{
		buildFunc: func(context.Context, generator.BuildOptions) (*generator.BuildResult, error) {
			return &generator.BuildResult{PagesBuilt: 1, PagesFailed: 1}, buildErr
		},
	}

	var reported *generator.BuildResult
	err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), BuildSiteCommand{
		ResultCallback: func(env ResultEnvelope) { reported = env.Result },
	})
	if err == nil {
		t.Fatal("expected build error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if reported == nil || reported.PagesFailed != 1 {
		t.Fatalf("expected failed result to reach the callback, got %#v", reported)
	}
}

func TestBuildSiteHandler_Execute_ServiceMissing(t *testing.T) {
	err := NewBuildSiteHandler(nil, nil).Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, ErrServiceRequired) {
		t.Fatalf("expected ErrServiceRequired, got %v", err)
	}
}

func TestBuildSiteCommandValidate(t *testing.T) {
	cases := []struct {
		name  string
		paths []string
		valid bool
	}{
		{"all sources", nil, true},
		{"relative paths", []string{"index.slim", "./guides/intro.slim"}, true},
		{"empty path", []string{""}, false},
		{"blank path", []string{"   "}, false},
		{"absolute path", []string{"/etc/passwd"}, false},
		{"escaping path", []string{"../outside.slim"}, false},
		{"content root", []string{"."}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := BuildSiteCommand{Paths: tc.paths}.Validate()
			if tc.valid && err != nil {
				t.Fatalf("expected valid command, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("expected validation error for %q", tc.paths)
			}
		})
	}
}

func TestBuildSiteHandler_Execute_ValidationFailure(t *testing.T) {
	called := false
	svc := &fakeGeneratorService{
		buildFunc: func(context.Context, generator.BuildOptions) (*generator.BuildResult, error) {
			called = true
			return nil, nil
		},
	}

	err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), BuildSiteCommand{Paths: []string{"../x.slim"}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected build not to run for invalid command")
	}
}

func TestCleanSiteHandler_Execute(t *testing.T) {
	cleaned := false
	svc := &fakeGeneratorService{
		cleanFunc: func(context.Context) error {
			cleaned = true
			return nil
		},
	}

	if err := NewCleanSiteHandler(svc, nil).Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute clean: %v", err)
	}
	if !cleaned {
		t.Fatal("expected clean to be invoked")
	}
}

func TestBuildSiteHandler_Execute_NoDeadline(t *testing.T) {
	var hasDeadline bool
	svc := &fakeGeneratorService{
		buildFunc: func(ctx context.Context, _ generator.BuildOptions) (*generator.BuildResult, error) {
			_, hasDeadline = ctx.Deadline()
			return &generator.BuildResult{}, nil
		},
		cleanFunc: func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		},
	}

	if err := NewBuildSiteHandler(svc, nil).Execute(context.Background(), BuildSiteCommand{}); err != nil {
		t.Fatalf("execute build: %v", err)
	}
	if hasDeadline {
		t.Fatal("expected build to run without a deadline")
	}

	if err := NewCleanSiteHandler(svc, nil).Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("execute clean: %v", err)
	}
	if hasDeadline {
		t.Fatal("expected clean to run without a deadline")
	}
}

func TestBuildSiteHandler_Execute_ReportsPageCounts(t *testing.T) {
	svc := &fakeGeneratorService{
		buildFunc: func(context.Context, generator.BuildOptions) (*generator.BuildResult, error) {
			return &generator.BuildResult{
				BuildID:        "b-42",
				PagesBuilt:     3,
				PagesUnchanged: 2,
				PagesSkipped:   1,
			}, nil
		},
	}

	var outcome map[string]any
	handler := NewBuildSiteHandler(svc, nil, commands.WithTelemetry(commands.Telemetry[BuildSiteCommand](
		func(_ context.Context, _ BuildSiteCommand, info commands.TelemetryInfo) { outcome = info.Outcome },
	)))
	if err := handler.Execute(context.Background(), BuildSiteCommand{}); err != nil {
		t.Fatalf("execute build: %v", err)
	}

	want := map[string]any{
		"build_id":        "b-42",
		"pages_built":     3,
		"pages_unchanged": 2,
		"pages_skipped":   1,
		"pages_failed":    0,
	}
	if diff := cmp.Diff(want, outcome); diff != "" {
		t.Fatalf("outcome mismatch (-want +got):\n%s", diff)
	}
}

func loadBuildFixture(t *testing.T, name string) BuildSiteCommand {
	t.Helper()
	var cmd BuildSiteCommand
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		t.Fatalf("unmarshal fixture %s: %v", name, err)
	}
	return cmd
}

type fakeGeneratorService struct {
	buildFunc func(context.Context, generator.BuildOptions) (*generator.BuildResult, error)
	cleanFunc func(context.Context) error
}

func (f *fakeGeneratorService) Build(ctx context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	if f.buildFunc == nil {
		return &generator.BuildResult{}, nil
	}
	return f.buildFunc(ctx, opts)
}

func (f *fakeGeneratorService) BuildPage(context.Context, string) (generator.PageDiagnostic, error) {
	return generator.PageDiagnostic{}, nil
}

func (f *fakeGeneratorService) Clean(ctx context.Context) error {
	if f.cleanFunc == nil {
		return nil
	}
	return f.cleanFunc(ctx)
}
