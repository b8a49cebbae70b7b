package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-guide/internal/loader"
	"github.com/goliatone/go-guide/pkg/generator"
)

type titleComposer struct{}

func (titleComposer) Compose(pg *generator.Page) ([]byte, error) {
	return []byte("<title>" + pg.Title + "</title>"), nil
}

func (titleComposer) Fingerprint() string { return "title-only" }

func TestNewServiceAcceptsCustomComposer(t *testing.T) {
	out := t.TempDir()
	content := fstest.MapFS{
		"intro.slim": {Data: []byte("---\ntitle: Intro\n---\np hello\n")},
	}

	svc := generator.NewService(generator.Config{Workers: 1}, generator.Dependencies{
		Loader:   loader.New(content, loader.Config{Recursive: true}, nil),
		Composer: titleComposer{},
		Writer:   generator.NewFSWriter(out),
	})

	result, err := svc.Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Status != generator.StatusBuilt {
		t.Fatalf("unexpected diagnostics %+v", result.Diagnostics)
	}

	data, err := os.ReadFile(filepath.Join(out, "intro.html"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "<title>Intro</title>" {
		t.Fatalf("unexpected output %q", data)
	}
}

func TestDryRunWriterPersistsNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "public")
	content := fstest.MapFS{"index.slim": {Data: []byte("p hi\n")}}

	svc := generator.NewService(generator.Config{}, generator.Dependencies{
		Loader:   loader.New(content, loader.Config{}, nil),
		Composer: titleComposer{},
		Writer:   generator.DryRunWriter(generator.NewFSWriter(out)),
	})
	result, err := svc.Build(context.Background(), generator.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt != 1 {
		t.Fatalf("expected one page reported, got %+v", result)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("expected no output directory, got %v", err)
	}
}
