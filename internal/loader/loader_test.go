package loader

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-guide/internal/page"
)

func newTestFS() fstest.MapFS {
	return fstest.MapFS{
		"index.slim":                  {Data: []byte("---\ntitle: Home\n---\nh1 Home\n")},
		"guides/getting-started.slim": {Data: []byte("---\ntitle: Getting Started\n---\n:markdown\n  Install **diesel_cli**.\n")},
		"guides/composing.html.slim":  {Data: []byte(guideSource)},
		"guides/broken.slim":          {Data: []byte("div\n\tp\n")},
		"guides/notes.md":             {Data: []byte("# not a guide\n")},
	}
}

func TestLoaderDiscoverRecursive(t *testing.T) {
	l := New(newTestFS(), Config{Recursive: true}, nil)

	got, err := l.Discover(context.Background(), "")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		"guides/broken.slim",
		"guides/composing.html.slim",
		"guides/getting-started.slim",
		"index.slim",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("discovered paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderDiscoverNonRecursive(t *testing.T) {
	l := New(newTestFS(), Config{}, nil)

	got, err := l.Discover(context.Background(), ".")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if diff := cmp.Diff([]string{"index.slim"}, got); diff != "" {
		t.Fatalf("discovered paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderDiscoverCustomPattern(t *testing.T) {
	l := New(newTestFS(), Config{Pattern: "guides/*.md", Recursive: true}, nil)

	got, err := l.Discover(context.Background(), "guides")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if diff := cmp.Diff([]string{"guides/notes.md"}, got); diff != "" {
		t.Fatalf("discovered paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLoaderDiscoverMissingDirIsIOError(t *testing.T) {
	l := New(newTestFS(), Config{Recursive: true}, nil)

	_, err := l.Discover(context.Background(), "missing")
	if !page.IsIOError(err) {
		t.Fatalf("expected IOError, got %v", err)
	}
}

func TestLoaderLoadFile(t *testing.T) {
	l := New(newTestFS(), Config{Recursive: true}, nil)

	pg, err := l.LoadFile(context.Background(), "./guides/getting-started.slim")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if pg.Path != "guides/getting-started.slim" {
		t.Fatalf("expected cleaned path, got %q", pg.Path)
	}
	if pg.Title != "Getting Started" {
		t.Fatalf("unexpected title %q", pg.Title)
	}
	if len(pg.Checksum) != 32 {
		t.Fatalf("expected sha256 checksum, got %d bytes", len(pg.Checksum))
	}
	prose, ok := pg.Blocks[0].(*page.Prose)
	if !ok || prose.Markdown != "Install **diesel_cli**." {
		t.Fatalf("unexpected first block %#v", pg.Blocks[0])
	}
}

func TestLoaderLoadFileErrors(t *testing.T) {
	l := New(newTestFS(), Config{Recursive: true}, nil)
	ctx := context.Background()

	_, err := l.LoadFile(ctx, "guides/missing.slim")
	var ioErr *page.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError for missing file, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected IOError to unwrap to fs.ErrNotExist, got %v", err)
	}

	_, err = l.LoadFile(ctx, "guides/broken.slim")
	var parseErr *page.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Path != "guides/broken.slim" || parseErr.Line != 2 {
		t.Fatalf("unexpected parse error position %s:%d", parseErr.Path, parseErr.Line)
	}

	if _, err := l.LoadFile(ctx, "../outside.slim"); !page.IsIOError(err) {
		t.Fatalf("expected IOError for escaping path, got %v", err)
	}
}

func TestLoaderHonoursCancellation(t *testing.T) {
	l := New(newTestFS(), Config{Recursive: true}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.LoadFile(ctx, "index.slim"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := l.Discover(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCleanPath(t *testing.T) {
	cases := map[string]string{
		"guides/intro.slim":    "guides/intro.slim",
		"./guides//intro.slim": "guides/intro.slim",
		`guides\intro.slim`:    "guides/intro.slim",
	}
	for input, want := range cases {
		got, err := CleanPath(input)
		if err != nil {
			t.Fatalf("CleanPath(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("CleanPath(%q) = %q, want %q", input, got, want)
		}
	}

	for _, bad := range []string{"../secret.slim", "/etc/passwd", "guides/../../x"} {
		if _, err := CleanPath(bad); err == nil {
			t.Fatalf("expected CleanPath(%q) to fail", bad)
		}
	}
}
