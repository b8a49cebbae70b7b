package emitter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/goliatone/go-guide/internal/page"
)

// Category tags what kind of artifact a write carries.
type Category string

const (
	CategoryPage     Category = "page"
	CategoryManifest Category = "manifest"
)

// Status reports the outcome of a write.
type Status uint8

const (
	StatusWritten Status = iota + 1
	StatusUnchanged
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// WriteRequest describes a single artifact write. Path is slash separated and
// relative to the output root.
type WriteRequest struct {
	Path     string
	Content  []byte
	Category Category
}

// ArtifactWriter abstracts where build artifacts end up.
type ArtifactWriter interface {
	WriteFile(ctx context.Context, req WriteRequest) (Status, error)
	ReadFile(ctx context.Context, rel string) ([]byte, error)
	Exists(ctx context.Context, rel string) bool
	RemoveAll(ctx context.Context) error
}

// FSWriter writes artifacts below a directory on the local filesystem.
// Every file is replaced atomically so readers never observe partial output.
type FSWriter struct {
	root string
}

// NewFSWriter returns a writer rooted at dir.
func NewFSWriter(dir string) *FSWriter {
	return &FSWriter{root: filepath.Clean(dir)}
}

// Root returns the output directory.
func (w *FSWriter) Root() string {
	return w.root
}

func (w *FSWriter) resolve(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// WriteFile creates missing parent directories and replaces the target file.
// Identical content already on disk is left untouched.
func (w *FSWriter) WriteFile(ctx context.Context, req WriteRequest) (Status, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(req.Path) == "" {
		return 0, &page.IOError{Op: "write", Err: errors.New("write requires a path")}
	}

	target := w.resolve(req.Path)
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, req.Content) {
		return StatusUnchanged, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, &page.IOError{Path: req.Path, Op: "mkdir", Err: err}
	}
	if err := atomic.WriteFile(target, bytes.NewReader(req.Content)); err != nil {
		return 0, &page.IOError{Path: req.Path, Op: "write", Err: err}
	}
	return StatusWritten, nil
}

// ReadFile reads a previously written artifact.
func (w *FSWriter) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(w.resolve(rel))
	if err != nil {
		return nil, &page.IOError{Path: rel, Op: "read", Err: err}
	}
	return data, nil
}

// Exists reports whether rel exists as a regular file.
func (w *FSWriter) Exists(_ context.Context, rel string) bool {
	info, err := os.Stat(w.resolve(rel))
	return err == nil && info.Mode().IsRegular()
}

// RemoveAll deletes the output directory and everything below it.
func (w *FSWriter) RemoveAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.root == "." || w.root == string(filepath.Separator) || w.root == "" {
		return &page.IOError{Path: w.root, Op: "remove", Err: fmt.Errorf("refusing to remove %q", w.root)}
	}
	if err := os.RemoveAll(w.root); err != nil {
		return &page.IOError{Path: w.root, Op: "remove", Err: err}
	}
	return nil
}

// DryRun wraps base so that reads pass through while writes and removals are
// dropped. Writes still report whether they would have changed anything.
func DryRun(base ArtifactWriter) ArtifactWriter {
	return dryRunWriter{base: base}
}

type dryRunWriter struct {
	base ArtifactWriter
}

func (w dryRunWriter) WriteFile(ctx context.Context, req WriteRequest) (Status, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if existing, err := w.ReadFile(ctx, req.Path); err == nil && bytes.Equal(existing, req.Content) {
		return StatusUnchanged, nil
	}
	return StatusWritten, nil
}

func (w dryRunWriter) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if w.base == nil {
		return nil, &page.IOError{Path: rel, Op: "read", Err: fs.ErrNotExist}
	}
	return w.base.ReadFile(ctx, rel)
}

func (w dryRunWriter) Exists(ctx context.Context, rel string) bool {
	return w.base != nil && w.base.Exists(ctx, rel)
}

func (dryRunWriter) RemoveAll(context.Context) error { return nil }
