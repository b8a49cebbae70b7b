package loader

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/internal/page"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

// DefaultPattern matches guide sources when no pattern is configured.
const DefaultPattern = "*.slim"

// Config configures how guide sources are discovered within the content root.
type Config struct {
	// Pattern limits discovered files to those matching the glob (defaults to "*.slim").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader reads guide sources from a filesystem rooted at the content directory.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
	logger    interfaces.Logger
}

// New constructs a Loader over filesystem.
func New(filesystem fs.FS, cfg Config, logger interfaces.Logger) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Loader{
		fs:        filesystem,
		pattern:   pattern,
		recursive: cfg.Recursive,
		logger:    logger,
	}
}

// Parse builds a Page from raw source bytes. It is the pure core of LoadFile
// and never touches the filesystem.
func Parse(sourcePath string, source []byte) (*page.Page, error) {
	fm, body, bodyLine, err := ParseFrontMatter(sourcePath, source)
	if err != nil {
		return nil, err
	}

	blocks, err := ParseBody(sourcePath, body, bodyLine)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(source)
	return &page.Page{
		Path:     sourcePath,
		Title:    fm.Title,
		Meta:     fm.Meta,
		Blocks:   blocks,
		Checksum: sum[:],
	}, nil
}

// LoadFile reads and parses a single source. Read failures are reported as
// *page.IOError and malformed input as *page.ParseError.
func (l *Loader) LoadFile(ctx context.Context, name string) (*page.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := CleanPath(name)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, &page.IOError{Path: rel, Op: "read", Err: err}
	}

	pg, err := Parse(rel, data)
	if err != nil {
		logging.WithPageContext(l.logger, rel, "").Debug("loader.parse.failed", "error", err)
		return nil, err
	}
	logging.WithPageContext(l.logger, rel, "").Trace("loader.parse.ok", "blocks", len(pg.Blocks))
	return pg, nil
}

// Discover lists every source under dir matching the configured pattern,
// sorted by path.
func (l *Loader) Discover(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := "."
	if strings.TrimSpace(dir) != "" {
		cleaned, err := CleanPath(dir)
		if err != nil {
			return nil, err
		}
		root = cleaned
	}

	var found []string
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if current != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if l.matches(current) {
			found = append(found, current)
		}
		return nil
	})
	if walkErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &page.IOError{Path: root, Op: "discover", Err: walkErr}
	}

	sort.Strings(found)
	return found, nil
}

func (l *Loader) matches(name string) bool {
	pattern := strings.ReplaceAll(l.pattern, "**/", "")
	target := name
	if !strings.Contains(pattern, "/") {
		target = path.Base(name)
	}
	ok, err := path.Match(pattern, target)
	return err == nil && ok
}

// CleanPath normalises a slash separated path relative to the content
// root and rejects paths that would escape it.
func CleanPath(name string) (string, error) {
	cleaned := path.Clean(strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"), "./"))
	if !fs.ValidPath(cleaned) {
		return "", &page.IOError{Path: name, Op: "resolve", Err: fmt.Errorf("path %q is outside the content root", name)}
	}
	return cleaned, nil
}
