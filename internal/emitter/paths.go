package emitter

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-guide/internal/page"
)

const htmlExt = ".html"

// OutputPath maps a source path relative to the content root onto its output
// path relative to the output directory: the final extension is replaced by
// ".html" ("guides/intro.slim" and "guides/intro.html.slim" both become
// "guides/intro.html").
func OutputPath(sourcePath string) (string, error) {
	rel := path.Clean(strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(sourcePath), "\\", "/"), "./"))
	if rel == "." || !fs.ValidPath(rel) {
		return "", &page.IOError{Path: sourcePath, Op: "resolve", Err: fmt.Errorf("invalid source path %q", sourcePath)}
	}

	stem := strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(stem) == "" || strings.HasSuffix(stem, "/") {
		return "", &page.IOError{Path: sourcePath, Op: "resolve", Err: fmt.Errorf("source path %q has no file name", sourcePath)}
	}
	if strings.HasSuffix(stem, htmlExt) {
		return stem, nil
	}
	return stem + htmlExt, nil
}
