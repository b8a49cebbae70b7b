package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-guide/internal/page"
)

// FrontMatter is the metadata section preceding a page body.
type FrontMatter struct {
	Title string
	Meta  map[string]any
}

// ParseFrontMatter extracts the front matter from source and returns it with
// the remaining body. bodyLine is the 1-based file line on which the body
// starts so later phases can report positions relative to the whole file.
// Sources without front matter return an empty FrontMatter and the full input.
func ParseFrontMatter(path string, source []byte) (FrontMatter, []byte, int, error) {
	raw := map[string]any{}

	body, err := frontmatter.Parse(bytes.NewReader(source), &raw)
	if err != nil {
		return FrontMatter{}, nil, 0, &page.ParseError{
			Path: path,
			Line: 1,
			Msg:  fmt.Sprintf("front matter: %v", err),
		}
	}

	consumed := bytes.Count(source, []byte("\n")) - bytes.Count(body, []byte("\n"))
	if consumed < 0 {
		consumed = 0
	}

	fm := FrontMatter{Meta: make(map[string]any, len(raw))}
	titleKey := ""
	for key, value := range raw {
		if !strings.EqualFold(key, "title") {
			fm.Meta[key] = value
			continue
		}
		if titleKey != "" {
			first, second := titleKey, key
			if second < first {
				first, second = second, first
			}
			return FrontMatter{}, nil, 0, &page.ParseError{
				Path: path,
				Line: 1,
				Msg:  fmt.Sprintf("front matter: title given twice as %q and %q", first, second),
			}
		}
		titleKey = key
	}

	if value := raw[titleKey]; titleKey != "" && value != nil {
		title, ok := value.(string)
		if !ok {
			return FrontMatter{}, nil, 0, &page.ParseError{
				Path: path,
				Line: 1,
				Msg:  fmt.Sprintf("front matter: title must be a string, got %T", value),
			}
		}
		fm.Title = strings.TrimSpace(title)
	}

	return fm, body, consumed + 1, nil
}
