package compose

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// DefaultLayout is the document shell used when no layout file is configured.
const DefaultLayout = `<!DOCTYPE html>
<html lang="{{ lang }}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ title }}</title>
{% if description %}<meta name="description" content="{{ description }}">
{% endif %}</head>
<body>
{{ body|safe }}
</body>
</html>
`

// layout is a compiled document shell. Templates are compiled once and are
// safe for concurrent execution.
type layout struct {
	tpl         *pongo2.Template
	fingerprint string
}

func loadLayout(path string) (*layout, error) {
	source := DefaultLayout
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			return nil, fmt.Errorf("compose: read layout %q: %w", trimmed, err)
		}
		source = string(data)
	}
	return parseLayout(source)
}

func parseLayout(source string) (*layout, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("compose: parse layout: %w", err)
	}
	sum := sha256.Sum256([]byte(source))
	return &layout{tpl: tpl, fingerprint: hex.EncodeToString(sum[:])}, nil
}

func (l *layout) execute(vars pongo2.Context) ([]byte, error) {
	out, err := l.tpl.ExecuteBytes(vars)
	if err != nil {
		return nil, fmt.Errorf("compose: execute layout: %w", err)
	}
	return out, nil
}
