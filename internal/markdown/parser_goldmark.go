package markdown

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-guide/pkg/interfaces"
)

// GoldmarkParser implements interfaces.MarkdownParser using the goldmark engine.
// The engine for the default options is built once; per-call overrides build
// a fresh engine.
type GoldmarkParser struct {
	defaultOptions interfaces.ParseOptions
	engine         goldmark.Markdown
}

var (
	_ interfaces.MarkdownParser  = (*GoldmarkParser)(nil)
	_ interfaces.Fingerprinter   = (*GoldmarkParser)(nil)
	_ interfaces.HeadingIDParser = (*GoldmarkParser)(nil)
)

// NewGoldmarkParser constructs a parser with GFM, linkify and task lists
// enabled unless defaults names other extensions. Raw HTML is kept unless
// SafeMode or Sanitize is set.
func NewGoldmarkParser(defaults interfaces.ParseOptions) *GoldmarkParser {
	return &GoldmarkParser{
		defaultOptions: defaults,
		engine:         newGoldmarkEngine(defaults),
	}
}

// Parse renders Markdown into HTML using the parser's default configuration.
func (p *GoldmarkParser) Parse(markdown []byte) ([]byte, error) {
	return p.render(p.engine, markdown, p.defaultOptions)
}

// ParseWithHeadingIDs renders Markdown with the default configuration,
// allocating heading ids from ids instead of a per-call registry.
func (p *GoldmarkParser) ParseWithHeadingIDs(markdown []byte, ids interfaces.HeadingIDs) ([]byte, error) {
	if ids == nil {
		return p.Parse(markdown)
	}
	ctx := parser.NewContext(parser.WithIDs(headingIDs{ids: ids}))
	return p.render(p.engine, markdown, p.defaultOptions, parser.WithContext(ctx))
}

// Fingerprint identifies the default rendering options.
func (p *GoldmarkParser) Fingerprint() string {
	opts := p.defaultOptions
	return fmt.Sprintf("goldmark|ext=%s|sanitize=%t|hard_wraps=%t|safe_mode=%t",
		strings.Join(extensionNames(opts.Extensions), ","),
		opts.Sanitize,
		opts.HardWraps,
		opts.SafeMode,
	)
}

// ParseWithOptions renders Markdown into HTML using the provided options.
func (p *GoldmarkParser) ParseWithOptions(markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	engine := p.engine
	if !sameOptions(opts, p.defaultOptions) {
		engine = newGoldmarkEngine(opts)
	}
	return p.render(engine, markdown, opts)
}

func (p *GoldmarkParser) render(engine goldmark.Markdown, markdown []byte, opts interfaces.ParseOptions, parseOpts ...parser.ParseOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf, parseOpts...); err != nil {
		return nil, fmt.Errorf("markdown parse: %w", err)
	}
	if opts.Sanitize {
		return Sanitize(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

func newGoldmarkEngine(opts interfaces.ParseOptions) goldmark.Markdown {
	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode && !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// collectExtensions maps extension names onto goldmark extenders. Unknown
// names are ignored.
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}

// extensionNames returns the recognised extension names in order, without
// duplicates. An empty list stands for the default set.
func extensionNames(names []string) []string {
	if len(names) == 0 {
		return []string{"default"}
	}
	var out []string
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := extensionRegistry[key]; !ok || slices.Contains(out, key) {
			continue
		}
		out = append(out, key)
	}
	return out
}

// headingIDs adapts interfaces.HeadingIDs to goldmark's parser.IDs.
type headingIDs struct {
	ids interfaces.HeadingIDs
}

func (h headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	return []byte(h.ids.Generate(string(value)))
}

func (h headingIDs) Put(value []byte) {
	h.ids.Put(string(value))
}

func sameOptions(a, b interfaces.ParseOptions) bool {
	return a.Sanitize == b.Sanitize &&
		a.HardWraps == b.HardWraps &&
		a.SafeMode == b.SafeMode &&
		slices.Equal(a.Extensions, b.Extensions)
}
