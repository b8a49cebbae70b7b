package compose

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/internal/page"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

const defaultLang = "en"

// Config controls the document shell and element rendering.
type Config struct {
	// LayoutPath points to a pongo2 layout file. Empty selects DefaultLayout.
	LayoutPath string
	SiteTitle  string
	Lang       string
	// HeadingAnchors derives ids for h1-h6 elements that have inline text and
	// no explicit id.
	HeadingAnchors bool
}

// Composer renders pages into HTML documents. A Composer holds no per-page
// state and may be shared across goroutines.
type Composer struct {
	cfg      Config
	markdown interfaces.MarkdownParser
	layout   *layout
	logger   interfaces.Logger
}

// New compiles the configured layout and returns a Composer that renders
// prose through parser.
func New(cfg Config, parser interfaces.MarkdownParser, logger interfaces.Logger) (*Composer, error) {
	if parser == nil {
		return nil, fmt.Errorf("compose: markdown parser is required")
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	if strings.TrimSpace(cfg.Lang) == "" {
		cfg.Lang = defaultLang
	}
	l, err := loadLayout(cfg.LayoutPath)
	if err != nil {
		return nil, err
	}
	return &Composer{cfg: cfg, markdown: parser, layout: l, logger: logger}, nil
}

// Fingerprint identifies the layout and rendering options, including the
// prose parser's. Output produced under a different fingerprint must be
// regenerated.
func (c *Composer) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(c.layout.fingerprint))
	fmt.Fprintf(h, "|%s|%s|%t", c.cfg.SiteTitle, c.cfg.Lang, c.cfg.HeadingAnchors)
	if fp, ok := c.markdown.(interfaces.Fingerprinter); ok {
		fmt.Fprintf(h, "|%s", fp.Fingerprint())
	} else {
		fmt.Fprintf(h, "|%T", c.markdown)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Compose renders pg into a complete HTML document.
func (c *Composer) Compose(pg *page.Page) ([]byte, error) {
	if pg == nil {
		return nil, fmt.Errorf("compose: page is required")
	}

	body := c.RenderBlocks(pg)

	title := strings.TrimSpace(pg.Title)
	if title == "" {
		title = c.cfg.SiteTitle
	}
	lang := pg.MetaString("lang")
	if lang == "" {
		lang = c.cfg.Lang
	}

	return c.layout.execute(pongo2.Context{
		"title":       title,
		"site_title":  c.cfg.SiteTitle,
		"description": pg.MetaString("description"),
		"lang":        lang,
		"body":        body,
		"source":      pg.Path,
	})
}

// RenderBlocks renders the page body without the document shell.
func (c *Composer) RenderBlocks(pg *page.Page) string {
	w := &walker{
		composer: c,
		page:     pg,
		anchors:  anchorSet{},
	}
	for _, block := range pg.Blocks {
		w.block(block)
	}
	return w.buf.String()
}

// walker carries the state of a single page render.
type walker struct {
	composer *Composer
	page     *page.Page
	buf      bytes.Buffer
	anchors  anchorSet
}

func (w *walker) block(b page.Block) {
	switch node := b.(type) {
	case *page.Element:
		w.element(node)
	case *page.Prose:
		w.prose(node)
	case *page.Code:
		w.code(node)
	}
}

func (w *walker) element(el *page.Element) {
	id := el.ID
	if id != "" {
		w.anchors.Put(id)
	} else if w.composer.cfg.HeadingAnchors && isHeading(el.Tag) && el.Text != "" {
		id = w.anchor(el.Text)
	}

	w.buf.WriteByte('<')
	w.buf.WriteString(el.Tag)
	if id != "" {
		writeAttr(&w.buf, "id", id)
	}
	if len(el.Classes) > 0 {
		writeAttr(&w.buf, "class", strings.Join(el.Classes, " "))
	}
	for _, attr := range el.Attrs {
		if !attr.HasBody {
			w.buf.WriteByte(' ')
			w.buf.WriteString(attr.Name)
			continue
		}
		writeAttr(&w.buf, attr.Name, attr.Value)
	}
	w.buf.WriteByte('>')

	if el.IsVoid() {
		return
	}

	w.buf.WriteString(html.EscapeString(el.Text))
	for _, child := range el.Children {
		w.block(child)
	}
	w.buf.WriteString("</")
	w.buf.WriteString(el.Tag)
	w.buf.WriteByte('>')
}

func (w *walker) prose(p *page.Prose) {
	if strings.TrimSpace(p.Markdown) == "" {
		return
	}
	var (
		fragment []byte
		err      error
	)
	if hp, ok := w.composer.markdown.(interfaces.HeadingIDParser); ok {
		fragment, err = hp.ParseWithHeadingIDs([]byte(p.Markdown), w.anchors)
	} else {
		fragment, err = w.composer.markdown.Parse([]byte(p.Markdown))
	}
	if err != nil {
		logging.WithPageContext(w.composer.logger, w.page.Path, "").Warn("compose.markdown.fallback",
			"line", p.SrcLine,
			"error", err,
		)
		w.buf.WriteString("<p>")
		w.buf.WriteString(html.EscapeString(p.Markdown))
		w.buf.WriteString("</p>")
		return
	}
	w.buf.Write(bytes.TrimRight(fragment, "\n"))
}

func (w *walker) code(c *page.Code) {
	w.buf.WriteString(`<div class="code-sample"><pre><code`)
	if c.Lang != "" {
		writeAttr(&w.buf, "class", "language-"+c.Lang)
	}
	w.buf.WriteByte('>')
	w.buf.WriteString(html.EscapeString(c.Text))
	w.buf.WriteString(`</code></pre>`)
	if c.Source != "" {
		w.buf.WriteString(`<a class="code-sample-source"`)
		writeAttr(&w.buf, "href", c.Source)
		w.buf.WriteString(`>View source</a>`)
	}
	w.buf.WriteString(`</div>`)
}

// anchor derives a heading id from element text, or "" when the text has
// nothing to slug.
func (w *walker) anchor(text string) string {
	if base, err := slug.Normalize(text); err != nil || base == "" {
		return ""
	}
	return w.anchors.Generate(text)
}

// anchorSet holds every id used on one page. Element headings and Markdown
// headings draw from the same set, so ids never repeat.
type anchorSet map[string]struct{}

var _ interfaces.HeadingIDs = anchorSet{}

func (a anchorSet) Generate(text string) string {
	base, err := slug.Normalize(text)
	if err != nil || base == "" {
		base = "heading"
	}
	id := base
	for n := 2; a.taken(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	a[id] = struct{}{}
	return id
}

func (a anchorSet) Put(id string) {
	if id != "" {
		a[id] = struct{}{}
	}
}

func (a anchorSet) taken(id string) bool {
	_, ok := a[id]
	return ok
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteByte(' ')
	buf.WriteString(name)
	buf.WriteString(`="`)
	buf.WriteString(html.EscapeString(value))
	buf.WriteByte('"')
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}
