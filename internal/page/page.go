package page

import "strings"

// Page is a single guide source parsed into its title and body blocks.
type Page struct {
	// Path is the source path relative to the content root, slash separated.
	Path  string
	Title string
	// Meta carries the remaining front-matter keys (description, lang, ...).
	Meta     map[string]any
	Blocks   []Block
	Checksum []byte
}

// MetaString returns a trimmed string front-matter value or an empty string.
func (p *Page) MetaString(key string) string {
	if p == nil || p.Meta == nil {
		return ""
	}
	value, ok := p.Meta[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// Kind identifies a Block variant.
type Kind uint8

const (
	KindElement Kind = iota + 1
	KindProse
	KindCode
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindProse:
		return "prose"
	case KindCode:
		return "code"
	default:
		return "unknown"
	}
}

// Block is a node of rendered content. The set of implementations is closed:
// *Element, *Prose and *Code.
type Block interface {
	Kind() Kind
	// Line is the 1-based source line the block starts on.
	Line() int
	block()
}

// Attr is a single element attribute. Attributes without a value render as
// bare names (e.g. `defer`).
type Attr struct {
	Name    string
	Value   string
	HasBody bool
}

// Element is structural markup: an HTML element wrapping its children.
type Element struct {
	Tag      string
	ID       string
	Classes  []string
	Attrs    []Attr
	Text     string
	Children []Block
	SrcLine  int
}

func (*Element) Kind() Kind  { return KindElement }
func (e *Element) Line() int { return e.SrcLine }
func (*Element) block()      {}

// Attr returns the value of the named attribute and whether it was set.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.Attrs {
		if strings.EqualFold(attr.Name, name) {
			return attr.Value, true
		}
	}
	return "", false
}

// IsVoid reports whether the element is an HTML void element.
func (e *Element) IsVoid() bool {
	return IsVoidTag(e.Tag)
}

// Prose is a Markdown block rendered into an HTML fragment at compose time.
type Prose struct {
	Markdown string
	SrcLine  int
}

func (*Prose) Kind() Kind  { return KindProse }
func (p *Prose) Line() int { return p.SrcLine }
func (*Prose) block()      {}

// Code is a literal code sample. Source, when set, links to the original file.
type Code struct {
	Text    string
	Lang    string
	Source  string
	SrcLine int
}

func (*Code) Kind() Kind  { return KindCode }
func (c *Code) Line() int { return c.SrcLine }
func (*Code) block()      {}

var voidTags = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// IsVoidTag reports whether tag is an HTML void element.
func IsVoidTag(tag string) bool {
	_, ok := voidTags[strings.ToLower(tag)]
	return ok
}

// Walk visits blocks depth-first in document order. Returning false from fn
// skips the children of the visited element.
func Walk(blocks []Block, fn func(Block) bool) {
	for _, b := range blocks {
		if !fn(b) {
			continue
		}
		if el, ok := b.(*Element); ok {
			Walk(el.Children, fn)
		}
	}
}
