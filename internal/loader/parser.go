package loader

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-guide/internal/page"
)

const (
	filterMarkdown = "markdown"
	filterCode     = "code"
)

// ParseBody parses an indentation-structured page body into a block tree.
// firstLine is the 1-based file line of the first body line and is only used
// to report positions.
func ParseBody(path string, body []byte, firstLine int) ([]page.Block, error) {
	if firstLine < 1 {
		firstLine = 1
	}
	p := &bodyParser{
		path:   path,
		lines:  strings.Split(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n"),
		offset: firstLine,
	}
	return p.parse()
}

type bodyParser struct {
	path   string
	lines  []string
	offset int
}

// frame is an open container on the indentation stack. The root frame has
// indent -1 and no element.
type frame struct {
	indent      int
	childIndent int
	el          *page.Element
	children    *[]page.Block
}

func (p *bodyParser) parse() ([]page.Block, error) {
	var roots []page.Block
	stack := []*frame{{indent: -1, childIndent: -1, children: &roots}}

	for i := 0; i < len(p.lines); i++ {
		raw := p.lines[i]
		if strings.TrimSpace(raw) == "" {
			continue
		}

		indent, err := p.indentation(i)
		if err != nil {
			return nil, err
		}
		content := strings.TrimRight(raw[indent:], " \t")

		for len(stack) > 1 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		if err := p.checkChildIndent(parent, indent, i); err != nil {
			return nil, err
		}

		if strings.HasPrefix(content, "/") {
			i = p.skipNested(i, indent)
			continue
		}
		if parent.el != nil && parent.el.IsVoid() {
			return nil, p.errorf(i, "void element <%s> cannot have children", parent.el.Tag)
		}

		switch {
		case strings.HasPrefix(content, ":"):
			block, next, err := p.parseFilter(content, i, indent)
			if err != nil {
				return nil, err
			}
			*parent.children = append(*parent.children, block)
			i = next
		default:
			el, innermost, msg := parseElement(content, p.lineNo(i))
			if msg != "" {
				return nil, p.errorf(i, "%s", msg)
			}
			*parent.children = append(*parent.children, el)
			stack = append(stack, &frame{
				indent:      indent,
				childIndent: -1,
				el:          innermost,
				children:    &innermost.Children,
			})
		}
	}

	return roots, nil
}

func (p *bodyParser) lineNo(i int) int {
	return p.offset + i
}

func (p *bodyParser) errorf(i int, format string, args ...any) error {
	return &page.ParseError{Path: p.path, Line: p.lineNo(i), Msg: fmt.Sprintf(format, args...)}
}

// indentation returns the number of leading spaces on line i. Tabs in the
// leading whitespace are rejected.
func (p *bodyParser) indentation(i int) (int, error) {
	raw := p.lines[i]
	n := 0
	for n < len(raw) {
		switch raw[n] {
		case ' ':
			n++
			continue
		case '\t':
			return 0, p.errorf(i, "tab character in indentation")
		}
		break
	}
	return n, nil
}

func (p *bodyParser) checkChildIndent(parent *frame, indent, i int) error {
	if parent.childIndent == -1 {
		parent.childIndent = indent
		return nil
	}
	if parent.childIndent != indent {
		return p.errorf(i, "inconsistent indentation: column %d does not match sibling column %d", indent, parent.childIndent)
	}
	return nil
}

// nestedEnd returns the index of the last line nested under line i, that is
// every following line which is blank or indented deeper than indent.
func (p *bodyParser) nestedEnd(i, indent int) int {
	last := i
	for j := i + 1; j < len(p.lines); j++ {
		line := p.lines[j]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if leadingSpaces(line) <= indent {
			break
		}
		last = j
	}
	return last
}

func (p *bodyParser) skipNested(i, indent int) int {
	return p.nestedEnd(i, indent)
}

func (p *bodyParser) parseFilter(content string, i, indent int) (page.Block, int, error) {
	name, rest := splitName(content[1:])
	if name == "" {
		return nil, i, p.errorf(i, "missing filter name after ':'")
	}

	var attrs []page.Attr
	if strings.HasPrefix(rest, "(") {
		parsed, n, msg := parseAttrs(rest)
		if msg != "" {
			return nil, i, p.errorf(i, "%s", msg)
		}
		attrs = parsed
		rest = rest[n:]
	}
	if strings.TrimSpace(rest) != "" {
		return nil, i, p.errorf(i, "unexpected content after filter :%s", name)
	}

	end := p.nestedEnd(i, indent)
	text := dedent(p.lines[i+1 : end+1])
	line := p.lineNo(i)

	switch name {
	case filterMarkdown:
		if len(attrs) > 0 {
			return nil, i, p.errorf(i, "filter :%s takes no attributes", name)
		}
		return &page.Prose{Markdown: text, SrcLine: line}, end, nil
	case filterCode:
		code := &page.Code{Text: text, SrcLine: line}
		for _, attr := range attrs {
			switch strings.ToLower(attr.Name) {
			case "lang", "language":
				code.Lang = strings.TrimSpace(attr.Value)
			case "source", "src":
				code.Source = strings.TrimSpace(attr.Value)
			default:
				return nil, i, p.errorf(i, "unknown :%s attribute %q", name, attr.Name)
			}
		}
		return code, end, nil
	default:
		return nil, i, p.errorf(i, "unknown filter :%s", name)
	}
}

func splitName(s string) (string, string) {
	n := 0
	for n < len(s) && (isLetter(s[n]) || (n > 0 && (isDigit(s[n]) || s[n] == '-' || s[n] == '_'))) {
		n++
	}
	return s[:n], s[n:]
}

// dedent strips the smallest common indentation from lines and trims leading
// and trailing blank lines. Interior blank lines are kept as empty lines.
func dedent(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	lines = lines[start:end]
	if len(lines) == 0 {
		return ""
	}

	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n := leadingSpaces(line); common == -1 || n < common {
			common = n
		}
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out[i] = line[common:]
	}
	return strings.Join(out, "\n")
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
