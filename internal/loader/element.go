package loader

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-guide/internal/page"
)

// parseElement parses a structural line such as
// `a.button#cta(href="/guides" data-turbo) Read more` or `li: a(href="/") Home`.
// It returns the outer element, the innermost element of an inline `tag: child`
// chain (the one that receives indented children), and a non-empty message
// when the line is malformed.
func parseElement(s string, line int) (*page.Element, *page.Element, string) {
	el := &page.Element{SrcLine: line}

	pos := 0
	switch {
	case pos < len(s) && isLetter(s[pos]):
		for pos < len(s) && isTagChar(s[pos]) {
			pos++
		}
		el.Tag = strings.ToLower(s[:pos])
	case pos < len(s) && (s[pos] == '.' || s[pos] == '#'):
		el.Tag = "div"
	default:
		return nil, nil, fmt.Sprintf("malformed tag %q", s)
	}

	for pos < len(s) && (s[pos] == '.' || s[pos] == '#') {
		marker := s[pos]
		pos++
		start := pos
		for pos < len(s) && isNameChar(s[pos]) {
			pos++
		}
		name := s[start:pos]
		if marker == '#' {
			if name == "" {
				return nil, nil, fmt.Sprintf("empty id in tag %q", s)
			}
			if el.ID != "" {
				return nil, nil, fmt.Sprintf("duplicate id in tag %q", s)
			}
			el.ID = name
			continue
		}
		if name == "" {
			return nil, nil, fmt.Sprintf("empty class name in tag %q", s)
		}
		el.Classes = append(el.Classes, name)
	}

	if pos < len(s) && s[pos] == '(' {
		attrs, n, msg := parseAttrs(s[pos:])
		if msg != "" {
			return nil, nil, msg
		}
		pos += n
		for _, attr := range attrs {
			switch strings.ToLower(attr.Name) {
			case "class":
				el.Classes = append(el.Classes, strings.Fields(attr.Value)...)
			case "id":
				if el.ID != "" {
					return nil, nil, fmt.Sprintf("duplicate id in tag %q", s)
				}
				el.ID = strings.TrimSpace(attr.Value)
			default:
				el.Attrs = append(el.Attrs, attr)
			}
		}
	}

	innermost := el
	rest := s[pos:]
	switch {
	case rest == "":
	case rest[0] == ':':
		nested := strings.TrimLeft(rest[1:], " ")
		if nested == "" || rest[1] != ' ' {
			return nil, nil, fmt.Sprintf("expected element after ':' in %q", s)
		}
		child, inner, msg := parseElement(nested, line)
		if msg != "" {
			return nil, nil, msg
		}
		el.Children = []page.Block{child}
		innermost = inner
	case rest[0] == ' ':
		el.Text = strings.TrimSpace(rest)
	default:
		return nil, nil, fmt.Sprintf("unexpected %q after tag %q", rest[0], s[:pos])
	}

	if el.IsVoid() && (el.Text != "" || len(el.Children) > 0) {
		return nil, nil, fmt.Sprintf("void element <%s> cannot have content", el.Tag)
	}

	return el, innermost, ""
}

// parseAttrs parses a parenthesised attribute list starting at s[0] == '('.
// Values must be quoted with single or double quotes; names without a value
// are boolean attributes. It returns the attributes and the number of bytes
// consumed including the closing parenthesis.
func parseAttrs(s string) ([]page.Attr, int, string) {
	var attrs []page.Attr
	i := 1
	for {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			return nil, 0, "unterminated attribute list"
		}
		if s[i] == ')' {
			return attrs, i + 1, ""
		}

		start := i
		for i < len(s) && isAttrChar(s[i], i == start) {
			i++
		}
		name := s[start:i]
		if name == "" {
			return nil, 0, fmt.Sprintf("invalid attribute name at %q", s[start:])
		}

		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i < len(s) && s[i] == '=' {
			i++
			for i < len(s) && s[i] == ' ' {
				i++
			}
			if i >= len(s) {
				return nil, 0, fmt.Sprintf("missing value for attribute %q", name)
			}
			quote := s[i]
			if quote != '"' && quote != '\'' {
				return nil, 0, fmt.Sprintf("value of attribute %q must be quoted", name)
			}
			end := strings.IndexByte(s[i+1:], quote)
			if end < 0 {
				return nil, 0, fmt.Sprintf("unterminated quote in attribute %q", name)
			}
			attrs = append(attrs, page.Attr{Name: name, Value: s[i+1 : i+1+end], HasBody: true})
			i += end + 2
		} else {
			attrs = append(attrs, page.Attr{Name: name})
		}

		if i < len(s) && s[i] != ' ' && s[i] != ')' {
			return nil, 0, fmt.Sprintf("expected space after attribute %q", name)
		}
	}
}

func isTagChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-'
}

func isNameChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_'
}

func isAttrChar(c byte, first bool) bool {
	if isLetter(c) || c == '_' || c == '@' || c == ':' {
		return true
	}
	if first {
		return false
	}
	return isDigit(c) || c == '-' || c == '.'
}
