// Package markdown renders the prose blocks of a guide page into HTML
// fragments using goldmark. Rendering is deterministic and the parser is safe
// to share between build workers.
package markdown
