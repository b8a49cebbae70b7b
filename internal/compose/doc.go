// Package compose turns a parsed page into a complete HTML document. Blocks
// are walked in document order: elements become HTML elements, prose blocks
// are rendered through the configured markdown parser and code samples are
// escaped into a preformatted container. The result is placed into a pongo2
// layout that owns the document head, including the single <title> slot.
package compose
