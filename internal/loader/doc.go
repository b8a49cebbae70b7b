// Package loader turns guide source files into page.Page values. Loading runs
// in two phases: a front-matter scanner extracts the title and metadata, then
// the block parser reads the indentation-structured body.
//
// Body syntax:
//
//	section.banner
//	  h1.banner-headline Composing Applications
//	  a.button(href="/guides") All guides
//	.guide-wrapper
//	  / dropped together with anything nested below
//	  :markdown
//	    We'll look at **patterns**.
//	  :code(lang="rust" source="https://example.com/src/main.rs")
//	    fn main() {}
package loader
