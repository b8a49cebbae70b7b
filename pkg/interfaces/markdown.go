package interfaces

// MarkdownParser converts raw Markdown bytes into an HTML fragment.
// Implementations must be safe for concurrent use so a single parser can be
// shared by every build worker.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering, keeping option names readable
// for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// Fingerprinter is implemented by parsers whose output depends on
// configuration. The fingerprint changes whenever rendered HTML could.
type Fingerprinter interface {
	Fingerprint() string
}

// HeadingIDs allocates heading ids that are unique within one document.
type HeadingIDs interface {
	// Generate derives an unused id from heading text and reserves it.
	Generate(text string) string
	// Put reserves an id chosen elsewhere on the page.
	Put(id string)
}

// HeadingIDParser renders Markdown while drawing heading ids from a registry
// shared with the rest of the document.
type HeadingIDParser interface {
	ParseWithHeadingIDs(markdown []byte, ids HeadingIDs) ([]byte, error)
}
