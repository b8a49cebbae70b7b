package runtimeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrContentDirRequired     = errors.New("guide config: content directory is required")
	ErrContentPatternInvalid  = errors.New("guide config: content pattern is invalid")
	ErrOutputDirRequired      = errors.New("guide config: output directory is required")
	ErrOutputDirOverlaps      = errors.New("guide config: output directory must differ from the content directory")
	ErrWorkersInvalid         = errors.New("guide config: workers must be zero or positive")
	ErrLoggingProviderUnknown = errors.New("guide config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("guide config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("guide config: logging format is invalid")
)

// Config aggregates every option of the guide renderer.
type Config struct {
	Content  ContentConfig  `yaml:"content"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Layout   LayoutConfig   `yaml:"layout"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ContentConfig locates guide sources.
type ContentConfig struct {
	Dir       string `yaml:"dir"`
	Pattern   string `yaml:"pattern"`
	Recursive bool   `yaml:"recursive"`
}

// MarkdownConfig drives the prose renderer.
type MarkdownConfig struct {
	// Extensions lists goldmark extensions by name. Empty selects gfm,
	// linkify and tasklist.
	Extensions []string `yaml:"extensions"`
	Sanitize   bool     `yaml:"sanitize"`
	HardWraps  bool     `yaml:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode"`
}

// LayoutConfig controls the document shell.
type LayoutConfig struct {
	Path           string `yaml:"path"`
	SiteTitle      string `yaml:"site_title"`
	Lang           string `yaml:"lang"`
	HeadingAnchors bool   `yaml:"heading_anchors"`
}

// OutputConfig controls where and how pages are written.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	Workers     int    `yaml:"workers"`
	Incremental bool   `yaml:"incremental"`
	CleanBuild  bool   `yaml:"clean_build"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the defaults used when no configuration file is given.
func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Dir:       "content",
			Pattern:   "*.slim",
			Recursive: true,
		},
		Markdown: MarkdownConfig{},
		Layout: LayoutConfig{
			Lang:           "en",
			HeadingAnchors: true,
		},
		Output: OutputConfig{
			Dir: "public",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	contentDir := strings.TrimSpace(cfg.Content.Dir)
	if contentDir == "" {
		return ErrContentDirRequired
	}
	if pattern := strings.TrimSpace(cfg.Content.Pattern); pattern != "" {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("%w: %s", ErrContentPatternInvalid, pattern)
		}
	}
	outputDir := strings.TrimSpace(cfg.Output.Dir)
	if outputDir == "" {
		return ErrOutputDirRequired
	}
	if filepath.Clean(outputDir) == filepath.Clean(contentDir) {
		return ErrOutputDirOverlaps
	}
	if cfg.Output.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Output.Workers)
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// LoadFile reads a YAML configuration file on top of DefaultConfig and
// validates the result. Unknown keys are rejected.
func LoadFile(name string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(name)
	if err != nil {
		return cfg, fmt.Errorf("guide config: read %s: %w", name, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("guide config: decode %s: %w", name, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
