package buildcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-guide/internal/generator"
	"github.com/goliatone/go-guide/internal/loader"
)

const (
	buildSiteMessageType = "guide.site.build"
	cleanSiteMessageType = "guide.site.clean"
)

// ResultCallback receives build results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a command execution that generated a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand renders guide sources. Paths are relative to the content
// root; an empty list builds every discovered source.
type BuildSiteCommand struct {
	Paths          []string       `json:"paths,omitempty"`
	Force          bool           `json:"force,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate ensures every path is non-empty and stays within the content root.
func (m BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Paths, validation.Each(validation.Required, validation.By(sourcePathRule))),
	)
}

func sourcePathRule(value any) error {
	raw, _ := value.(string)
	if strings.TrimSpace(raw) == "" {
		return validation.NewError("guide.build.path_empty", "paths must not contain empty values")
	}
	if strings.HasPrefix(strings.TrimSpace(raw), "/") {
		return validation.NewError("guide.build.path_absolute", "paths must be relative to the content root")
	}
	rel, err := loader.CleanPath(raw)
	if err != nil || rel == "." {
		return validation.NewError("guide.build.path_invalid", "paths must stay within the content root")
	}
	return nil
}

// CleanSiteCommand removes every generated artifact from the output directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate satisfies command.Message; there are no payload constraints.
func (CleanSiteCommand) Validate() error { return nil }
