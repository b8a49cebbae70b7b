// Package generator exposes the guide build API for hosts that bring their own
// page loader or document composer. Use NewService with Config and Dependencies
// to render sources into HTML files.
package generator

import (
	"github.com/goliatone/go-guide/internal/emitter"
	internal "github.com/goliatone/go-guide/internal/generator"
	"github.com/goliatone/go-guide/internal/page"
)

type (
	Service          = internal.Service
	Config           = internal.Config
	BuildOptions     = internal.BuildOptions
	BuildResult      = internal.BuildResult
	PageDiagnostic   = internal.PageDiagnostic
	PageStatus       = internal.PageStatus
	Dependencies     = internal.Dependencies
	PageLoader       = internal.PageLoader
	DocumentComposer = internal.DocumentComposer
	ArtifactWriter   = emitter.ArtifactWriter
	Page             = page.Page
)

const (
	StatusBuilt     = internal.StatusBuilt
	StatusUnchanged = internal.StatusUnchanged
	StatusSkipped   = internal.StatusSkipped
	StatusFailed    = internal.StatusFailed
)

// NewService wires a guide generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewFSWriter returns a writer storing artifacts under dir.
func NewFSWriter(dir string) ArtifactWriter {
	return emitter.NewFSWriter(dir)
}

// DryRunWriter wraps base so writes are compared but never persisted. base may be nil.
func DryRunWriter(base ArtifactWriter) ArtifactWriter {
	return emitter.DryRun(base)
}
