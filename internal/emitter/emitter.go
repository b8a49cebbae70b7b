package emitter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/goliatone/go-guide/internal/logging"
	"github.com/goliatone/go-guide/pkg/interfaces"
)

// Emission describes where a page ended up.
type Emission struct {
	Output   string
	Checksum string
	Status   Status
}

// Emitter writes composed documents to their mirrored output paths.
type Emitter struct {
	writer ArtifactWriter
	logger interfaces.Logger
}

// New returns an Emitter over writer. A nil writer behaves as a dry run.
func New(writer ArtifactWriter, logger interfaces.Logger) *Emitter {
	if writer == nil {
		writer = DryRun(nil)
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Emitter{writer: writer, logger: logger}
}

// Writer exposes the underlying artifact writer.
func (e *Emitter) Writer() ArtifactWriter {
	return e.writer
}

// Emit writes document for the page at sourcePath. Failures are reported as
// *page.IOError and are never retried.
func (e *Emitter) Emit(ctx context.Context, sourcePath string, document []byte) (Emission, error) {
	output, err := OutputPath(sourcePath)
	if err != nil {
		return Emission{}, err
	}

	sum := sha256.Sum256(document)
	emission := Emission{Output: output, Checksum: hex.EncodeToString(sum[:])}

	status, err := e.writer.WriteFile(ctx, WriteRequest{
		Path:     output,
		Content:  document,
		Category: CategoryPage,
	})
	if err != nil {
		return emission, err
	}
	emission.Status = status

	logging.WithPageContext(e.logger, sourcePath, output).Debug("emitter.page.written",
		"status", status.String(),
		"bytes", len(document),
	)
	return emission, nil
}

// Clean removes every emitted artifact.
func (e *Emitter) Clean(ctx context.Context) error {
	if err := e.writer.RemoveAll(ctx); err != nil {
		return err
	}
	e.logger.Info("emitter.output.cleaned")
	return nil
}
