package guide_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-guide"
)

func TestConfigValidateDefaults(t *testing.T) {
	if err := guide.DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestConfigValidateOutputOverlapsContent(t *testing.T) {
	cfg := guide.DefaultConfig()
	cfg.Output.Dir = "./content/"

	if err := cfg.Validate(); !errors.Is(err, guide.ErrOutputDirOverlaps) {
		t.Fatalf("expected ErrOutputDirOverlaps, got %v", err)
	}
}

func TestConfigValidateWorkers(t *testing.T) {
	cfg := guide.DefaultConfig()
	cfg.Output.Workers = -2

	if err := cfg.Validate(); !errors.Is(err, guide.ErrWorkersInvalid) {
		t.Fatalf("expected ErrWorkersInvalid, got %v", err)
	}
}

func TestConfigValidateLoggingProvider(t *testing.T) {
	cfg := guide.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, guide.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	name := filepath.Join(t.TempDir(), "guide.yaml")
	body := "content:\n  dir: docs\noutput:\n  dir: site\n  incremental: true\n"
	if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := guide.LoadConfig(name)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Content.Dir != "docs" || cfg.Output.Dir != "site" || !cfg.Output.Incremental {
		t.Fatalf("expected file values applied, got %+v", cfg)
	}
	if cfg.Content.Pattern != "*.slim" || cfg.Layout.Lang != "en" {
		t.Fatalf("expected defaults retained, got %+v", cfg)
	}
}
