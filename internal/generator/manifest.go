package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".guide-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores metadata about the last successful build to support incremental runs.
type buildManifest struct {
	Version     int                     `json:"version"`
	GeneratedAt time.Time               `json:"generated_at"`
	Pages       map[string]manifestPage `json:"pages"`
}

type manifestPage struct {
	Source         string    `json:"source"`
	Output         string    `json:"output"`
	SourceChecksum string    `json:"source_checksum"`
	OutputChecksum string    `json:"output_checksum"`
	Fingerprint    string    `json:"fingerprint"`
	RenderedAt     time.Time `json:"rendered_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var stored struct {
		Version     int            `json:"version"`
		GeneratedAt time.Time      `json:"generated_at"`
		Pages       []manifestPage `json:"pages"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if stored.Version != 0 && stored.Version != manifestFileVersion {
		return nil, fmt.Errorf("generator: unsupported manifest version %d", stored.Version)
	}
	manifest := newBuildManifest()
	manifest.GeneratedAt = stored.GeneratedAt
	for _, entry := range stored.Pages {
		manifest.setPage(entry)
	}
	return manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	// Stable ordering for deterministic output.
	ordered := struct {
		Version     int            `json:"version"`
		GeneratedAt time.Time      `json:"generated_at"`
		Pages       []manifestPage `json:"pages"`
	}{
		Version:     manifestFileVersion,
		GeneratedAt: m.GeneratedAt,
		Pages:       make([]manifestPage, 0, len(m.Pages)),
	}
	for _, entry := range m.Pages {
		ordered.Pages = append(ordered.Pages, entry)
	}
	sort.Slice(ordered.Pages, func(i, j int) bool {
		return ordered.Pages[i].Source < ordered.Pages[j].Source
	})
	return json.MarshalIndent(ordered, "", "  ")
}

func (m *buildManifest) lookupPage(source string) (manifestPage, bool) {
	if m == nil || len(m.Pages) == 0 {
		return manifestPage{}, false
	}
	entry, ok := m.Pages[strings.TrimSpace(source)]
	return entry, ok
}

func (m *buildManifest) setPage(entry manifestPage) {
	key := strings.TrimSpace(entry.Source)
	if key == "" {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[key] = entry
}

// shouldSkipPage reports whether the recorded render of source is still
// current for the given source checksum, layout fingerprint and output path.
func (m *buildManifest) shouldSkipPage(source, checksum, fingerprint, output string) bool {
	entry, ok := m.lookupPage(source)
	if !ok {
		return false
	}
	return entry.SourceChecksum == checksum &&
		entry.Fingerprint == fingerprint &&
		entry.Output == output
}

// prunePages drops entries for sources that no longer exist.
func (m *buildManifest) prunePages(keep map[string]struct{}) {
	for key := range m.Pages {
		if _, ok := keep[key]; !ok {
			delete(m.Pages, key)
		}
	}
}
