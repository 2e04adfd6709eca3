// Package manifest writes and reads the manifest.yaml sidecar that
// accompanies a stored alignment directory: a build id, the row/column
// counts, the batch width used during construction, and a checksum over
// per-column metadata (index, row count, size in bytes). It is pure bookkeeping — nothing under
// succinctmsa ever requires manifest.yaml to reload an alignment.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the sidecar record written next to info.txt on Store.
type Manifest struct {
	BuildID    string `yaml:"build_id"`
	Rows       int    `yaml:"rows"`
	Cols       int    `yaml:"cols"`
	BatchWidth int    `yaml:"batch_width"`
	Checksum   uint64 `yaml:"checksum"`
}

// FileName is the sidecar's name within a stored alignment directory.
const FileName = "manifest.yaml"

// Write marshals m as YAML and writes it to dir/manifest.yaml.
func Write(dir string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("manifest: marshal: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		return fmt.Errorf("manifest: write: %w", err)
	}
	return nil
}

// Read loads dir/manifest.yaml, if present. Callers should treat a missing
// manifest as non-fatal; it is never required to reload an alignment.
func Read(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return m, fmt.Errorf("manifest: read: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("manifest: unmarshal: %w", err)
	}
	return m, nil
}
