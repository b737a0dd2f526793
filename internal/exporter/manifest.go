package exporter

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"

	apperrors "housingcli/internal/errors"
)

// Manifest lists the tables produced by one pipeline run.
type Manifest struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Input       string          `json:"input,omitempty"`
	DateColumn  string          `json:"date_column,omitempty"`
	Fallback    bool            `json:"snapshot_fallback"`
	Tables      []ManifestEntry `json:"tables"`
}

// ManifestEntry describes one output file.
type ManifestEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Rows     int    `json:"rows"`
	Bytes    int64  `json:"bytes"`
	Checksum string `json:"blake2b_256"`
}

// TableFile names a written table and its row count.
type TableFile struct {
	Name string
	Path string
	Rows int
}

// BuildEntries checksums each table. Paths in the entries are relative to root when possible.
func BuildEntries(root string, tables ...TableFile) ([]ManifestEntry, error) {
	entries := make([]ManifestEntry, 0, len(tables))
	for _, t := range tables {
		sum, size, err := ChecksumFile(t.Path)
		if err != nil {
			return nil, err
		}
		rel := t.Path
		if root != "" {
			if r, err := filepath.Rel(root, t.Path); err == nil {
				rel = filepath.ToSlash(r)
			}
		}
		entries = append(entries, ManifestEntry{
			Name:     t.Name,
			Path:     rel,
			Rows:     t.Rows,
			Bytes:    size,
			Checksum: sum,
		})
	}
	return entries, nil
}

// ChecksumFile returns the hex BLAKE2b-256 digest and size of the file at path.
func ChecksumFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, apperrors.NewStorageError(fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", 0, apperrors.NewStorageError("failed to create hash", err)
	}
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Entry returns the entry with the given name.
func (m *Manifest) Entry(name string) (ManifestEntry, bool) {
	for _, e := range m.Tables {
		if e.Name == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// SaveToFile saves the manifest to a JSON file
func (m *Manifest) SaveToFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.NewStorageError("failed to write manifest file", err)
	}
	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(path, err)
		}
		return nil, apperrors.NewStorageError("failed to read manifest file", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, apperrors.NewParsingError("failed to unmarshal manifest", err)
	}
	return &manifest, nil
}
