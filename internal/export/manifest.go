package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"foildb/internal/fileutil"
)

// ManifestSchema is the manifest format version this tool writes.
const ManifestSchema = 1

// DefaultManifestName is used when no name override is configured.
const DefaultManifestName = "offline_db_manifest.json"

// ManifestFile records one distributed file's location and integrity data.
type ManifestFile struct {
	URL    string `json:"url"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Manifest indexes the packs produced by one export invocation.
type Manifest struct {
	Schema         int                     `json:"schema"`
	DBVersion      string                  `json:"db_version"`
	GeneratedAtUTC string                  `json:"generated_at_utc"`
	Files          map[string]ManifestFile `json:"files"`
}

var whitespacePattern = regexp.MustCompile(`\s+`)

// normalizeBaseURL strips all whitespace from the base URL and trims a
// trailing slash so concatenation yields exactly one separator.
func normalizeBaseURL(raw string) string {
	value := whitespacePattern.ReplaceAllString(strings.TrimSpace(raw), "")
	return strings.TrimSuffix(value, "/")
}

// fileURL builds the manifest URL for a file name: base-joined when a base
// URL is configured, otherwise the bare name as a relative reference.
func fileURL(baseURL, name string) string {
	if baseURL == "" {
		return name
	}
	return baseURL + "/" + name
}

// defaultDBVersion is the fixed-width UTC timestamp used when no version
// override is supplied.
func defaultDBVersion(now time.Time) string {
	return now.UTC().Format("20060102150405")
}

// buildManifest hashes the named pack files and assembles the manifest
// document. paths maps distributed file name to its on-disk location.
func buildManifest(paths map[string]string, baseURL, dbVersion string, now time.Time) (Manifest, error) {
	base := normalizeBaseURL(baseURL)
	version := strings.TrimSpace(dbVersion)
	if version == "" {
		version = defaultDBVersion(now)
	}

	files := make(map[string]ManifestFile, len(paths))
	for name, path := range paths {
		sum, size, err := fileutil.FileSHA256(path)
		if err != nil {
			return Manifest{}, fmt.Errorf("hash %s: %w", path, err)
		}
		files[name] = ManifestFile{
			URL:    fileURL(base, name),
			Size:   size,
			SHA256: sum,
		}
	}

	return Manifest{
		Schema:         ManifestSchema,
		DBVersion:      version,
		GeneratedAtUTC: now.UTC().Format(time.RFC3339),
		Files:          files,
	}, nil
}

// WriteManifest persists the manifest atomically at path.
func WriteManifest(path string, manifest Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadManifest loads and decodes a manifest from path.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read %s: %w", path, err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if manifest.Schema != ManifestSchema {
		return Manifest{}, fmt.Errorf("%s: unsupported manifest schema %d", filepath.Base(path), manifest.Schema)
	}
	return manifest, nil
}
