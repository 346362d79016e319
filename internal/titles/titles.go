// Package titles owns the metadata snapshot: loading and validating the
// generated title JSON, diffing snapshots, and deciding when the snapshot
// needs regeneration from the upstream feed.
package titles

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"foildb/internal/media"
	"foildb/internal/services"
)

// TitleRecord is one catalog entry. String fields default to "" when the feed
// omits them; numeric and boolean fields keep a nil/"absent" state because the
// pack format and the diff both distinguish absent from zero.
type TitleRecord struct {
	ID          string
	Name        string
	Publisher   string
	Intro       string
	Description string
	Size        *int64
	Version     *int64
	ReleaseDate *int64
	IsDemo      *bool
	IconURL     string
	BannerURL   string
}

// HasMetadata reports whether at least one of the eight metadata fields is
// present: a non-empty string, a non-negative numeric, or a recorded demo
// flag. Records without any metadata are placeholders and are excluded from
// title packs.
func (r TitleRecord) HasMetadata() bool {
	if r.Name != "" || r.Publisher != "" || r.Intro != "" || r.Description != "" {
		return true
	}
	if presentInt64(r.Size) || presentInt64(r.Version) || presentInt64(r.ReleaseDate) {
		return true
	}
	return r.IsDemo != nil
}

func presentInt64(value *int64) bool {
	return value != nil && *value >= 0
}

// Snapshot is an immutable point-in-time mapping of normalized title
// identifiers to records, paired with the SHA-256 of the exact document bytes
// it was loaded from.
type Snapshot struct {
	Records    map[string]TitleRecord
	SourceHash string
}

// EmptySnapshot returns a snapshot with no records, used as the "previous"
// side of a diff when no generated file exists yet.
func EmptySnapshot() *Snapshot {
	return &Snapshot{Records: map[string]TitleRecord{}}
}

// Len returns the record count.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// URLMap projects the snapshot onto one media kind: normalized identifier to
// source URL, skipping records without a URL for that kind.
func (s *Snapshot) URLMap(kind media.Kind) map[string]string {
	out := make(map[string]string, len(s.Records))
	for id, record := range s.Records {
		url := record.IconURL
		if kind == media.KindBanners {
			url = record.BannerURL
		}
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		out[id] = url
	}
	return out
}

// NormalizeID canonicalizes a title identifier: trimmed and uppercased.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

type rawRecord struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Publisher   string      `json:"publisher"`
	Intro       string      `json:"intro"`
	Description string      `json:"description"`
	Size        json.Number `json:"size"`
	Version     json.Number `json:"version"`
	ReleaseDate json.Number `json:"releaseDate"`
	IsDemo      *bool       `json:"isDemo"`
	IconURL     string      `json:"iconUrl"`
	BannerURL   string      `json:"bannerUrl"`
}

// LoadSnapshot reads and validates a generated title-metadata document.
// Identifier normalization happens here, once; duplicate identifiers after
// normalization are a structural error.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrSource, "titles", "load", fmt.Sprintf("snapshot %s missing", path), err)
		}
		return nil, services.Wrap(services.ErrSource, "titles", "load", path, err)
	}
	snapshot, err := ParseSnapshot(data)
	if err != nil {
		return nil, services.Wrap(services.ErrSource, "titles", "parse", path, err)
	}
	return snapshot, nil
}

// ParseSnapshot decodes snapshot document bytes. Exposed separately so tests
// and the workflow can parse in-memory documents.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	records := make(map[string]TitleRecord, len(raw))
	for key, payload := range raw {
		trimmed := strings.TrimSpace(string(payload))
		if trimmed == "" || trimmed == "null" {
			continue
		}
		var entry rawRecord
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, fmt.Errorf("record %q: %w", key, err)
		}
		id := entry.ID
		if strings.TrimSpace(id) == "" {
			id = key
		}
		id = NormalizeID(id)
		if id == "" {
			return nil, fmt.Errorf("record %q: empty identifier", key)
		}
		if _, exists := records[id]; exists {
			return nil, fmt.Errorf("duplicate identifier %q", id)
		}
		records[id] = TitleRecord{
			ID:          id,
			Name:        entry.Name,
			Publisher:   entry.Publisher,
			Intro:       entry.Intro,
			Description: entry.Description,
			Size:        numberToInt64(entry.Size),
			Version:     numberToInt64(entry.Version),
			ReleaseDate: numberToInt64(entry.ReleaseDate),
			IsDemo:      entry.IsDemo,
			IconURL:     strings.TrimSpace(entry.IconURL),
			BannerURL:   strings.TrimSpace(entry.BannerURL),
		}
	}

	sum := sha256.Sum256(data)
	return &Snapshot{Records: records, SourceHash: hex.EncodeToString(sum[:])}, nil
}

func numberToInt64(value json.Number) *int64 {
	if value == "" {
		return nil
	}
	parsed, err := value.Int64()
	if err != nil {
		return nil
	}
	return &parsed
}
