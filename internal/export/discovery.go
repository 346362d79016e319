package export

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"foildb/internal/config"
)

// IconDBCandidates are the store file names discovery accepts, in priority
// order.
var IconDBCandidates = []string{"icon.db", "icons.db"}

// TitlesCandidates returns the snapshot file names discovery accepts for a
// locale, in priority order. For "US.en" this yields titles.US.en.json down
// to the bare titles.json fallback.
func TitlesCandidates(locale string) []string {
	locale = strings.TrimSpace(locale)
	candidates := []string{
		"titles." + locale + ".json",
		"titles." + strings.ToLower(locale) + ".json",
		"title." + locale + ".json",
		"title." + strings.ToLower(locale) + ".json",
	}
	if _, lang, err := config.SplitLocale(locale); err == nil {
		candidates = append(candidates, "titles."+strings.ToLower(lang)+".json")
	}
	candidates = append(candidates, "titles.json")

	seen := make(map[string]struct{}, len(candidates))
	unique := candidates[:0]
	for _, name := range candidates {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}

// FindCandidateFile locates the first matching candidate under dir: exact
// direct children first, then case-insensitive direct children, then a
// lexical recursive walk. Returns "" when nothing matches.
func FindCandidateFile(dir string, candidates []string) (string, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}

	lower := make(map[string]struct{}, len(candidates))
	for _, name := range candidates {
		lower[strings.ToLower(name)] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if _, ok := lower[strings.ToLower(entry.Name())]; ok {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	var found string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := lower[strings.ToLower(d.Name())]; ok {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk %s: %w", dir, err)
	}
	return found, nil
}
