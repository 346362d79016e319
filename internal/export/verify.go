package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"foildb/internal/fileutil"
	"foildb/internal/pack"
)

// Issue is one discrepancy between a manifest and the files next to it.
type Issue struct {
	Name   string
	Detail string
}

// VerifyManifest recomputes size and SHA-256 for every file the manifest
// references (resolved relative to the manifest's directory) and structurally
// decodes files carrying a known pack magic. Issues are reported per file;
// only an unreadable manifest is an error.
func VerifyManifest(path string) (Manifest, []Issue, error) {
	manifest, err := ReadManifest(path)
	if err != nil {
		return Manifest{}, nil, err
	}

	dir := filepath.Dir(path)
	names := make([]string, 0, len(manifest.Files))
	for name := range manifest.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []Issue
	for _, name := range names {
		entry := manifest.Files[name]
		filePath := filepath.Join(dir, name)

		sum, size, err := fileutil.FileSHA256(filePath)
		if err != nil {
			issues = append(issues, Issue{Name: name, Detail: fmt.Sprintf("unreadable: %v", err)})
			continue
		}
		clean := true
		if size != entry.Size {
			issues = append(issues, Issue{Name: name, Detail: fmt.Sprintf("size %d on disk, manifest records %d", size, entry.Size)})
			clean = false
		}
		if !strings.EqualFold(sum, entry.SHA256) {
			issues = append(issues, Issue{Name: name, Detail: "sha256 mismatch"})
			clean = false
		}
		if !clean {
			continue
		}
		if detail := verifyPackStructure(filePath); detail != "" {
			issues = append(issues, Issue{Name: name, Detail: detail})
		}
	}
	return manifest, issues, nil
}

// verifyPackStructure decodes a referenced file when its magic marks it as a
// pack. Files without a known magic are passed through untouched.
func verifyPackStructure(path string) string {
	magic, err := readMagic(path)
	if err != nil {
		return fmt.Sprintf("read magic: %v", err)
	}
	switch magic {
	case pack.TitleMagic:
		if _, err := pack.ReadTitles(path); err != nil {
			return fmt.Sprintf("invalid title pack: %v", err)
		}
	case pack.IconMagic:
		icons, err := pack.ReadIcons(path)
		if err != nil {
			return fmt.Sprintf("invalid icon pack: %v", err)
		}
		for _, entry := range icons.Entries {
			if _, err := icons.Payload(entry); err != nil {
				return fmt.Sprintf("invalid icon pack: %v", err)
			}
		}
	}
	return ""
}

func readMagic(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	magic := make([]byte, 8)
	if _, err := io.ReadFull(file, magic); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return "", nil
		}
		return "", err
	}
	return string(magic), nil
}
