package export_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"foildb/internal/export"
	"foildb/internal/testsupport"
)

func TestTitlesCandidatesForDefaultLocale(t *testing.T) {
	want := []string{
		"titles.US.en.json",
		"titles.us.en.json",
		"title.US.en.json",
		"title.us.en.json",
		"titles.en.json",
		"titles.json",
	}
	got := export.TitlesCandidates("US.en")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected candidates: %v", got)
	}
}

func TestFindCandidateFilePrefersDirectChildren(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "icon.db"), []byte("nested"))
	testsupport.WriteFile(t, filepath.Join(dir, "icon.db"), []byte("direct"))

	found, err := export.FindCandidateFile(dir, export.IconDBCandidates)
	if err != nil {
		t.Fatalf("FindCandidateFile: %v", err)
	}
	if found != filepath.Join(dir, "icon.db") {
		t.Fatalf("expected direct child, got %s", found)
	}
}

func TestFindCandidateFileIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "Icons.DB"), []byte("x"))

	found, err := export.FindCandidateFile(dir, export.IconDBCandidates)
	if err != nil {
		t.Fatalf("FindCandidateFile: %v", err)
	}
	if filepath.Base(found) != "Icons.DB" {
		t.Fatalf("case-insensitive match failed, got %q", found)
	}
}

func TestFindCandidateFileWalksRecursively(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "backup", "2026-07", "icon.db")
	testsupport.WriteFile(t, nested, []byte("x"))

	found, err := export.FindCandidateFile(dir, export.IconDBCandidates)
	if err != nil {
		t.Fatalf("FindCandidateFile: %v", err)
	}
	if found != nested {
		t.Fatalf("expected nested match, got %q", found)
	}
}

func TestFindCandidateFileMiss(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "unrelated.txt"), []byte("x"))

	found, err := export.FindCandidateFile(dir, export.IconDBCandidates)
	if err != nil {
		t.Fatalf("FindCandidateFile: %v", err)
	}
	if found != "" {
		t.Fatalf("expected no match, got %q", found)
	}
}

func TestFindCandidateFileIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "icon.db"), 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := export.FindCandidateFile(dir, export.IconDBCandidates)
	if err != nil {
		t.Fatalf("FindCandidateFile: %v", err)
	}
	if found != "" {
		t.Fatalf("directories must not match, got %q", found)
	}
}
