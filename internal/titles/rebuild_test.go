package titles_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"foildb/internal/services"
	"foildb/internal/titles"
)

type rebuildPaths struct {
	generated string
	feed      string
	marker    string
}

func newRebuildPaths(t *testing.T) rebuildPaths {
	t.Helper()
	dir := t.TempDir()
	return rebuildPaths{
		generated: filepath.Join(dir, "titles.US.en.json"),
		feed:      filepath.Join(dir, "titledb", "US.en.json"),
		marker:    filepath.Join(dir, "titles.US.en.src.sha256"),
	}
}

func writeFeed(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDecideRebuildMissingGenerated(t *testing.T) {
	paths := newRebuildPaths(t)
	writeFeed(t, paths.feed, `{}`)

	decision, err := titles.DecideRebuild(paths.generated, paths.feed, paths.marker, false)
	if err != nil {
		t.Fatalf("DecideRebuild returned error: %v", err)
	}
	if !decision.Rebuild || decision.Reason != titles.ReasonMissingGenerated {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	if decision.CurrentHash == "" {
		t.Fatal("expected current hash to be recorded")
	}
	if decision.PreviousHash != "" {
		t.Fatalf("expected empty previous hash, got %q", decision.PreviousHash)
	}
}

func TestDecideRebuildForcedRefresh(t *testing.T) {
	paths := newRebuildPaths(t)
	writeFeed(t, paths.feed, `{}`)
	if err := os.WriteFile(paths.generated, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	decision, err := titles.DecideRebuild(paths.generated, paths.feed, paths.marker, true)
	if err != nil {
		t.Fatalf("DecideRebuild returned error: %v", err)
	}
	if !decision.Rebuild || decision.Reason != titles.ReasonForcedRefresh {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestDecideRebuildUpstreamChanged(t *testing.T) {
	paths := newRebuildPaths(t)
	writeFeed(t, paths.feed, `{"new": true}`)
	if err := os.WriteFile(paths.generated, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := titles.WriteMarker(paths.marker, "stale-hash"); err != nil {
		t.Fatal(err)
	}

	decision, err := titles.DecideRebuild(paths.generated, paths.feed, paths.marker, false)
	if err != nil {
		t.Fatalf("DecideRebuild returned error: %v", err)
	}
	if !decision.Rebuild || decision.Reason != titles.ReasonUpstreamChanged {
		t.Fatalf("unexpected decision: %+v", decision)
	}
	if decision.PreviousHash != "stale-hash" {
		t.Fatalf("expected marker hash, got %q", decision.PreviousHash)
	}
}

func TestDecideRebuildUpToDate(t *testing.T) {
	paths := newRebuildPaths(t)
	writeFeed(t, paths.feed, `{"stable": true}`)
	if err := os.WriteFile(paths.generated, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := titles.DecideRebuild(paths.generated, paths.feed, paths.marker, false)
	if err != nil {
		t.Fatalf("DecideRebuild returned error: %v", err)
	}
	if err := titles.WriteMarker(paths.marker, first.CurrentHash); err != nil {
		t.Fatal(err)
	}

	second, err := titles.DecideRebuild(paths.generated, paths.feed, paths.marker, false)
	if err != nil {
		t.Fatalf("DecideRebuild returned error: %v", err)
	}
	if second.Rebuild || second.Reason != titles.ReasonUpToDate {
		t.Fatalf("unexpected decision: %+v", second)
	}
	if second.PreviousHash != second.CurrentHash {
		t.Fatalf("expected hashes to match: %+v", second)
	}
}

func TestDecideRebuildMissingFeedIsStructural(t *testing.T) {
	paths := newRebuildPaths(t)

	_, err := titles.DecideRebuild(paths.generated, paths.feed, paths.marker, false)
	if err == nil {
		t.Fatal("expected error for missing feed")
	}
	if !errors.Is(err, services.ErrSource) {
		t.Fatalf("expected source marker, got %v", err)
	}
}

func TestMarkerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marker")

	if hash, err := titles.ReadMarker(path); err != nil || hash != "" {
		t.Fatalf("expected empty marker before write: %q %v", hash, err)
	}
	if err := titles.WriteMarker(path, "abc123"); err != nil {
		t.Fatal(err)
	}
	hash, err := titles.ReadMarker(path)
	if err != nil {
		t.Fatal(err)
	}
	if hash != "abc123" {
		t.Fatalf("unexpected marker contents: %q", hash)
	}
}
