package titles_test

import (
	"testing"

	"foildb/internal/titles"
)

func snapshotFrom(records map[string]titles.TitleRecord) *titles.Snapshot {
	return &titles.Snapshot{Records: records}
}

func TestDiffPartitionAccountsForEveryTitle(t *testing.T) {
	size := int64(10)
	previous := snapshotFrom(map[string]titles.TitleRecord{
		"A": {ID: "A", Name: "Alpha"},
		"B": {ID: "B", Name: "Beta", Size: &size},
		"C": {ID: "C", Name: "Gamma"},
	})
	current := snapshotFrom(map[string]titles.TitleRecord{
		"A": {ID: "A", Name: "Alpha"},
		"B": {ID: "B", Name: "Beta2", Size: &size},
		"D": {ID: "D", Name: "Delta"},
	})

	counts := titles.Diff(previous, current)

	if counts.Added != 1 || counts.Removed != 1 {
		t.Fatalf("unexpected added/removed: %+v", counts)
	}
	if counts.Common != 2 {
		t.Fatalf("unexpected common count: %+v", counts)
	}
	// Union partition: every id lands in added, removed, or common exactly once.
	union := 4
	if counts.Added+counts.Removed+counts.Common != union {
		t.Fatalf("partition does not cover union: %+v", counts)
	}
	if counts.MetadataChanged != 1 || counts.Unchanged != 1 {
		t.Fatalf("unexpected change classification: %+v", counts)
	}
}

func TestDiffNameChangeScenario(t *testing.T) {
	previous := snapshotFrom(map[string]titles.TitleRecord{"A": {ID: "A", Name: "X"}})
	current := snapshotFrom(map[string]titles.TitleRecord{"A": {ID: "A", Name: "Y"}})

	counts := titles.Diff(previous, current)
	if counts.MetadataChanged != 1 {
		t.Fatalf("expected metadata change, got %+v", counts)
	}
	if counts.Unchanged != 0 {
		t.Fatalf("changed title must not count unchanged: %+v", counts)
	}
}

func TestDiffFlagsAreIndependent(t *testing.T) {
	previous := snapshotFrom(map[string]titles.TitleRecord{
		"A": {ID: "A", Name: "Old", IconURL: "https://cdn/icon1", BannerURL: "https://cdn/banner"},
	})
	current := snapshotFrom(map[string]titles.TitleRecord{
		"A": {ID: "A", Name: "New", IconURL: "https://cdn/icon2", BannerURL: "https://cdn/banner"},
	})

	counts := titles.Diff(previous, current)
	if counts.MetadataChanged != 1 || counts.IconURLChanged != 1 {
		t.Fatalf("expected both flags to fire: %+v", counts)
	}
	if counts.BannerChanged != 0 {
		t.Fatalf("banner flag should not fire: %+v", counts)
	}
	if counts.Unchanged != 0 {
		t.Fatalf("flagged title counted unchanged: %+v", counts)
	}
}

func TestDiffAbsentNumericDiffersFromZero(t *testing.T) {
	zero := int64(0)
	previous := snapshotFrom(map[string]titles.TitleRecord{"A": {ID: "A", Name: "Same"}})
	current := snapshotFrom(map[string]titles.TitleRecord{"A": {ID: "A", Name: "Same", Size: &zero}})

	counts := titles.Diff(previous, current)
	if counts.MetadataChanged != 1 {
		t.Fatalf("absent vs zero size must count as changed: %+v", counts)
	}
}

func TestDiffEmptyPrevious(t *testing.T) {
	current := snapshotFrom(map[string]titles.TitleRecord{
		"A": {ID: "A", Name: "Alpha"},
		"B": {ID: "B", Name: "Beta"},
	})

	counts := titles.Diff(nil, current)
	if counts.Added != 2 || counts.Removed != 0 || counts.Common != 0 {
		t.Fatalf("unexpected counts for empty previous: %+v", counts)
	}
	if counts.CurrentTotal != 2 {
		t.Fatalf("unexpected current total: %+v", counts)
	}
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	demo := true
	records := map[string]titles.TitleRecord{
		"A": {ID: "A", Name: "Alpha", IsDemo: &demo, IconURL: "https://cdn/a"},
	}
	counts := titles.Diff(snapshotFrom(records), snapshotFrom(records))
	if counts.Unchanged != 1 || counts.MetadataChanged != 0 || counts.IconURLChanged != 0 || counts.BannerChanged != 0 {
		t.Fatalf("identical snapshots should be unchanged: %+v", counts)
	}
}
