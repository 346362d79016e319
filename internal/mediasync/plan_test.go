package mediasync_test

import (
	"sort"
	"testing"

	"foildb/internal/mediasync"
)

func TestBuildPlanScenario(t *testing.T) {
	existing := map[string]string{"A": "u1", "C": "u3"}
	wanted := map[string]string{"A": "u1", "B": "u2"}

	plan := mediasync.BuildPlan(existing, wanted)

	if plan.Unchanged != 1 {
		t.Fatalf("expected A unchanged, got %d", plan.Unchanged)
	}
	if len(plan.Removed) != 1 || plan.Removed[0] != "C" {
		t.Fatalf("expected C removed, got %v", plan.Removed)
	}
	if len(plan.Items) != 1 {
		t.Fatalf("expected one item to process, got %v", plan.Items)
	}
	item := plan.Items[0]
	if item.TitleID != "B" || item.URL != "u2" || !item.New {
		t.Fatalf("expected B as a new item, got %+v", item)
	}
}

func TestBuildPlanLabelsURLChangeAsUpdated(t *testing.T) {
	existing := map[string]string{"A": "u1"}
	wanted := map[string]string{"A": "u2"}

	plan := mediasync.BuildPlan(existing, wanted)

	if len(plan.Items) != 1 {
		t.Fatalf("expected one item, got %v", plan.Items)
	}
	if plan.Items[0].New {
		t.Fatalf("URL change must label the item updated, got %+v", plan.Items[0])
	}
	if plan.Unchanged != 0 || len(plan.Removed) != 0 {
		t.Fatalf("unexpected partition: %+v", plan)
	}
}

func TestBuildPlanPartitionsUnion(t *testing.T) {
	cases := []struct {
		name     string
		existing map[string]string
		wanted   map[string]string
	}{
		{"both empty", nil, nil},
		{"fresh store", nil, map[string]string{"A": "u1", "B": "u2"}},
		{"emptied catalog", map[string]string{"A": "u1", "B": "u2"}, nil},
		{"mixed", map[string]string{"A": "u1", "B": "u2", "C": "u3"}, map[string]string{"B": "u2", "C": "u9", "D": "u4"}},
		{"all unchanged", map[string]string{"A": "u1", "B": "u2"}, map[string]string{"A": "u1", "B": "u2"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := mediasync.BuildPlan(tc.existing, tc.wanted)

			union := map[string]struct{}{}
			for id := range tc.existing {
				union[id] = struct{}{}
			}
			for id := range tc.wanted {
				union[id] = struct{}{}
			}

			total := len(plan.Removed) + plan.Unchanged + len(plan.Items)
			if total != len(union) {
				t.Fatalf("partition does not cover the union: %d parts for %d identifiers", total, len(union))
			}

			seen := map[string]struct{}{}
			for _, id := range plan.Removed {
				if _, dup := seen[id]; dup {
					t.Fatalf("identifier %s appears in two partitions", id)
				}
				seen[id] = struct{}{}
			}
			for _, item := range plan.Items {
				if _, dup := seen[item.TitleID]; dup {
					t.Fatalf("identifier %s appears in two partitions", item.TitleID)
				}
				seen[item.TitleID] = struct{}{}
			}
		})
	}
}

func TestBuildPlanOrdersDeterministically(t *testing.T) {
	existing := map[string]string{"Z": "u1", "M": "u2", "A": "u3"}
	wanted := map[string]string{"Q": "n1", "B": "n2", "K": "n3"}

	plan := mediasync.BuildPlan(existing, wanted)

	if !sort.StringsAreSorted(plan.Removed) {
		t.Fatalf("removed identifiers not sorted: %v", plan.Removed)
	}
	ids := make([]string, 0, len(plan.Items))
	for _, item := range plan.Items {
		ids = append(ids, item.TitleID)
	}
	if !sort.StringsAreSorted(ids) {
		t.Fatalf("plan items not sorted: %v", ids)
	}
}
