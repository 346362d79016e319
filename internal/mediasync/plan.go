package mediasync

import "sort"

// PlanItem is one identifier the run must fetch and store. New distinguishes
// identifiers absent from the store before this run from identifiers whose
// source URL changed.
type PlanItem struct {
	TitleID string
	URL     string
	New     bool
}

// Plan partitions the union of persisted and wanted identifiers for one run.
// Items and Removed are sorted by identifier so execution order is stable
// across runs.
type Plan struct {
	Items     []PlanItem
	Removed   []string
	Unchanged int
}

// BuildPlan compares the persisted identifier→URL map against the wanted map.
// Every identifier in either map lands in exactly one of: Removed (persisted
// but no longer wanted), Unchanged (persisted URL equals wanted URL), or
// Items (new identifier, or URL differs).
func BuildPlan(existing, wanted map[string]string) Plan {
	plan := Plan{}

	for id := range existing {
		if _, ok := wanted[id]; !ok {
			plan.Removed = append(plan.Removed, id)
		}
	}

	for id, url := range wanted {
		prior, ok := existing[id]
		if ok && prior == url {
			plan.Unchanged++
			continue
		}
		plan.Items = append(plan.Items, PlanItem{TitleID: id, URL: url, New: !ok})
	}

	sort.Strings(plan.Removed)
	sort.Slice(plan.Items, func(i, j int) bool { return plan.Items[i].TitleID < plan.Items[j].TitleID })
	return plan
}
