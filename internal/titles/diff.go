package titles

// DiffCounts aggregates a snapshot comparison. The three change flags are
// evaluated independently for every title present on both sides: a title can
// count toward metadata and icon changes at once, and counts as unchanged only
// when none of the three fired.
type DiffCounts struct {
	Added           int `json:"added"`
	Removed         int `json:"removed"`
	MetadataChanged int `json:"metadata_changed"`
	IconURLChanged  int `json:"icon_url_changed"`
	BannerChanged   int `json:"banner_url_changed"`
	Unchanged       int `json:"unchanged"`
	Common          int `json:"common"`
	CurrentTotal    int `json:"current_total"`
}

// Diff compares two snapshots. Previous may be empty; neither side is
// mutated.
func Diff(previous, current *Snapshot) DiffCounts {
	if previous == nil {
		previous = EmptySnapshot()
	}
	if current == nil {
		current = EmptySnapshot()
	}

	counts := DiffCounts{CurrentTotal: len(current.Records)}

	for id, record := range current.Records {
		prior, ok := previous.Records[id]
		if !ok {
			counts.Added++
			continue
		}
		counts.Common++
		metadata := metadataDiffers(prior, record)
		icon := prior.IconURL != record.IconURL
		banner := prior.BannerURL != record.BannerURL
		if metadata {
			counts.MetadataChanged++
		}
		if icon {
			counts.IconURLChanged++
		}
		if banner {
			counts.BannerChanged++
		}
		if !metadata && !icon && !banner {
			counts.Unchanged++
		}
	}

	for id := range previous.Records {
		if _, ok := current.Records[id]; !ok {
			counts.Removed++
		}
	}

	return counts
}

func metadataDiffers(a, b TitleRecord) bool {
	if a.Name != b.Name || a.Publisher != b.Publisher || a.Intro != b.Intro || a.Description != b.Description {
		return true
	}
	return !int64PtrEqual(a.Size, b.Size) ||
		!int64PtrEqual(a.Version, b.Version) ||
		!int64PtrEqual(a.ReleaseDate, b.ReleaseDate) ||
		!boolPtrEqual(a.IsDemo, b.IsDemo)
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
