// Package media defines the media kinds foildb synchronizes and the file
// naming shared by their row stores.
package media

import "fmt"

// Kind identifies one media row store. Each kind owns a separate database
// file, so synchronization across kinds never contends on shared state.
type Kind string

const (
	KindIcons   Kind = "icons"
	KindBanners Kind = "banners"
)

// Kinds lists every supported media kind in processing order.
func Kinds() []Kind {
	return []Kind{KindIcons, KindBanners}
}

// ParseKind validates a kind name.
func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindIcons:
		return KindIcons, nil
	case KindBanners:
		return KindBanners, nil
	default:
		return "", fmt.Errorf("unknown media kind %q", value)
	}
}

// KindsForMode expands a sync mode selector into concrete kinds.
func KindsForMode(mode string) ([]Kind, error) {
	switch mode {
	case "icons":
		return []Kind{KindIcons}, nil
	case "banners":
		return []Kind{KindBanners}, nil
	case "both":
		return []Kind{KindIcons, KindBanners}, nil
	default:
		return nil, fmt.Errorf("unknown sync mode %q", mode)
	}
}

func (k Kind) String() string {
	return string(k)
}

// StoreFilename returns the SQLite database name for this kind.
func (k Kind) StoreFilename() string {
	switch k {
	case KindBanners:
		return "banner.db"
	default:
		return "icon.db"
	}
}
