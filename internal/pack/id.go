package pack

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTitleID converts a catalog identifier into its numeric pack form:
// case-insensitive hex, optional 0x prefix, left-padded to 16 digits.
func ParseTitleID(raw string) (uint64, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "0x")
	if len(value) < 16 {
		value = strings.Repeat("0", 16-len(value)) + value
	}
	id, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("title id %q is not 64-bit hex: %w", raw, err)
	}
	return id, nil
}

// FormatTitleID renders a numeric identifier in the canonical 16-digit form.
func FormatTitleID(id uint64) string {
	return fmt.Sprintf("%016x", id)
}

// NormalizeExt maps a stored format tag onto the extension recorded in icon
// pack entries. Unrecognized tags collapse to "bin".
func NormalizeExt(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "jpg", "jpeg":
		return "jpg"
	case "png", "webp", "bmp", "tif", "tiff":
		return value
	default:
		return "bin"
	}
}
