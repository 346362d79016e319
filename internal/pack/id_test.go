package pack_test

import (
	"testing"

	"foildb/internal/pack"
)

func TestParseTitleID(t *testing.T) {
	cases := []struct {
		raw  string
		want uint64
	}{
		{"0100ABCD00010000", 0x0100ABCD00010000},
		{"0100abcd00010000", 0x0100ABCD00010000},
		{"  0100ABCD00010000  ", 0x0100ABCD00010000},
		{"0x1ab", 0x1ab},
		{"1ab", 0x1ab},
		{"0", 0},
	}
	for _, tc := range cases {
		got, err := pack.ParseTitleID(tc.raw)
		if err != nil {
			t.Fatalf("ParseTitleID(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTitleID(%q) = %x, want %x", tc.raw, got, tc.want)
		}
	}
}

func TestParseTitleIDRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "not-hex", "01007g0000000000", "10000000000000000"} {
		if _, err := pack.ParseTitleID(raw); err == nil {
			t.Fatalf("ParseTitleID(%q) should fail", raw)
		}
	}
}

func TestFormatTitleIDRoundTrip(t *testing.T) {
	formatted := pack.FormatTitleID(0x0100ABCD00010000)
	if formatted != "0100abcd00010000" {
		t.Fatalf("unexpected canonical form: %s", formatted)
	}
	parsed, err := pack.ParseTitleID(formatted)
	if err != nil || parsed != 0x0100ABCD00010000 {
		t.Fatalf("round trip failed: %x (%v)", parsed, err)
	}
}

func TestNormalizeExt(t *testing.T) {
	cases := map[string]string{
		"jpg":  "jpg",
		"jpeg": "jpg",
		"JPEG": "jpg",
		"png":  "png",
		"webp": "webp",
		"bmp":  "bmp",
		"tif":  "tif",
		"tiff": "tiff",
		"gif":  "bin",
		"":     "bin",
	}
	for raw, want := range cases {
		if got := pack.NormalizeExt(raw); got != want {
			t.Fatalf("NormalizeExt(%q) = %q, want %q", raw, got, want)
		}
	}
}
