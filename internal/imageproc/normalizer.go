package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"foildb/internal/services"
)

const (
	defaultEdge    = 128
	defaultQuality = 85
)

// Result carries the encoded image and its final dimensions.
type Result struct {
	Data   []byte
	Width  int
	Height int
	Format string
}

// Normalizer converts arbitrary source images into fixed-size opaque JPEGs.
// Normalization is a pure function of the input bytes.
type Normalizer struct {
	edge    int
	quality int
}

// New constructs a normalizer targeting an edge x edge square at the given
// JPEG quality. Out-of-range values fall back to the defaults.
func New(edge, quality int) *Normalizer {
	if edge <= 0 {
		edge = defaultEdge
	}
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}
	return &Normalizer{edge: edge, quality: quality}
}

// Normalize decodes src, applies any embedded orientation correction,
// flattens alpha onto an opaque white background, fills to the square
// target with center cropping, and re-encodes as JPEG.
func (n *Normalizer) Normalize(src []byte) (Result, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, services.Wrap(services.ErrDecode, "normalize", "decode", "Unable to decode source image", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return Result{}, services.Wrap(services.ErrDecode, "normalize", "decode", "Source image has no pixels", nil)
	}

	flattened := flatten(img)
	squared := imaging.Fill(flattened, n.edge, n.edge, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, squared, &jpeg.Options{Quality: n.quality}); err != nil {
		return Result{}, services.Wrap(services.ErrDecode, "normalize", "encode", "Unable to encode normalized image", err)
	}
	return Result{
		Data:   buf.Bytes(),
		Width:  n.edge,
		Height: n.edge,
		Format: "jpg",
	}, nil
}

// flatten composites translucent images onto white. Opaque inputs pass
// through untouched; the JPEG encoder coerces them to three channels.
func flatten(img image.Image) image.Image {
	if opaquer, ok := img.(interface{ Opaque() bool }); ok && opaquer.Opaque() {
		return img
	}
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.OverlayCenter(background, img, 1.0)
}
