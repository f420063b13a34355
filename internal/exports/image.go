package exports

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// pixelsToPoints converts image pixels to points assuming 96 DPI artwork.
const pixelsToPoints = 72.0 / 96.0

// Image is a cover image re-encoded as JPEG for embedding.
type Image struct {
	Data   []byte
	Width  float64
	Height float64
}

// LoadImage reads a JPEG, PNG or WebP file and prepares it for embedding.
func LoadImage(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return PrepareImage(raw)
}

// PrepareImage decodes raw image bytes and re-encodes them as JPEG, which
// gopdf embeds without further conversion.
func PrepareImage(raw []byte) (*Image, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", width, height)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to convert %s image to JPEG: %w", format, err)
	}

	return &Image{
		Data:   buf.Bytes(),
		Width:  float64(width) * pixelsToPoints,
		Height: float64(height) * pixelsToPoints,
	}, nil
}
