package service

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/tastegent/tastegent/internal/domain"
)

const (
	jpegQuality = 85

	// Stored images are bounded to this box, preserving aspect ratio.
	maxStoredWidth  = 1920
	maxStoredHeight = 1080
)

// Rasterizer renders crop regions to encoded JPEG bytes and normalizes
// arbitrary uploads into the stored format.
type Rasterizer struct{}

func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// Render crops the image to the given region and encodes the result as JPEG.
// Percentage regions are resolved against the image's own dimensions first.
// A region with no remaining area fails; callers fall back to the uncropped
// original bytes.
func (r *Rasterizer) Render(img image.Image, region domain.CropRegion) ([]byte, error) {
	bounds := img.Bounds()

	px, err := region.ToPixels(0, 0, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	if px.Empty() {
		return nil, domain.ErrEmptyCrop
	}

	rect := image.Rect(
		bounds.Min.X+int(math.Round(px.X)),
		bounds.Min.Y+int(math.Round(px.Y)),
		bounds.Min.X+int(math.Round(px.X+px.Width)),
		bounds.Min.Y+int(math.Round(px.Y+px.Height)),
	)
	if rect.Empty() {
		return nil, domain.ErrEmptyCrop
	}

	cropped := imaging.Crop(img, rect)
	if cropped.Bounds().Empty() {
		return nil, domain.ErrEmptyCrop
	}

	return encodeJPEG(cropped)
}

// Normalize decodes an uploaded payload, bounds it within the stored
// dimensions and re-encodes as JPEG. Alpha channels flatten to black,
// matching the previous behavior of converting to RGB before saving.
func (r *Rasterizer) Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotAnImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxStoredWidth || bounds.Dy() > maxStoredHeight {
		img = imaging.Fit(img, maxStoredWidth, maxStoredHeight, imaging.Lanczos)
	}

	return encodeJPEG(img)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}
	return buf.Bytes(), nil
}

// detectImageType detects the MIME type of an image from its header bytes
func detectImageType(data []byte) string {
	if len(data) < 12 {
		return ""
	}
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 {
		return "image/gif"
	}
	if data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return ""
}
