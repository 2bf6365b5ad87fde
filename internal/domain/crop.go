package domain

import "errors"

// CropUnit distinguishes percentage-based regions (as drawn in a UI over a
// scaled-down preview) from regions already expressed in source pixels.
type CropUnit string

const (
	UnitPercent CropUnit = "%"
	UnitPixel   CropUnit = "px"
)

var (
	ErrEmptyCrop        = errors.New("crop region has no area")
	ErrCropOutOfBounds  = errors.New("crop region exceeds image bounds")
	ErrUnknownCropUnit  = errors.New("unknown crop unit")
	ErrNoImageDimension = errors.New("image dimensions not known")
)

// CropRegion is a user-selected rectangular sub-area of an image.
type CropRegion struct {
	Unit   CropUnit `json:"unit"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

// Empty reports whether the region has zero area.
func (r CropRegion) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ResolveInitialCrop computes the default region offered before the user
// adjusts anything: centered, sized to 90% of whichever dimension limits it,
// and matching the aspect ratio when one is supplied (aspect <= 0 means
// free-form). The bool result is false when dimensions are not yet known,
// in which case no region is offered at all.
func ResolveInitialCrop(naturalW, naturalH int, aspect float64) (CropRegion, bool) {
	if naturalW <= 0 || naturalH <= 0 {
		return CropRegion{}, false
	}

	w := 0.9 * float64(naturalW)
	h := 0.9 * float64(naturalH)
	if aspect > 0 {
		// Shrink the non-limiting dimension to honor the ratio.
		if w/h > aspect {
			w = h * aspect
		} else {
			h = w / aspect
		}
	}

	region := CropRegion{
		Unit:   UnitPixel,
		X:      (float64(naturalW) - w) / 2,
		Y:      (float64(naturalH) - h) / 2,
		Width:  w,
		Height: h,
	}
	return region.Clamp(naturalW, naturalH), true
}

// Clamp constrains the region so it never exceeds the image bounds.
// It is applied on every drag/resize recomputation.
func (r CropRegion) Clamp(naturalW, naturalH int) CropRegion {
	maxW, maxH := float64(naturalW), float64(naturalH)

	if r.Width > maxW {
		r.Width = maxW
	}
	if r.Height > maxH {
		r.Height = maxH
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if r.X+r.Width > maxW {
		r.X = maxW - r.Width
	}
	if r.Y+r.Height > maxH {
		r.Y = maxH - r.Height
	}
	return r
}

// ToPixels converts the region to natural-pixel units. Percentage regions are
// resolved against the natural dimensions; pixel regions are assumed to be in
// displayed coordinates and corrected by scaleX = naturalW/displayW (and the
// Y equivalent), since the crop UI operates on a possibly scaled rendering of
// the source image. The result is clamped to the image bounds.
func (r CropRegion) ToPixels(displayW, displayH, naturalW, naturalH int) (CropRegion, error) {
	if naturalW <= 0 || naturalH <= 0 {
		return CropRegion{}, ErrNoImageDimension
	}

	var out CropRegion
	out.Unit = UnitPixel

	switch r.Unit {
	case UnitPercent:
		out.X = r.X / 100 * float64(naturalW)
		out.Y = r.Y / 100 * float64(naturalH)
		out.Width = r.Width / 100 * float64(naturalW)
		out.Height = r.Height / 100 * float64(naturalH)
	case UnitPixel:
		scaleX, scaleY := 1.0, 1.0
		if displayW > 0 {
			scaleX = float64(naturalW) / float64(displayW)
		}
		if displayH > 0 {
			scaleY = float64(naturalH) / float64(displayH)
		}
		out.X = r.X * scaleX
		out.Y = r.Y * scaleY
		out.Width = r.Width * scaleX
		out.Height = r.Height * scaleY
	default:
		return CropRegion{}, ErrUnknownCropUnit
	}

	return out.Clamp(naturalW, naturalH), nil
}
