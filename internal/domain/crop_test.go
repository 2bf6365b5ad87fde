package domain

import (
	"math"
	"testing"
)

func TestResolveInitialCrop(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		aspect   float64
		ok       bool
		wantW    float64
		wantH    float64
		centered bool
	}{
		{
			name: "free-form landscape", w: 1000, h: 500, aspect: 0,
			ok: true, wantW: 900, wantH: 450, centered: true,
		},
		{
			name: "square aspect on landscape limits by height", w: 1000, h: 500, aspect: 1,
			ok: true, wantW: 450, wantH: 450, centered: true,
		},
		{
			name: "wide aspect on portrait limits by width", w: 400, h: 1000, aspect: 2,
			ok: true, wantW: 360, wantH: 180, centered: true,
		},
		{
			name: "zero width refuses region", w: 0, h: 500, aspect: 1, ok: false,
		},
		{
			name: "negative height refuses region", w: 500, h: -1, aspect: 0, ok: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, ok := ResolveInitialCrop(tt.w, tt.h, tt.aspect)
			if ok != tt.ok {
				t.Fatalf("ResolveInitialCrop() ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if !approx(region.Width, tt.wantW) || !approx(region.Height, tt.wantH) {
				t.Errorf("size = %.1fx%.1f, want %.1fx%.1f", region.Width, region.Height, tt.wantW, tt.wantH)
			}
			if tt.centered {
				if !approx(region.X*2+region.Width, float64(tt.w)) || !approx(region.Y*2+region.Height, float64(tt.h)) {
					t.Errorf("region not centered: %+v", region)
				}
			}
			assertWithinBounds(t, region, tt.w, tt.h)
		})
	}
}

// The resolved region must stay inside the image for arbitrary dimensions
// and aspect ratios.
func TestResolveInitialCropBounds(t *testing.T) {
	dims := []struct{ w, h int }{
		{1, 1}, {1, 10000}, {10000, 1}, {640, 480}, {3024, 4032}, {1920, 1080},
	}
	aspects := []float64{0, 0.1, 1, 4.0 / 3.0, 16.0 / 9.0, 50}

	for _, d := range dims {
		for _, a := range aspects {
			region, ok := ResolveInitialCrop(d.w, d.h, a)
			if !ok {
				t.Fatalf("ResolveInitialCrop(%d, %d, %f) refused valid dimensions", d.w, d.h, a)
			}
			if region.Empty() {
				t.Errorf("ResolveInitialCrop(%d, %d, %f) produced empty region", d.w, d.h, a)
			}
			assertWithinBounds(t, region, d.w, d.h)
		}
	}
}

func TestToPixelsPercent(t *testing.T) {
	region := CropRegion{Unit: UnitPercent, X: 10, Y: 20, Width: 50, Height: 50}

	px, err := region.ToPixels(0, 0, 800, 600)
	if err != nil {
		t.Fatalf("ToPixels() error = %v", err)
	}
	want := CropRegion{Unit: UnitPixel, X: 80, Y: 120, Width: 400, Height: 300}
	if !approx(px.X, want.X) || !approx(px.Y, want.Y) || !approx(px.Width, want.Width) || !approx(px.Height, want.Height) {
		t.Errorf("ToPixels() = %+v, want %+v", px, want)
	}
}

func TestToPixelsDisplayScale(t *testing.T) {
	// UI showed the 2000x1000 source at 500x250, user dragged 100,50 200x100.
	region := CropRegion{Unit: UnitPixel, X: 100, Y: 50, Width: 200, Height: 100}

	px, err := region.ToPixels(500, 250, 2000, 1000)
	if err != nil {
		t.Fatalf("ToPixels() error = %v", err)
	}
	if !approx(px.X, 400) || !approx(px.Y, 200) || !approx(px.Width, 800) || !approx(px.Height, 400) {
		t.Errorf("ToPixels() = %+v, want 400,200 800x400", px)
	}
}

func TestToPixelsClampsOverflow(t *testing.T) {
	region := CropRegion{Unit: UnitPercent, X: 80, Y: 80, Width: 40, Height: 40}

	px, err := region.ToPixels(0, 0, 100, 100)
	if err != nil {
		t.Fatalf("ToPixels() error = %v", err)
	}
	assertWithinBounds(t, px, 100, 100)
}

func TestToPixelsErrors(t *testing.T) {
	region := CropRegion{Unit: UnitPercent, X: 0, Y: 0, Width: 50, Height: 50}
	if _, err := region.ToPixels(0, 0, 0, 100); err != ErrNoImageDimension {
		t.Errorf("zero natural width: err = %v, want ErrNoImageDimension", err)
	}

	region.Unit = CropUnit("em")
	if _, err := region.ToPixels(0, 0, 100, 100); err != ErrUnknownCropUnit {
		t.Errorf("bad unit: err = %v, want ErrUnknownCropUnit", err)
	}
}

func assertWithinBounds(t *testing.T, r CropRegion, w, h int) {
	t.Helper()
	if r.X < 0 || r.Y < 0 {
		t.Errorf("region origin negative: %+v", r)
	}
	if r.X+r.Width > float64(w)+1e-9 || r.Y+r.Height > float64(h)+1e-9 {
		t.Errorf("region exceeds %dx%d bounds: %+v", w, h, r)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
