package cropper

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

// createTestImage creates a grey image with a white square at (40,40)-(60,60)
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= 40 && x < 60 && y >= 40 && y < 60 {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{64, 64, 64, 255})
			}
		}
	}
	return img
}

func object(x, y, w, h int, names ...string) types.DetectedObject {
	obj := types.DetectedObject{BoundingBox: types.BoundingBox{X: x, Y: y, Width: w, Height: h}}
	for _, n := range names {
		obj.Tags = append(obj.Tags, types.Tag{Name: n, Confidence: 0.5})
	}
	return obj
}

func TestNew(t *testing.T) {
	cropper := New()
	if cropper == nil {
		t.Fatal("New() returned nil")
	}
	if cropper.config.PaddingRatio != 0.1 {
		t.Errorf("Expected default padding 0.1, got %f", cropper.config.PaddingRatio)
	}
	if cropper.config.AspectRatio != nil {
		t.Error("Expected no aspect ratio by default")
	}
}

func TestNewWithConfigClampsPadding(t *testing.T) {
	cropper := NewWithConfig(CropConfig{PaddingRatio: -1})
	if cropper.config.PaddingRatio != 0 {
		t.Errorf("Expected negative padding to become 0, got %f", cropper.config.PaddingRatio)
	}
}

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantNil bool
		wantErr bool
	}{
		{in: "", wantNil: true},
		{in: "none", wantNil: true},
		{in: "square", want: 1},
		{in: "Widescreen", want: 16.0 / 9.0},
		{in: "3:2", want: 1.5},
		{in: "0:2", wantErr: true},
		{in: "wide", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAspectRatio(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAspectRatio(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAspectRatio(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if tt.wantNil {
			if got != nil {
				t.Errorf("ParseAspectRatio(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got.Ratio() != tt.want {
			t.Errorf("ParseAspectRatio(%q) ratio = %f, want %f", tt.in, got.Ratio(), tt.want)
		}
	}
}

func TestRegionPadding(t *testing.T) {
	cropper := NewWithConfig(CropConfig{PaddingRatio: 0.5})
	got := cropper.Region(image.Rect(0, 0, 100, 100), types.BoundingBox{X: 40, Y: 40, Width: 20, Height: 20})

	if want := image.Rect(30, 30, 70, 70); got != want {
		t.Errorf("Region = %v, want %v", got, want)
	}
}

func TestRegionAspectRatio(t *testing.T) {
	cropper := NewWithConfig(CropConfig{AspectRatio: &Landscape})
	got := cropper.Region(image.Rect(0, 0, 200, 200), types.BoundingBox{X: 80, Y: 80, Width: 30, Height: 30})

	if got.Dx() != 40 || got.Dy() != 30 {
		t.Errorf("Expected 40x30 crop, got %dx%d", got.Dx(), got.Dy())
	}
	if got.Min.Y != 80 {
		t.Errorf("Expected height to be kept at y=80, got %d", got.Min.Y)
	}
}

func TestRegionStaysInsideImage(t *testing.T) {
	cropper := NewWithConfig(CropConfig{PaddingRatio: 0.5, AspectRatio: &Widescreen})
	bounds := image.Rect(0, 0, 100, 50)

	for _, box := range []types.BoundingBox{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 90, Y: 40, Width: 10, Height: 10},
		{X: 0, Y: 0, Width: 100, Height: 50},
	} {
		got := cropper.Region(bounds, box)
		if !got.In(bounds) {
			t.Errorf("Region(%v) = %v escapes %v", box, got, bounds)
		}
		if got.Empty() {
			t.Errorf("Region(%v) is empty", box)
		}
	}
}

func TestCropObjects(t *testing.T) {
	img := createTestImage(100, 100)
	cropper := NewWithConfig(CropConfig{})

	results, err := cropper.CropObjects(img, []types.DetectedObject{
		object(40, 40, 20, 20, "square", "shape"),
		object(0, 0, 10, 5, "corner"),
	})
	if err != nil {
		t.Fatalf("CropObjects failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 crops, got %d", len(results))
	}

	first := results[0]
	if first.Label != "square" {
		t.Errorf("Expected primary tag as label, got %q", first.Label)
	}
	if b := first.Image.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Errorf("Expected 20x20 crop, got %dx%d", b.Dx(), b.Dy())
	}
	if c := first.Image.NRGBAAt(10, 10); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("Expected crop to contain the white square, got %v", c)
	}
	if c := results[1].Image.NRGBAAt(0, 0); c != (color.NRGBA{64, 64, 64, 255}) {
		t.Errorf("Expected background pixel in corner crop, got %v", c)
	}
}

func TestCropObjectsSkipsTinyBoxes(t *testing.T) {
	results, err := New().CropObjects(createTestImage(100, 100), []types.DetectedObject{
		object(10, 10, 3, 30, "sliver"),
	})
	if err != nil {
		t.Fatalf("CropObjects failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected tiny box to be skipped, got %d crops", len(results))
	}
}

func TestCropObjectsUntagged(t *testing.T) {
	_, err := New().CropObjects(createTestImage(100, 100), []types.DetectedObject{
		object(40, 40, 20, 20, "ok"),
		object(10, 10, 20, 20),
	})
	if !errors.Is(err, types.ErrUntaggedObject) {
		t.Errorf("Expected ErrUntaggedObject, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		i     int
		label string
		ext   string
		want  string
	}{
		{0, "car", "jpg", "01-car.jpg"},
		{9, "Traffic light", ".png", "10-traffic-light.png"},
		{2, "  ", "jpg", "03-object.jpg"},
		{3, "../etc/passwd", "jpg", "04-etcpasswd.jpg"},
	}

	for _, tt := range tests {
		if got := FileName(tt.i, tt.label, tt.ext); got != tt.want {
			t.Errorf("FileName(%d, %q, %q) = %q, want %q", tt.i, tt.label, tt.ext, got, tt.want)
		}
	}
}
