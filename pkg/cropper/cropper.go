package cropper

import (
	"fmt"
	"image"
	"math"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

// SmartCropper cuts detected objects out of an image
type SmartCropper struct {
	config CropConfig
}

// CropConfig holds configuration for object cropping
type CropConfig struct {
	// PaddingRatio grows each box by this share of its size on every side
	PaddingRatio float64
	// AspectRatio expands every crop to this shape when set
	AspectRatio *AspectRatio
	// MinSize skips objects whose box is smaller than this on either side
	MinSize int
}

// AspectRatio represents common aspect ratios
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Ratio returns width divided by height
func (a AspectRatio) Ratio() float64 {
	return float64(a.Width) / float64(a.Height)
}

// Common aspect ratios
var (
	Square     = AspectRatio{1, 1, "square"}
	Portrait   = AspectRatio{3, 4, "portrait"}
	Landscape  = AspectRatio{4, 3, "landscape"}
	Widescreen = AspectRatio{16, 9, "widescreen"}
)

// CommonAspectRatios returns a list of commonly used aspect ratios
func CommonAspectRatios() []AspectRatio {
	return []AspectRatio{Square, Portrait, Landscape, Widescreen}
}

// ParseAspectRatio accepts a ratio name or "W:H"
func ParseAspectRatio(s string) (*AspectRatio, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return nil, nil
	}
	for _, r := range CommonAspectRatios() {
		if r.Name == s {
			r := r
			return &r, nil
		}
	}
	var w, h int
	if _, err := fmt.Sscanf(s, "%d:%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid aspect ratio %q", s)
	}
	return &AspectRatio{Width: w, Height: h, Name: s}, nil
}

// New creates a new SmartCropper with default configuration
func New() *SmartCropper {
	return &SmartCropper{
		config: CropConfig{
			PaddingRatio: 0.1,
			MinSize:      8,
		},
	}
}

// NewWithConfig creates a new SmartCropper with custom configuration
func NewWithConfig(config CropConfig) *SmartCropper {
	if config.PaddingRatio < 0 {
		config.PaddingRatio = 0
	}
	return &SmartCropper{config: config}
}

// CropResult is one object cut out of the source image
type CropResult struct {
	Image      *image.NRGBA
	Region     image.Rectangle
	Label      string
	Confidence float64
}

// CropObjects returns one crop per object in detection order. Objects below
// MinSize are skipped. An untagged object fails the whole call.
func (c *SmartCropper) CropObjects(img image.Image, objects []types.DetectedObject) ([]CropResult, error) {
	for _, obj := range objects {
		if _, ok := obj.Primary(); !ok {
			return nil, types.ErrUntaggedObject
		}
	}

	bounds := img.Bounds()
	var results []CropResult
	for _, obj := range objects {
		if obj.BoundingBox.Width < c.config.MinSize || obj.BoundingBox.Height < c.config.MinSize {
			continue
		}
		region := c.Region(bounds, obj.BoundingBox)
		if region.Empty() {
			continue
		}
		tag, _ := obj.Primary()
		results = append(results, CropResult{
			Image:      imaging.Crop(img, region),
			Region:     region,
			Label:      tag.Name,
			Confidence: tag.Confidence,
		})
	}
	return results, nil
}

// Region computes the crop rectangle for box inside bounds: padded, widened
// to the configured aspect ratio, then shifted to stay inside the image.
func (c *SmartCropper) Region(bounds image.Rectangle, box types.BoundingBox) image.Rectangle {
	padX := int(math.Round(float64(box.Width) * c.config.PaddingRatio))
	padY := int(math.Round(float64(box.Height) * c.config.PaddingRatio))

	x, y := box.X+bounds.Min.X-padX, box.Y+bounds.Min.Y-padY
	w, h := box.Width+2*padX, box.Height+2*padY

	if c.config.AspectRatio != nil && w > 0 && h > 0 {
		target := c.config.AspectRatio.Ratio()
		if float64(w)/float64(h) < target {
			nw := int(math.Round(float64(h) * target))
			x -= (nw - w) / 2
			w = nw
		} else {
			nh := int(math.Round(float64(w) / target))
			y -= (nh - h) / 2
			h = nh
		}
	}

	x, w = fitSpan(x, w, bounds.Min.X, bounds.Max.X)
	y, h = fitSpan(y, h, bounds.Min.Y, bounds.Max.Y)
	return image.Rect(x, y, x+w, y+h)
}

// fitSpan shifts [start, start+size) into [lo, hi), shrinking it when it does not fit
func fitSpan(start, size, lo, hi int) (int, int) {
	if size > hi-lo {
		size = hi - lo
	}
	if start < lo {
		start = lo
	}
	if start+size > hi {
		start = hi - size
	}
	return start, size
}

// FileName builds "NN-label.ext" for the i-th crop
func FileName(i int, label, ext string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "object"
	}
	return fmt.Sprintf("%02d-%s.%s", i+1, name, strings.TrimPrefix(ext, "."))
}
