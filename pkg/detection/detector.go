package detection

import (
	"context"
	"fmt"
	"strings"

	"github.com/menta2k/cognitive-demos/pkg/client"
	"github.com/menta2k/cognitive-demos/pkg/types"
)

// ErrUntaggedObject is returned when the service reports an object without any tag.
// The renderer labels each box with its first tag, so such a result cannot be drawn.
var ErrUntaggedObject = types.ErrUntaggedObject

// Detector runs image analysis and checks the result before it is rendered
type Detector struct {
	client client.VisionClient
}

// NewDetector creates a new detector with a vision client
func NewDetector(client client.VisionClient) *Detector {
	return &Detector{client: client}
}

// Analyze sends the image to the vision backend and validates the result
func (d *Detector) Analyze(ctx context.Context, image []byte) (*types.AnalysisResult, error) {
	result, err := d.client.AnalyzeImage(ctx, image)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("vision backend returned no result")
	}

	if err := Normalize(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Normalize trims tag names, clips object boxes to the reported image size and
// fails on objects without tags
func Normalize(result *types.AnalysisResult) error {
	result.Tags = normalizeTags(result.Tags)

	for i := range result.Objects {
		obj := &result.Objects[i]
		obj.Tags = normalizeTags(obj.Tags)
		if len(obj.Tags) == 0 {
			return fmt.Errorf("object %d at (%d,%d): %w", i, obj.BoundingBox.X, obj.BoundingBox.Y, ErrUntaggedObject)
		}
		obj.BoundingBox = clipBox(obj.BoundingBox, result.Metadata)
	}
	for i := range result.People {
		result.People[i].BoundingBox = clipBox(result.People[i].BoundingBox, result.Metadata)
	}
	return nil
}

// Rescale maps every box in result from the analyzed image size to width x height.
// It is used when a downscaled copy was sent to the service.
func Rescale(result *types.AnalysisResult, width, height int) {
	from := result.Metadata
	if from.Width <= 0 || from.Height <= 0 || (from.Width == width && from.Height == height) {
		return
	}
	sx := float64(width) / float64(from.Width)
	sy := float64(height) / float64(from.Height)

	scale := func(b types.BoundingBox) types.BoundingBox {
		x0, y0 := int(float64(b.X)*sx+0.5), int(float64(b.Y)*sy+0.5)
		x1, y1 := b.Max()
		x1, y1 = int(float64(x1)*sx+0.5), int(float64(y1)*sy+0.5)
		return clipBox(types.BoundingBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, types.Metadata{Width: width, Height: height})
	}

	for i := range result.DenseCaptions {
		result.DenseCaptions[i].BoundingBox = scale(result.DenseCaptions[i].BoundingBox)
	}
	for i := range result.Objects {
		result.Objects[i].BoundingBox = scale(result.Objects[i].BoundingBox)
	}
	for i := range result.People {
		result.People[i].BoundingBox = scale(result.People[i].BoundingBox)
	}
	result.Metadata = types.Metadata{Width: width, Height: height}
}

// clipBox keeps a box inside the image when the image size is known
func clipBox(b types.BoundingBox, meta types.Metadata) types.BoundingBox {
	if meta.Width <= 0 || meta.Height <= 0 {
		return b
	}
	x0, y0 := clampInt(b.X, 0, meta.Width), clampInt(b.Y, 0, meta.Height)
	x1, y1 := b.Max()
	x1, y1 = clampInt(x1, x0, meta.Width), clampInt(y1, y0, meta.Height)
	return types.BoundingBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// normalizeTags trims names and drops blank tags, keeping service order
func normalizeTags(tags []types.Tag) []types.Tag {
	if tags == nil {
		return nil
	}
	out := make([]types.Tag, 0, len(tags))
	for _, t := range tags {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
