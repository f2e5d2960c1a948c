package processing

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

var (
	gray = color.NRGBA{128, 128, 128, 255}
	cyan = color.NRGBA{0, 255, 255, 255}
)

// createTestImage creates a flat gray test image
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, gray)
		}
	}
	return img
}

func object(x, y, w, h int, names ...string) types.DetectedObject {
	obj := types.DetectedObject{BoundingBox: types.BoundingBox{X: x, Y: y, Width: w, Height: h}}
	for _, n := range names {
		obj.Tags = append(obj.Tags, types.Tag{Name: n, Confidence: 0.9})
	}
	return obj
}

func newTestAnnotator(t *testing.T) *Annotator {
	t.Helper()
	a, err := NewAnnotator(types.RenderOptions{})
	require.NoError(t, err)
	return a
}

func TestAnnotateDrawsOneMarkPerObject(t *testing.T) {
	src := createTestImage(200, 150)
	objects := []types.DetectedObject{
		object(10, 20, 50, 40, "car", "vehicle"),
		object(100, 60, 80, 70, "person"),
	}

	out, marks, err := newTestAnnotator(t).Annotate(src, objects)
	require.NoError(t, err)
	require.Len(t, marks, len(objects))

	for i, obj := range objects {
		assert.Equal(t, image.Pt(obj.BoundingBox.X, obj.BoundingBox.Y), marks[i].LabelOrigin)
		assert.Equal(t, marks[i].LabelOrigin, marks[i].LabelBox.Min)
		assert.Equal(t, obj.Tags[0].Name, marks[i].Label)
		assert.Equal(t, image.Rect(obj.BoundingBox.X, obj.BoundingBox.Y,
			obj.BoundingBox.X+obj.BoundingBox.Width, obj.BoundingBox.Y+obj.BoundingBox.Height), marks[i].Box)
	}

	assert.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, cyan, out.NRGBAAt(10, 59), "bottom-left corner of first box")
	assert.Equal(t, cyan, out.NRGBAAt(179, 129), "bottom-right corner of second box")
}

func TestAnnotateStrokeWidth(t *testing.T) {
	src := createTestImage(200, 150)

	out, _, err := newTestAnnotator(t).Annotate(src, []types.DetectedObject{object(10, 20, 50, 100, "tree")})
	require.NoError(t, err)

	// below the label, the left edge is exactly three pixels wide
	for x := 10; x < 13; x++ {
		assert.Equal(t, cyan, out.NRGBAAt(x, 80), "x=%d", x)
	}
	assert.Equal(t, gray, out.NRGBAAt(13, 80))
	assert.Equal(t, gray, out.NRGBAAt(9, 80))
}

func TestAnnotateLabelHasBackgroundAndText(t *testing.T) {
	src := createTestImage(200, 150)

	out, marks, err := newTestAnnotator(t).Annotate(src, []types.DetectedObject{object(30, 30, 120, 100, "bicycle")})
	require.NoError(t, err)

	lb := marks[0].LabelBox
	require.False(t, lb.Empty())

	var bg, text int
	for y := lb.Min.Y; y < lb.Max.Y; y++ {
		for x := lb.Min.X; x < lb.Max.X; x++ {
			switch out.NRGBAAt(x, y) {
			case cyan:
				bg++
			case color.NRGBA{A: 255}:
				text++
			}
		}
	}
	assert.Greater(t, bg, 0)
	assert.Greater(t, text, 0, "label text should be drawn in black on cyan")
	assert.Equal(t, lb.Dx()*lb.Dy(), bg+text, "label area is fully covered")
}

func TestAnnotateLeavesOtherPixelsAlone(t *testing.T) {
	src := createTestImage(200, 150)

	out, marks, err := newTestAnnotator(t).Annotate(src, []types.DetectedObject{object(40, 40, 60, 60, "cat")})
	require.NoError(t, err)

	box := marks[0].Box
	inner := image.Rect(box.Min.X+3, box.Min.Y+3, box.Max.X-3, box.Max.Y-3)
	for y := 0; y < 150; y++ {
		for x := 0; x < 200; x++ {
			p := image.Pt(x, y)
			if p.In(marks[0].LabelBox) {
				continue
			}
			if p.In(box) && !p.In(inner) {
				continue
			}
			require.Equal(t, gray, out.NRGBAAt(x, y), "pixel (%d,%d) changed", x, y)
		}
	}

	// the source raster is untouched
	assert.Equal(t, gray, src.NRGBAAt(40, 99))
}

func TestAnnotateNoObjects(t *testing.T) {
	src := createTestImage(64, 48)

	out, marks, err := newTestAnnotator(t).Annotate(src, nil)
	require.NoError(t, err)
	assert.Empty(t, marks)
	assert.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, src.Pix, out.Pix)
}

func TestAnnotateUntaggedObjectFailsBeforeDrawing(t *testing.T) {
	src := createTestImage(64, 48)
	objects := []types.DetectedObject{object(1, 1, 10, 10, "ok"), object(5, 5, 10, 10)}

	out, marks, err := newTestAnnotator(t).Annotate(src, objects)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUntaggedObject)
	assert.Nil(t, out)
	assert.Nil(t, marks)
}

func TestAnnotateClipsBoxesOutsideImage(t *testing.T) {
	src := createTestImage(100, 80)

	out, marks, err := newTestAnnotator(t).Annotate(src, []types.DetectedObject{object(90, 70, 50, 50, "sign")})
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, image.Rect(90, 70, 140, 120), marks[0].Box)
	assert.Equal(t, cyan, out.NRGBAAt(90, 79))
}

func TestNewAnnotatorOptions(t *testing.T) {
	_, err := NewAnnotator(types.RenderOptions{Stroke: -1})
	assert.Error(t, err)

	_, err = NewAnnotator(types.RenderOptions{OutlineColor: "not-a-color"})
	assert.Error(t, err)

	a, err := NewAnnotator(types.RenderOptions{OutlineColor: "#0000FF", Stroke: 1})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, a.outline)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, a.text, "white text on dark blue")
	assert.Equal(t, 1, a.stroke)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"cyan", cyan},
		{" Cyan ", cyan},
		{"#ff0000", color.NRGBA{255, 0, 0, 255}},
		{"00FF00", color.NRGBA{0, 255, 0, 255}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseColor("#zzzzzz")
	assert.Error(t, err)
}
