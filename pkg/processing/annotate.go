package processing

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

const (
	// DefaultOutlineColor is the box and label background color
	DefaultOutlineColor = "cyan"

	// DefaultStroke is the outline width in pixels
	DefaultStroke = 3

	labelPadding = 2
)

var namedColors = map[string]string{
	"cyan":    "#00ffff",
	"red":     "#ff0000",
	"green":   "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"magenta": "#ff00ff",
	"orange":  "#ffa500",
	"white":   "#ffffff",
	"black":   "#000000",
}

// ParseColor accepts a name from the small built-in palette or a #rrggbb hex value
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Mark is one rectangle and its label as drawn on the image
type Mark struct {
	Label       string
	Box         image.Rectangle
	LabelOrigin image.Point
	LabelBox    image.Rectangle
}

// Annotator draws detected objects over an image
type Annotator struct {
	outline color.NRGBA
	text    color.NRGBA
	stroke  int
	face    font.Face
}

// NewAnnotator creates an annotator; zero options fall back to cyan and a 3 px stroke
func NewAnnotator(opts types.RenderOptions) (*Annotator, error) {
	if opts.OutlineColor == "" {
		opts.OutlineColor = DefaultOutlineColor
	}
	if opts.Stroke == 0 {
		opts.Stroke = DefaultStroke
	}
	if opts.Stroke < 0 {
		return nil, fmt.Errorf("stroke must be positive, got %d", opts.Stroke)
	}

	outline, err := ParseColor(opts.OutlineColor)
	if err != nil {
		return nil, err
	}

	return &Annotator{
		outline: outline,
		text:    textColorFor(outline),
		stroke:  opts.Stroke,
		face:    basicfont.Face7x13,
	}, nil
}

// textColorFor picks black or white, whichever reads better on bg
func textColorFor(bg color.NRGBA) color.NRGBA {
	c, _ := colorful.MakeColor(bg)
	if l, _, _ := c.Lab(); l > 0.6 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

// Annotate returns a copy of img with a box and a label for every object.
// The source image is not modified. If any object has no tag nothing is drawn.
func (a *Annotator) Annotate(img image.Image, objects []types.DetectedObject) (*image.NRGBA, []Mark, error) {
	labels := make([]string, len(objects))
	for i, obj := range objects {
		tag, ok := obj.Primary()
		if !ok {
			return nil, nil, fmt.Errorf("object %d: %w", i, types.ErrUntaggedObject)
		}
		labels[i] = tag.Name
	}

	// imaging.Clone moves the origin to (0,0); service coordinates use the same origin
	canvas := imaging.Clone(img)
	marks := make([]Mark, 0, len(objects))

	for i, obj := range objects {
		x1, y1 := obj.BoundingBox.Max()
		rect := image.Rect(obj.BoundingBox.X, obj.BoundingBox.Y, x1, y1)

		drawRect(canvas, rect, a.outline, a.stroke)
		labelBox := a.drawLabel(canvas, rect.Min, labels[i])

		marks = append(marks, Mark{
			Label:       labels[i],
			Box:         rect,
			LabelOrigin: rect.Min,
			LabelBox:    labelBox,
		})
	}

	return canvas, marks, nil
}

// drawLabel fills a background behind text whose top-left corner is origin
func (a *Annotator) drawLabel(img *image.NRGBA, origin image.Point, text string) image.Rectangle {
	metrics := a.face.Metrics()
	width := font.MeasureString(a.face, text).Ceil() + 2*labelPadding
	height := metrics.Height.Ceil() + 2*labelPadding

	bg := image.Rect(origin.X, origin.Y, origin.X+width, origin.Y+height)
	draw.Draw(img, bg, image.NewUniform(a.outline), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(a.text),
		Face: a.face,
		Dot:  fixed.P(origin.X+labelPadding, origin.Y+labelPadding+metrics.Ascent.Ceil()),
	}
	d.DrawString(text)

	return bg
}

// drawRect draws an outline of the given stroke inside r
func drawRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA, stroke int) {
	if r.Empty() {
		return
	}
	for s := 0; s < stroke; s++ {
		drawHLine(img, r.Min.Y+s, r.Min.X, r.Max.X, c)
		drawHLine(img, r.Max.Y-1-s, r.Min.X, r.Max.X, c)
		drawVLine(img, r.Min.X+s, r.Min.Y, r.Max.Y, c)
		drawVLine(img, r.Max.X-1-s, r.Min.Y, r.Max.Y, c)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
