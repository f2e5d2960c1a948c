package types

import "errors"

// ErrUntaggedObject is returned when a detected object carries no tag to label it with
var ErrUntaggedObject = errors.New("detected object has no tags")

// BoundingBox is a pixel rectangle with its origin at the top-left corner of the image
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"w"`
	Height int `json:"h"`
}

// Max returns the bottom-right corner (exclusive)
func (b BoundingBox) Max() (int, int) {
	return b.X + b.Width, b.Y + b.Height
}

// Empty reports whether the box covers no pixels
func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Caption is a whole-image description
type Caption struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// DenseCaption describes a sub-region of the image
type DenseCaption struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// Tag is a content label with its confidence in [0,1]
type Tag struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// DetectedObject is a located object. Tags are ordered by the service and the
// first one is the primary label.
type DetectedObject struct {
	BoundingBox BoundingBox `json:"boundingBox"`
	Tags        []Tag       `json:"tags"`
}

// Primary returns the first tag and false when the object carries no tags
func (o DetectedObject) Primary() (Tag, bool) {
	if len(o.Tags) == 0 {
		return Tag{}, false
	}
	return o.Tags[0], true
}

// DetectedPerson is a located person
type DetectedPerson struct {
	BoundingBox BoundingBox `json:"boundingBox"`
	Confidence  float64     `json:"confidence"`
}

// Metadata describes the image as seen by the service
type Metadata struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AnalysisResult contains every visual feature returned for one image.
// All feature fields are optional.
type AnalysisResult struct {
	ModelVersion  string           `json:"modelVersion,omitempty"`
	Metadata      Metadata         `json:"metadata"`
	Caption       *Caption         `json:"caption,omitempty"`
	DenseCaptions []DenseCaption   `json:"denseCaptions,omitempty"`
	Tags          []Tag            `json:"tags,omitempty"`
	Objects       []DetectedObject `json:"objects,omitempty"`
	People        []DetectedPerson `json:"people,omitempty"`
}

// LanguageResult is the primary language detected for a text sample
type LanguageResult struct {
	Name            string  `json:"name"`
	ISO6391Name     string  `json:"iso6391Name"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// RenderOptions controls how detected objects are drawn
type RenderOptions struct {
	OutlineColor string
	Stroke       int
}
