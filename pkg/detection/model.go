package detection

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

// AnalyzePrompt asks a local vision model for the same features the Azure service returns
const AnalyzePrompt = `You are an image analysis service.

Return JSON only:
{
  "caption": {"text": "string", "confidence": 0.0},
  "denseCaptions": [{"text": "string", "confidence": 0.0, "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}}],
  "tags": [{"name": "string", "confidence": 0.0}],
  "objects": [{"box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}, "tags": [{"name": "string", "confidence": 0.0}]}],
  "people": [{"box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}, "confidence": 0.0}]
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels), origin at the top-left corner.
- Every object has at least one tag; the first tag is the best label.
- Confidences are in [0,1].
- Tags: lowercase, concise, no duplicates.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

type modelBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type modelOutput struct {
	Caption *struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"caption"`
	DenseCaptions []struct {
		Text       string   `json:"text"`
		Confidence float64  `json:"confidence"`
		Box        modelBox `json:"box"`
	} `json:"denseCaptions"`
	Tags    []types.Tag `json:"tags"`
	Objects []struct {
		Box  modelBox    `json:"box"`
		Tags []types.Tag `json:"tags"`
	} `json:"objects"`
	People []struct {
		Box        modelBox `json:"box"`
		Confidence float64  `json:"confidence"`
	} `json:"people"`
}

// ParseModelOutput parses a model answer written for AnalyzePrompt and converts
// its normalized boxes to pixels of a width x height image. source becomes
// the result's model version.
func ParseModelOutput(raw, source string, width, height int) (*types.AnalysisResult, error) {
	raw = SanitizeModelJSON(raw)
	if !strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("model returned non-JSON response")
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	result := &types.AnalysisResult{
		ModelVersion: source,
		Metadata:     types.Metadata{Width: width, Height: height},
		Tags:         out.Tags,
	}
	if out.Caption != nil {
		result.Caption = &types.Caption{Text: out.Caption.Text, Confidence: clamp(out.Caption.Confidence, 0, 1)}
	}
	for _, dc := range out.DenseCaptions {
		result.DenseCaptions = append(result.DenseCaptions, types.DenseCaption{
			Text:        dc.Text,
			Confidence:  clamp(dc.Confidence, 0, 1),
			BoundingBox: toPixels(dc.Box, width, height),
		})
	}
	for _, o := range out.Objects {
		result.Objects = append(result.Objects, types.DetectedObject{
			BoundingBox: toPixels(o.Box, width, height),
			Tags:        o.Tags,
		})
	}
	for _, p := range out.People {
		result.People = append(result.People, types.DetectedPerson{
			BoundingBox: toPixels(p.Box, width, height),
			Confidence:  clamp(p.Confidence, 0, 1),
		})
	}

	return result, nil
}

// toPixels converts a normalized box to pixel coordinates
func toPixels(b modelBox, w, h int) types.BoundingBox {
	x0 := int(clamp(b.X, 0, 1)*float64(w) + 0.5)
	y0 := int(clamp(b.Y, 0, 1)*float64(h) + 0.5)
	x1 := int(clamp(b.X+b.W, 0, 1)*float64(w) + 0.5)
	y1 := int(clamp(b.Y+b.H, 0, 1)*float64(h) + 0.5)
	return types.BoundingBox{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var (
	reBlock    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLine     = regexp.MustCompile(`(?m)^\s*//.*$`)
	reTrailing = regexp.MustCompile(`,(\s*[}\]])`)
)

// SanitizeModelJSON removes code fences, comments, and trailing commas from a model answer
func SanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reLine.ReplaceAllString(raw, "")
	raw = reTrailing.ReplaceAllString(raw, "$1")

	// Keep only the outermost {...}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
