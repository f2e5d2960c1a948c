// Package vision calls the Azure AI Vision Image Analysis API.
package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/menta2k/cognitive-demos/pkg/azure"
	"github.com/menta2k/cognitive-demos/pkg/types"
)

const (
	analyzePath = "computervision/imageanalysis:analyze"

	// AnalyzeAPIVersion is the GA version of Image Analysis 4.0
	AnalyzeAPIVersion = "2023-10-01"
)

// Visual features understood by the analyze operation
const (
	FeatureCaption       = "caption"
	FeatureDenseCaptions = "denseCaptions"
	FeatureTags          = "tags"
	FeatureObjects       = "objects"
	FeaturePeople        = "people"
)

// DefaultFeatures requests everything the image flow displays
var DefaultFeatures = []string{FeatureCaption, FeatureDenseCaptions, FeatureTags, FeatureObjects, FeaturePeople}

// Options tunes the analyze request
type Options struct {
	Features             []string
	Language             string
	GenderNeutralCaption bool
	APIVersion           string
}

// DefaultOptions mirrors what the console demo asks for
func DefaultOptions() Options {
	return Options{
		Features:   DefaultFeatures,
		Language:   "en",
		APIVersion: AnalyzeAPIVersion,
	}
}

// Client wraps the Image Analysis endpoints of an Azure resource
type Client struct {
	azure   *azure.Client
	options Options
}

// NewClient creates a vision client on top of an authenticated transport
func NewClient(transport *azure.Client, options Options) *Client {
	if len(options.Features) == 0 {
		options.Features = DefaultFeatures
	}
	if options.APIVersion == "" {
		options.APIVersion = AnalyzeAPIVersion
	}
	return &Client{azure: transport, options: options}
}

// AnalyzeImage sends raw image bytes and returns the requested visual features
func (c *Client) AnalyzeImage(ctx context.Context, image []byte) (*types.AnalysisResult, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}

	query := url.Values{}
	query.Set("api-version", c.options.APIVersion)
	query.Set("features", strings.Join(c.options.Features, ","))
	if c.options.Language != "" {
		query.Set("language", c.options.Language)
	}
	query.Set("gender-neutral-caption", strconv.FormatBool(c.options.GenderNeutralCaption))

	body, err := c.azure.PostBinary(ctx, analyzePath, query, image)
	if err != nil {
		return nil, err
	}

	return parseAnalyzeResponse(body)
}

// analyzeResponse is the wire format of Image Analysis 4.0
type analyzeResponse struct {
	ModelVersion string `json:"modelVersion"`
	Metadata     struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"metadata"`
	CaptionResult *struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"captionResult"`
	DenseCaptionsResult *struct {
		Values []struct {
			Text        string  `json:"text"`
			Confidence  float64 `json:"confidence"`
			BoundingBox wireBox `json:"boundingBox"`
		} `json:"values"`
	} `json:"denseCaptionsResult"`
	TagsResult *struct {
		Values []wireTag `json:"values"`
	} `json:"tagsResult"`
	ObjectsResult *struct {
		Values []struct {
			BoundingBox wireBox   `json:"boundingBox"`
			Tags        []wireTag `json:"tags"`
		} `json:"values"`
	} `json:"objectsResult"`
	PeopleResult *struct {
		Values []struct {
			BoundingBox wireBox `json:"boundingBox"`
			Confidence  float64 `json:"confidence"`
		} `json:"values"`
	} `json:"peopleResult"`
}

type wireBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type wireTag struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

func (b wireBox) toBox() types.BoundingBox {
	return types.BoundingBox{X: b.X, Y: b.Y, Width: b.W, Height: b.H}
}

func toTags(in []wireTag) []types.Tag {
	out := make([]types.Tag, 0, len(in))
	for _, t := range in {
		out = append(out, types.Tag{Name: t.Name, Confidence: t.Confidence})
	}
	return out
}

func parseAnalyzeResponse(body []byte) (*types.AnalysisResult, error) {
	var resp analyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	result := &types.AnalysisResult{
		ModelVersion: resp.ModelVersion,
		Metadata:     types.Metadata{Width: resp.Metadata.Width, Height: resp.Metadata.Height},
	}

	if resp.CaptionResult != nil {
		result.Caption = &types.Caption{Text: resp.CaptionResult.Text, Confidence: resp.CaptionResult.Confidence}
	}
	if resp.DenseCaptionsResult != nil {
		for _, v := range resp.DenseCaptionsResult.Values {
			result.DenseCaptions = append(result.DenseCaptions, types.DenseCaption{
				Text:        v.Text,
				Confidence:  v.Confidence,
				BoundingBox: v.BoundingBox.toBox(),
			})
		}
	}
	if resp.TagsResult != nil {
		result.Tags = toTags(resp.TagsResult.Values)
	}
	if resp.ObjectsResult != nil {
		for _, v := range resp.ObjectsResult.Values {
			result.Objects = append(result.Objects, types.DetectedObject{
				BoundingBox: v.BoundingBox.toBox(),
				Tags:        toTags(v.Tags),
			})
		}
	}
	if resp.PeopleResult != nil {
		for _, v := range resp.PeopleResult.Values {
			result.People = append(result.People, types.DetectedPerson{
				BoundingBox: v.BoundingBox.toBox(),
				Confidence:  v.Confidence,
			})
		}
	}

	return result, nil
}
