package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

type stubClient struct {
	result *types.AnalysisResult
	err    error
	calls  int
}

func (s *stubClient) AnalyzeImage(_ context.Context, _ []byte) (*types.AnalysisResult, error) {
	s.calls++
	return s.result, s.err
}

func TestAnalyzeClipsBoxesAndTrimsTags(t *testing.T) {
	stub := &stubClient{result: &types.AnalysisResult{
		Metadata: types.Metadata{Width: 100, Height: 80},
		Tags:     []types.Tag{{Name: " street ", Confidence: 0.9}, {Name: "  "}},
		Objects: []types.DetectedObject{
			{BoundingBox: types.BoundingBox{X: 90, Y: -5, Width: 30, Height: 20}, Tags: []types.Tag{{Name: "car", Confidence: 0.8}}},
		},
		People: []types.DetectedPerson{
			{BoundingBox: types.BoundingBox{X: 10, Y: 70, Width: 10, Height: 40}, Confidence: 0.7},
		},
	}}

	result, err := NewDetector(stub).Analyze(context.Background(), []byte("img"))
	require.NoError(t, err)

	assert.Equal(t, []types.Tag{{Name: "street", Confidence: 0.9}}, result.Tags)
	assert.Equal(t, types.BoundingBox{X: 90, Y: 0, Width: 10, Height: 15}, result.Objects[0].BoundingBox)
	assert.Equal(t, types.BoundingBox{X: 10, Y: 70, Width: 10, Height: 10}, result.People[0].BoundingBox)
}

func TestAnalyzeKeepsBoxesWithoutMetadata(t *testing.T) {
	box := types.BoundingBox{X: -3, Y: 4, Width: 500, Height: 600}
	stub := &stubClient{result: &types.AnalysisResult{
		Objects: []types.DetectedObject{{BoundingBox: box, Tags: []types.Tag{{Name: "dog"}}}},
	}}

	result, err := NewDetector(stub).Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, box, result.Objects[0].BoundingBox)
}

func TestAnalyzeRejectsUntaggedObject(t *testing.T) {
	stub := &stubClient{result: &types.AnalysisResult{
		Objects: []types.DetectedObject{
			{BoundingBox: types.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}, Tags: []types.Tag{{Name: "person"}}},
			{BoundingBox: types.BoundingBox{X: 5, Y: 6, Width: 7, Height: 8}},
		},
	}}

	_, err := NewDetector(stub).Analyze(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUntaggedObject))
	assert.Contains(t, err.Error(), "object 1 at (5,6)")
}

func TestAnalyzeBlankTagsCountAsUntagged(t *testing.T) {
	stub := &stubClient{result: &types.AnalysisResult{
		Objects: []types.DetectedObject{{Tags: []types.Tag{{Name: " "}}}},
	}}

	_, err := NewDetector(stub).Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUntaggedObject)
}

func TestAnalyzePropagatesClientError(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubClient{err: boom}

	_, err := NewDetector(stub).Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stub.calls)
}

func TestAnalyzeNilResult(t *testing.T) {
	_, err := NewDetector(&stubClient{}).Analyze(context.Background(), nil)
	assert.Error(t, err)
}

func TestRescale(t *testing.T) {
	result := &types.AnalysisResult{
		Metadata: types.Metadata{Width: 100, Height: 50},
		Objects: []types.DetectedObject{
			{BoundingBox: types.BoundingBox{X: 10, Y: 5, Width: 20, Height: 10}, Tags: []types.Tag{{Name: "car"}}},
		},
		People: []types.DetectedPerson{
			{BoundingBox: types.BoundingBox{X: 90, Y: 40, Width: 10, Height: 10}},
		},
		DenseCaptions: []types.DenseCaption{
			{BoundingBox: types.BoundingBox{X: 0, Y: 0, Width: 100, Height: 50}},
		},
	}

	Rescale(result, 400, 200)

	assert.Equal(t, types.Metadata{Width: 400, Height: 200}, result.Metadata)
	assert.Equal(t, types.BoundingBox{X: 40, Y: 20, Width: 80, Height: 40}, result.Objects[0].BoundingBox)
	assert.Equal(t, types.BoundingBox{X: 360, Y: 160, Width: 40, Height: 40}, result.People[0].BoundingBox)
	assert.Equal(t, types.BoundingBox{X: 0, Y: 0, Width: 400, Height: 200}, result.DenseCaptions[0].BoundingBox)
}

func TestRescaleNoop(t *testing.T) {
	box := types.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}
	result := &types.AnalysisResult{
		Objects: []types.DetectedObject{{BoundingBox: box, Tags: []types.Tag{{Name: "x"}}}},
	}

	// unknown analyzed size
	Rescale(result, 400, 200)
	assert.Equal(t, box, result.Objects[0].BoundingBox)

	// same size
	result.Metadata = types.Metadata{Width: 400, Height: 200}
	Rescale(result, 400, 200)
	assert.Equal(t, box, result.Objects[0].BoundingBox)
}
