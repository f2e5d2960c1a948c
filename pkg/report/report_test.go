package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		ModelVersion: "2023-10-01",
		Metadata:     types.Metadata{Width: 640, Height: 480},
		Caption:      &types.Caption{Text: "a street with cars", Confidence: 0.8345},
		DenseCaptions: []types.DenseCaption{
			{Text: "a red car", Confidence: 0.71, BoundingBox: types.BoundingBox{X: 1, Y: 2, Width: 3, Height: 4}},
		},
		Tags: []types.Tag{{Name: "outdoor", Confidence: 0.99}},
		Objects: []types.DetectedObject{
			{BoundingBox: types.BoundingBox{X: 10, Y: 20, Width: 30, Height: 40}, Tags: []types.Tag{{Name: "car", Confidence: 0.5}}},
		},
		People: []types.DetectedPerson{
			{BoundingBox: types.BoundingBox{X: 5, Y: 6, Width: 7, Height: 8}, Confidence: 0.25},
		},
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "83.45%", Percent(0.8345))
	assert.Equal(t, "0.00%", Percent(0))
	assert.Equal(t, "100.00%", Percent(1))
}

func TestWriteAnalysis(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "Caption: 'a street with cars' (confidence: 83.45%)")
	assert.Contains(t, out, "Dense Captions:\n Caption: 'a red car' (confidence: 71.00%)")
	assert.Contains(t, out, "Tags:\n Tag: 'outdoor' (confidence: 99.00%)")
	assert.Contains(t, out, "Objects in image:\n car (confidence: 50.00%)")
	assert.Contains(t, out, "People in image:\n Person at 5,6 7x8 (confidence: 25.00%)")
}

func TestWriteAnalysisOmitsMissingFeatures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, &types.AnalysisResult{}))
	assert.Empty(t, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestWriteAnalysisReportsWriteError(t *testing.T) {
	err := WriteAnalysis(failingWriter{}, sampleResult())
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, "images/street.jpg", sampleResult()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "# Image Analysis"))
	assert.Contains(t, out, "`images/street.jpg`")
	assert.Contains(t, out, "640x480")
	assert.Contains(t, out, "## Objects")
	assert.Contains(t, out, "car")
	assert.Contains(t, out, "10,20 30x40")
	assert.NotContains(t, out, "No objects or people")
}

func TestWriteMarkdownNothingDetected(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, "empty.jpg", &types.AnalysisResult{}))
	assert.Contains(t, buf.String(), "No objects or people were detected.")
	assert.Contains(t, buf.String(), "unknown")
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.json")
	require.NoError(t, WriteJSON(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got types.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *sampleResult(), got)
}

func TestWriteJSONBadPath(t *testing.T) {
	err := WriteJSON(filepath.Join(t.TempDir(), "missing", "analysis.json"), sampleResult())
	assert.Error(t, err)
}
