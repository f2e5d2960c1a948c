package vision

import (
	"context"
	"fmt"
	"net/url"

	"github.com/menta2k/cognitive-demos/pkg/azure"
)

// SegmentAPIVersion is the preview version that still exposes the segment mode
const SegmentAPIVersion = "2023-02-01-preview"

// Segmentation modes
const (
	ModeBackgroundRemoval = "backgroundRemoval"
	ModeForegroundMatting = "foregroundMatting"
)

// BackgroundRemover calls the segment mode of the analyze operation
type BackgroundRemover struct {
	azure      *azure.Client
	mode       string
	apiVersion string
}

// NewBackgroundRemover creates a remover; an empty mode means backgroundRemoval
func NewBackgroundRemover(transport *azure.Client, mode string) (*BackgroundRemover, error) {
	if mode == "" {
		mode = ModeBackgroundRemoval
	}
	if mode != ModeBackgroundRemoval && mode != ModeForegroundMatting {
		return nil, fmt.Errorf("unsupported segmentation mode: %s (use %s or %s)", mode, ModeBackgroundRemoval, ModeForegroundMatting)
	}
	return &BackgroundRemover{azure: transport, mode: mode, apiVersion: SegmentAPIVersion}, nil
}

type segmentRequest struct {
	URL string `json:"url"`
}

// RemoveBackground asks the service to segment the image at imageURL.
// The returned bytes are the encoded image exactly as the service sent them.
func (r *BackgroundRemover) RemoveBackground(ctx context.Context, imageURL string) ([]byte, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("image URL must be publicly reachable over http(s): %s", imageURL)
	}

	query := url.Values{}
	query.Set("api-version", r.apiVersion)
	query.Set("mode", r.mode)

	return r.azure.PostJSON(ctx, analyzePath, query, segmentRequest{URL: imageURL})
}
