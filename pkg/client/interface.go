package client

import (
	"context"

	"github.com/menta2k/cognitive-demos/pkg/types"
)

// VisionClient analyzes raw image bytes
type VisionClient interface {
	AnalyzeImage(ctx context.Context, image []byte) (*types.AnalysisResult, error)
}

// BackgroundRemover segments the image found at a public URL and returns the encoded result
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, imageURL string) ([]byte, error)
}

// LanguageDetector returns the dominant language of a piece of text
type LanguageDetector interface {
	DetectLanguage(ctx context.Context, text string) (*types.LanguageResult, error)
}
