package analyzer

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	// register every format the vision service accepts
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageAnalyzer checks image files against the input limits of the analysis service
type ImageAnalyzer struct {
	config Config
}

// Config holds the input limits
type Config struct {
	SupportedFormats []string
	MinDimension     int
	MaxDimension     int
	MaxFileBytes     int
}

// DefaultConfig returns the documented Image Analysis 4.0 limits
func DefaultConfig() Config {
	return Config{
		SupportedFormats: []string{"jpeg", "png", "gif", "bmp", "webp", "tiff"},
		MinDimension:     50,
		MaxDimension:     16000,
		MaxFileBytes:     20 << 20,
	}
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{config: DefaultConfig()}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Format      string
	Width       int
	Height      int
	AspectRatio float64
	Area        int
	Bytes       int
}

// Inspect reads the image header without decoding pixels
func (a *ImageAnalyzer) Inspect(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode image: %w", err)
	}

	if !a.isFormatSupported(format) {
		return ImageInfo{}, fmt.Errorf("unsupported image format: %s", format)
	}

	info := ImageInfo{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Area:   cfg.Width * cfg.Height,
		Bytes:  len(data),
	}
	if cfg.Height > 0 {
		info.AspectRatio = float64(cfg.Width) / float64(cfg.Height)
	}
	return info, nil
}

// ValidateImage fails for images too small to analyze. Oversized images are
// not an error here; see NeedsDownscale.
func (a *ImageAnalyzer) ValidateImage(info ImageInfo) error {
	if info.Width < a.config.MinDimension || info.Height < a.config.MinDimension {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			info.Width, info.Height, a.config.MinDimension)
	}
	return nil
}

// NeedsDownscale reports whether the image exceeds the size or dimension limit
func (a *ImageAnalyzer) NeedsDownscale(info ImageInfo) bool {
	if a.config.MaxFileBytes > 0 && info.Bytes > a.config.MaxFileBytes {
		return true
	}
	if a.config.MaxDimension > 0 && (info.Width > a.config.MaxDimension || info.Height > a.config.MaxDimension) {
		return true
	}
	return false
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}
