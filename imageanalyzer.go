// Package imageanalyzer runs the image flow of the Azure AI Vision demo.
//
// An image file is sent to an analysis backend, the result is printed, the
// detected objects are drawn over the original image and saved, and finally
// the background of a public copy of the image is removed by the service.
//
// Basic usage:
//
//	transport, err := azure.NewClient(endpoint, key, 0, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	remover, _ := vision.NewBackgroundRemover(transport, vision.ModeBackgroundRemoval)
//	ia, err := imageanalyzer.New(vision.NewClient(transport, vision.DefaultOptions()), remover, imageanalyzer.DefaultOptions(), logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if _, err := ia.AnalyzeFile(ctx, "images/street.jpg", os.Stdout); err != nil {
//		log.Fatal(err)
//	}
//
// The package consists of these components:
//
//  1. Analyzer (pkg/analyzer): checks the input against the service limits
//  2. Detection (pkg/detection): calls the backend and validates its result
//  3. Processing (pkg/processing): decodes, annotates and saves images
//  4. Report (pkg/report): prints the result for the console or as markdown
//  5. Cropper (pkg/cropper): cuts detected objects out as separate images
package imageanalyzer

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/menta2k/cognitive-demos/internal/utils"
	"github.com/menta2k/cognitive-demos/pkg/analyzer"
	"github.com/menta2k/cognitive-demos/pkg/client"
	"github.com/menta2k/cognitive-demos/pkg/cropper"
	"github.com/menta2k/cognitive-demos/pkg/detection"
	"github.com/menta2k/cognitive-demos/pkg/processing"
	"github.com/menta2k/cognitive-demos/pkg/report"
	"github.com/menta2k/cognitive-demos/pkg/types"
)

// Version of the demo clients
const Version = "1.0.0"

// Options controls where and how results are written
type Options struct {
	OutputDir      string
	ObjectsFile    string
	BackgroundFile string
	Quality        int
	MaxDimension   int
	Render         types.RenderOptions

	// WriteJSON and WriteMarkdown add analysis.json / analysis.md next to the objects image
	WriteJSON     bool
	WriteMarkdown bool

	// Crops writes each detected object to CropsDir (relative to OutputDir)
	Crops       bool
	CropsDir    string
	CropAspect  string
	CropPadding float64
}

// DefaultOptions writes objects.jpg and background.png to the working directory
func DefaultOptions() Options {
	return Options{
		OutputDir:      ".",
		ObjectsFile:    "objects.jpg",
		BackgroundFile: "background.png",
		Quality:        90,
		MaxDimension:   4096,
		CropsDir:       "objects",
		CropPadding:    0.1,
	}
}

// ImageAnalyzer provides the high-level image flow
type ImageAnalyzer struct {
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	detector  *detection.Detector
	annotator *processing.Annotator
	cropper   *cropper.SmartCropper
	remover   client.BackgroundRemover
	options   Options
	logger    *slog.Logger
}

// New wires the flow around a vision backend. remover may be nil when
// background removal is not used.
func New(vision client.VisionClient, remover client.BackgroundRemover, options Options, logger *slog.Logger) (*ImageAnalyzer, error) {
	if vision == nil {
		return nil, fmt.Errorf("vision client is required")
	}
	defaults := DefaultOptions()
	if options.ObjectsFile == "" {
		options.ObjectsFile = defaults.ObjectsFile
	}
	if options.BackgroundFile == "" {
		options.BackgroundFile = defaults.BackgroundFile
	}
	if options.Quality == 0 {
		options.Quality = defaults.Quality
	}
	if logger == nil {
		logger = slog.Default()
	}

	annotator, err := processing.NewAnnotator(options.Render)
	if err != nil {
		return nil, err
	}

	aspect, err := cropper.ParseAspectRatio(options.CropAspect)
	if err != nil {
		return nil, err
	}
	if options.CropsDir == "" {
		options.CropsDir = defaults.CropsDir
	}
	crop := cropper.NewWithConfig(cropper.CropConfig{
		PaddingRatio: options.CropPadding,
		AspectRatio:  aspect,
		MinSize:      8,
	})

	limits := analyzer.DefaultConfig()
	if options.MaxDimension > 0 && options.MaxDimension < limits.MaxDimension {
		limits.MaxDimension = options.MaxDimension
	}
	options.MaxDimension = limits.MaxDimension

	return &ImageAnalyzer{
		analyzer:  analyzer.NewWithConfig(limits),
		processor: processing.NewProcessor(),
		detector:  detection.NewDetector(vision),
		annotator: annotator,
		cropper:   crop,
		remover:   remover,
		options:   options,
		logger:    logger,
	}, nil
}

// AnalysisResult describes one completed analysis
type AnalysisResult struct {
	Source      string                `json:"source"`
	Info        analyzer.ImageInfo    `json:"info"`
	Result      *types.AnalysisResult `json:"result"`
	Marks       []processing.Mark     `json:"-"`
	ObjectsPath string                `json:"objects_path"`
	CropPaths   []string              `json:"crop_paths,omitempty"`
	ReportPaths []string              `json:"report_paths,omitempty"`
}

// AnalyzeFile analyzes the image at path, prints the result to out and saves
// the annotated image. Nothing is written when the analysis or the rendering
// fails; a later failure writing crops or reports leaves objects.jpg in place.
func (ia *ImageAnalyzer) AnalyzeFile(ctx context.Context, path string, out io.Writer) (*AnalysisResult, error) {
	data, err := ia.processor.ReadImageFile(path)
	if err != nil {
		return nil, err
	}

	info, err := ia.analyzer.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := ia.analyzer.ValidateImage(info); err != nil {
		return nil, fmt.Errorf("image validation failed: %w", err)
	}

	payload := data
	if ia.analyzer.NeedsDownscale(info) {
		payload, err = ia.processor.PrepareImageForService(data, ia.options.MaxDimension, ia.options.Quality)
		if err != nil {
			return nil, err
		}
		ia.logger.Info("downscaled image for analysis",
			"from", utils.FormatFileSize(int64(len(data))),
			"to", utils.FormatFileSize(int64(len(payload))),
		)
	}

	fmt.Fprintln(out, "\nAnalyzing image...")

	result, err := ia.detector.Analyze(ctx, payload)
	if err != nil {
		return nil, err
	}
	detection.Rescale(result, info.Width, info.Height)

	if err := report.WriteAnalysis(out, result); err != nil {
		return nil, err
	}

	img, err := ia.processor.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	annotated, marks, err := ia.annotator.Annotate(img, result.Objects)
	if err != nil {
		return nil, err
	}

	if err := utils.EnsureDir(ia.options.OutputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	objectsPath := utils.OutputPath(ia.options.OutputDir, ia.options.ObjectsFile)
	if err := ia.processor.SaveImage(annotated, objectsPath, "", ia.options.Quality, false); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, " Results saved in", objectsPath)

	analysis := &AnalysisResult{
		Source:      path,
		Info:        info,
		Result:      result,
		Marks:       marks,
		ObjectsPath: objectsPath,
	}

	if ia.options.Crops {
		paths, err := ia.saveCrops(img, result.Objects)
		if err != nil {
			return nil, err
		}
		analysis.CropPaths = paths
	}

	if ia.options.WriteJSON {
		jsonPath := utils.SiblingPath(utils.OutputPath(ia.options.OutputDir, "analysis"), "json")
		if err := report.WriteJSON(jsonPath, result); err != nil {
			return nil, err
		}
		analysis.ReportPaths = append(analysis.ReportPaths, jsonPath)
	}
	if ia.options.WriteMarkdown {
		mdPath := utils.SiblingPath(utils.OutputPath(ia.options.OutputDir, "analysis"), "md")
		if err := writeMarkdownFile(mdPath, path, result); err != nil {
			return nil, err
		}
		analysis.ReportPaths = append(analysis.ReportPaths, mdPath)
	}

	return analysis, nil
}

// RemoveBackground asks the service to segment the image at imageURL and writes
// the returned bytes unchanged. On failure no file is written.
func (ia *ImageAnalyzer) RemoveBackground(ctx context.Context, imageURL string, out io.Writer) (string, error) {
	if ia.remover == nil {
		return "", fmt.Errorf("background removal is not configured")
	}

	fmt.Fprintln(out, "\nRemoving background from image...")
	ia.logger.Debug("background removal", "url", imageURL)

	data, err := ia.remover.RemoveBackground(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("background removal failed: %w", err)
	}

	if err := utils.EnsureDir(ia.options.OutputDir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := utils.OutputPath(ia.options.OutputDir, ia.options.BackgroundFile)
	if err := ia.processor.WriteBytes(path, data); err != nil {
		return "", err
	}
	fmt.Fprintf(out, " Background removed and saved as '%s'.\n", path)
	return path, nil
}

// saveCrops writes one image per detected object next to the objects image
func (ia *ImageAnalyzer) saveCrops(img image.Image, objects []types.DetectedObject) ([]string, error) {
	crops, err := ia.cropper.CropObjects(img, objects)
	if err != nil {
		return nil, err
	}
	if len(crops) == 0 {
		return nil, nil
	}

	dir := utils.OutputPath(ia.options.OutputDir, ia.options.CropsDir)
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create crops directory: %w", err)
	}

	ext := utils.GetFileExtension(ia.options.ObjectsFile)
	if ext == "" {
		ext = "jpg"
	}
	paths := make([]string, 0, len(crops))
	for i, crop := range crops {
		path := utils.OutputPath(dir, cropper.FileName(i, crop.Label, ext))
		if err := ia.processor.SaveImage(crop.Image, path, "", ia.options.Quality, false); err != nil {
			return nil, err
		}
		ia.logger.Debug("saved crop", "label", crop.Label, "region", crop.Region.String(), "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}

func writeMarkdownFile(path, source string, result *types.AnalysisResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := report.WriteMarkdown(f, source, result); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
