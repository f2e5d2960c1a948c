package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	imageanalyzer "github.com/menta2k/cognitive-demos"
	"github.com/menta2k/cognitive-demos/internal/cli"
	"github.com/menta2k/cognitive-demos/internal/config"
	"github.com/menta2k/cognitive-demos/internal/utils"
	"github.com/menta2k/cognitive-demos/pkg/azure"
	"github.com/menta2k/cognitive-demos/pkg/client"
	"github.com/menta2k/cognitive-demos/pkg/llamacpp"
	"github.com/menta2k/cognitive-demos/pkg/ollama"
	"github.com/menta2k/cognitive-demos/pkg/types"
	"github.com/menta2k/cognitive-demos/pkg/vision"
)

const defaultImage = "images/street.jpg"

// Analysis backends
const (
	backendAzure    = "azure"
	backendOllama   = "ollama"
	backendLlamaCpp = "llamacpp"
)

func run() int {
	return cli.Execute(NewRootCmd(), os.Stdout)
}

// NewRootCmd creates the imageanalysis command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imageanalysis [image]",
		Short: "Analyze an image with Azure AI Vision and remove its background",
		Long: `imageanalysis sends an image to Azure AI Vision and prints its caption,
dense captions, tags, objects and people. Detected objects are outlined in
objects.jpg. The background of the public copy of the image is then removed
and saved as background.png.

The resource is read from AI_SERVICE_ENDPOINT and AI_SERVICE_KEY (a .env file
in the working directory is loaded first).`,
		Args:          cobra.MaximumNArgs(1),
		Version:       cli.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAnalyze,
	}

	cli.AddGlobalFlags(cmd)
	cmd.Flags().StringP("out-dir", "o", "", "output directory (default from config, \".\")")
	cmd.Flags().String("background-url", "", "public URL of the image for background removal")
	cmd.Flags().String("mode", "", "segmentation mode: backgroundRemoval|foregroundMatting")
	cmd.Flags().String("backend", backendAzure, "analysis backend: azure|ollama|llamacpp")
	cmd.Flags().String("ollama-url", "", "Ollama server URL")
	cmd.Flags().String("llamacpp-url", "", "llama.cpp server URL")
	cmd.Flags().String("model", "", "vision model of the local backend")
	cmd.Flags().String("color", "", "outline color name or #rrggbb")
	cmd.Flags().Int("stroke", 0, "outline width in pixels")
	cmd.Flags().BoolP("markdown", "m", false, "also write analysis.md")
	cmd.Flags().BoolP("json", "j", false, "also write analysis.json")
	cmd.Flags().Bool("crops", false, "also save every detected object as its own image")
	cmd.Flags().String("crop-aspect", "", "expand crops to square|portrait|landscape|widescreen or W:H")
	cmd.Flags().Bool("skip-background", false, "do not call background removal")

	cmd.AddCommand(cli.NewInitCmd())
	cmd.AddCommand(cli.NewVersionCmd("imageanalysis"))
	return cmd
}

// applyFlags overlays explicitly set flags onto cfg
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("out-dir") {
		cfg.Output.Dir, _ = flags.GetString("out-dir")
	}
	if flags.Changed("mode") {
		cfg.Background.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("ollama-url") {
		cfg.Ollama.URL, _ = flags.GetString("ollama-url")
	}
	if flags.Changed("llamacpp-url") {
		cfg.LlamaCpp.URL, _ = flags.GetString("llamacpp-url")
	}
	if flags.Changed("model") {
		model, _ := flags.GetString("model")
		cfg.Ollama.Model = model
		cfg.LlamaCpp.Model = model
	}
	if flags.Changed("color") {
		cfg.Render.Color, _ = flags.GetString("color")
	}
	if flags.Changed("stroke") {
		cfg.Render.Stroke, _ = flags.GetInt("stroke")
	}
	if flags.Changed("crops") {
		cfg.Output.Crops, _ = flags.GetBool("crops")
	}
	if flags.Changed("crop-aspect") {
		cfg.Output.CropAspect, _ = flags.GetString("crop-aspect")
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, logger, err := cli.Setup(cmd)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	imagePath := defaultImage
	if len(args) > 0 {
		imagePath = args[0]
	}

	backend, _ := cmd.Flags().GetString("backend")
	backend = strings.ToLower(backend)
	skipBackground, _ := cmd.Flags().GetBool("skip-background")
	needAzure := backend == backendAzure || !skipBackground

	if needAzure {
		err = cfg.Validate()
	} else {
		err = cfg.ValidateOutput()
	}
	if err != nil {
		return err
	}
	if err := checkBackend(backend); err != nil {
		return err
	}
	if !utils.FileExists(imagePath) {
		return fmt.Errorf("image not found: %s", imagePath)
	}
	if !utils.IsImageFile(imagePath) {
		return fmt.Errorf("unsupported image file: %s", imagePath)
	}

	var transport *azure.Client
	if needAzure {
		transport, err = azure.NewClient(cfg.Service.Endpoint, cfg.Service.Key, cfg.Service.Timeout, logger)
		if err != nil {
			return err
		}
	}

	visionClient, err := newVisionClient(backend, cfg, transport, logger)
	if err != nil {
		return err
	}

	var remover client.BackgroundRemover
	if !skipBackground {
		remover, err = vision.NewBackgroundRemover(transport, cfg.Background.Mode)
		if err != nil {
			return err
		}
	}

	writeMarkdown, _ := cmd.Flags().GetBool("markdown")
	writeJSON, _ := cmd.Flags().GetBool("json")
	ia, err := imageanalyzer.New(visionClient, remover, imageanalyzer.Options{
		OutputDir:      cfg.Output.Dir,
		ObjectsFile:    cfg.Output.ObjectsFile,
		BackgroundFile: cfg.Output.BackgroundFile,
		Quality:        cfg.Output.Quality,
		MaxDimension:   cfg.Vision.MaxDimension,
		Render:         types.RenderOptions{OutlineColor: cfg.Render.Color, Stroke: cfg.Render.Stroke},
		WriteJSON:      writeJSON,
		WriteMarkdown:  writeMarkdown,
		Crops:          cfg.Output.Crops,
		CropsDir:       cfg.Output.CropsDir,
		CropAspect:     cfg.Output.CropAspect,
		CropPadding:    cfg.Output.CropPad,
	}, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	analysis, err := ia.AnalyzeFile(ctx, imagePath, out)
	if err != nil {
		return err
	}
	if n := len(analysis.CropPaths); n > 0 {
		fmt.Fprintf(out, " %d object crops saved in %s\n", n, filepath.Dir(analysis.CropPaths[0]))
	}
	for _, p := range analysis.ReportPaths {
		fmt.Fprintln(out, " Report saved in", p)
	}

	if skipBackground {
		return nil
	}

	imageURL, _ := cmd.Flags().GetString("background-url")
	if imageURL == "" {
		imageURL = cfg.BackgroundURL(imagePath)
	}
	_, err = ia.RemoveBackground(ctx, imageURL, out)
	return err
}

func checkBackend(backend string) error {
	switch backend {
	case backendAzure, backendOllama, backendLlamaCpp:
		return nil
	}
	return fmt.Errorf("unknown backend: %s (use %s, %s or %s)", backend, backendAzure, backendOllama, backendLlamaCpp)
}

func newVisionClient(backend string, cfg *config.Config, transport *azure.Client, logger *slog.Logger) (client.VisionClient, error) {
	switch backend {
	case backendAzure:
		logger.Debug("using azure backend", "endpoint", transport.Endpoint())
		return vision.NewClient(transport, vision.Options{
			Features:             cfg.Vision.Features,
			Language:             cfg.Vision.Language,
			GenderNeutralCaption: cfg.Vision.GenderNeutralCaption,
		}), nil
	case backendOllama:
		logger.Debug("using ollama backend", "url", cfg.Ollama.URL, "model", cfg.Ollama.Model)
		return ollama.NewClient(cfg.Ollama.URL, cfg.Ollama.Model)
	case backendLlamaCpp:
		logger.Debug("using llama.cpp backend", "url", cfg.LlamaCpp.URL, "model", cfg.LlamaCpp.Model)
		return llamacpp.NewClient(cfg.LlamaCpp.URL, cfg.LlamaCpp.Model)
	default:
		return nil, checkBackend(backend)
	}
}
