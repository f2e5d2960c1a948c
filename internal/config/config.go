package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/menta2k/cognitive-demos/pkg/cropper"
	"github.com/menta2k/cognitive-demos/pkg/processing"
	"github.com/menta2k/cognitive-demos/pkg/vision"
)

const (
	// AppName names the XDG config directory
	AppName = "cognitive-demos"

	// Environment variables holding the resource settings
	EnvEndpoint = "AI_SERVICE_ENDPOINT"
	EnvKey      = "AI_SERVICE_KEY"

	// DefaultBackgroundBaseURL hosts the lab images so the service can fetch them
	DefaultBackgroundBaseURL = "https://github.com/MicrosoftLearning/mslearn-ai-vision/blob/main/Labfiles/01-analyze-images/Python/image-analysis/"
)

// Config holds the application configuration
type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Vision     VisionConfig     `yaml:"vision"`
	Background BackgroundConfig `yaml:"background"`
	Output     OutputConfig     `yaml:"output"`
	Render     RenderConfig     `yaml:"render"`
	Ollama     ModelConfig      `yaml:"ollama"`
	LlamaCpp   ModelConfig      `yaml:"llamacpp"`
	Server     ServerConfig     `yaml:"server"`
}

// ServiceConfig identifies the Azure resource. Key is normally left out of
// the file and supplied by the environment.
type ServiceConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Key      string        `yaml:"key"`
	Timeout  time.Duration `yaml:"timeout"`
}

// VisionConfig holds the analyze request settings
type VisionConfig struct {
	Features             []string `yaml:"features"`
	Language             string   `yaml:"language"`
	GenderNeutralCaption bool     `yaml:"gender_neutral_caption"`
	MaxDimension         int      `yaml:"max_dimension"`
}

// BackgroundConfig controls the segmentation call
type BackgroundConfig struct {
	BaseURL string `yaml:"base_url"`
	Mode    string `yaml:"mode"`
}

// OutputConfig names the files written by the image flow
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	ObjectsFile    string `yaml:"objects_file"`
	BackgroundFile string `yaml:"background_file"`
	Quality        int    `yaml:"quality"`

	// Crops writes every detected object to CropsDir as its own image
	Crops      bool    `yaml:"crops"`
	CropsDir   string  `yaml:"crops_dir"`
	CropAspect string  `yaml:"crop_aspect"`
	CropPad    float64 `yaml:"crop_padding"`
}

// RenderConfig controls the box overlay
type RenderConfig struct {
	Color  string `yaml:"color"`
	Stroke int    `yaml:"stroke"`
}

// ModelConfig locates a local model server used as analysis backend
type ModelConfig struct {
	URL   string `yaml:"url"`
	Model string `yaml:"model"`
}

// ServerConfig is the listen address of the language web form
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	CountryHint string `yaml:"country_hint"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Timeout: 60 * time.Second,
		},
		Vision: VisionConfig{
			Features:     append([]string(nil), vision.DefaultFeatures...),
			Language:     "en",
			MaxDimension: 4096,
		},
		Background: BackgroundConfig{
			BaseURL: DefaultBackgroundBaseURL,
			Mode:    vision.ModeBackgroundRemoval,
		},
		Output: OutputConfig{
			Dir:            ".",
			ObjectsFile:    "objects.jpg",
			BackgroundFile: "background.png",
			Quality:        90,
			CropsDir:       "objects",
			CropPad:        0.1,
		},
		Render: RenderConfig{
			Color:  processing.DefaultOutlineColor,
			Stroke: processing.DefaultStroke,
		},
		Ollama: ModelConfig{
			URL: "http://localhost:11434",
		},
		LlamaCpp: ModelConfig{
			URL: "http://localhost:8080",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:5000",
		},
	}
}

// LoadFromFile overlays a YAML file onto the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, filename)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads filename when given, otherwise the XDG default if it exists,
// then applies the environment.
func Load(filename string) (*Config, error) {
	var (
		config *Config
		err    error
	)
	switch {
	case filename != "":
		config, err = LoadFromFile(filename)
	default:
		config, err = LoadFromFile(GetConfigPath())
		if errors.Is(err, ErrConfigNotFound) {
			config, err = Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if err := config.ApplyEnv(".env"); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv loads dotenv (if the file exists) and lets the environment
// override the service endpoint and key. Variables already set in the
// process environment win over the file.
func (c *Config) ApplyEnv(dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvEndpoint)); v != "" {
		c.Service.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvKey)); v != "" {
		c.Service.Key = v
	}
	return nil
}

// SaveToFile writes the configuration as YAML, leaving the key out
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out := *c
	out.Service.Key = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ValidateService checks only what every remote call needs
func (c *Config) ValidateService() error {
	if c.Service.Endpoint == "" {
		return ErrMissingEndpoint
	}
	u, err := url.Parse(c.Service.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, c.Service.Endpoint)
	}
	if c.Service.Key == "" {
		return ErrMissingKey
	}
	if c.Service.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.ValidateService(); err != nil {
		return err
	}
	return c.ValidateOutput()
}

// ValidateLanguage checks the country hint of the language flow and rewrites
// it to its canonical region code. "none" disables the service default.
func (c *Config) ValidateLanguage() error {
	hint := strings.TrimSpace(c.Server.CountryHint)
	if hint == "" || strings.EqualFold(hint, "none") {
		c.Server.CountryHint = strings.ToLower(hint)
		return nil
	}
	if !isLetters(hint) || (len(hint) != 2 && len(hint) != 3) {
		return fmt.Errorf("%w: %q", ErrInvalidCountryHint, hint)
	}
	region, err := language.ParseRegion(hint)
	if err != nil || !region.IsCountry() {
		return fmt.Errorf("%w: %q", ErrInvalidCountryHint, hint)
	}
	c.Server.CountryHint = region.String()
	return nil
}

func isLetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// ValidateOutput checks the local settings of the image flow
func (c *Config) ValidateOutput() error {
	if len(c.Vision.Features) == 0 {
		return ErrNoFeatures
	}

	if c.Background.Mode != vision.ModeBackgroundRemoval && c.Background.Mode != vision.ModeForegroundMatting {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Background.Mode)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return ErrInvalidQuality
	}

	if c.Render.Stroke < 1 || c.Render.Stroke > 50 {
		return ErrInvalidStroke
	}

	if _, err := processing.ParseColor(c.Render.Color); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}

	if _, err := cropper.ParseAspectRatio(c.Output.CropAspect); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCrop, err)
	}
	if c.Output.CropPad < 0 || c.Output.CropPad > 1 {
		return fmt.Errorf("%w: padding %v outside [0,1]", ErrInvalidCrop, c.Output.CropPad)
	}

	return nil
}

// BackgroundURL returns the public URL the segmentation service fetches for imagePath
func (c *Config) BackgroundURL(imagePath string) string {
	base := c.Background.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(filepath.Base(imagePath)) + "?raw=true"
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}
