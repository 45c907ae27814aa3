package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Database locates the proofing SQLite database.
type Database struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Publication holds publishing defaults. Metadata supplies TEI header
// variables shared by every book, such as a publisher location.
type Publication struct {
	Format   string            `toml:"format"`
	Check    bool              `toml:"check"`
	Metadata map[string]string `toml:"metadata"`
}

// Regions configures line-group mining and cropping.
type Regions struct {
	// PageWidth and PageHeight are the editor's page coordinate space.
	PageWidth      float64 `toml:"page_width"`
	PageHeight     float64 `toml:"page_height"`
	ImageURLPrefix string  `toml:"image_url_prefix"`
	PageURLPrefix  string  `toml:"page_url_prefix"`
	// MaxGroupNumber drops groups numbered above it. Zero keeps all.
	MaxGroupNumber int    `toml:"max_group_number"`
	ImagesDir      string `toml:"images_dir"`
	// ImageNameFormat is a fmt pattern applied to the page ID.
	ImageNameFormat string `toml:"image_name_format"`
	CropQuality     int    `toml:"crop_quality"`
	CropPadding     int    `toml:"crop_padding"`
}

// OCR configures files written when assembling OCR responses.
type OCR struct {
	BoxesExtension string `toml:"boxes_extension"`
}

// Config encapsulates all configuration values for proofkit.
type Config struct {
	Database    Database    `toml:"database"`
	Logging     Logging     `toml:"logging"`
	Publication Publication `toml:"publication"`
	Regions     Regions     `toml:"regions"`
	OCR         OCR         `toml:"ocr"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/proofkit/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the resolved path, and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("proofkit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// PageImagePath returns the local scan of a page.
func (c *Config) PageImagePath(pageID int64) string {
	return filepath.Join(c.Regions.ImagesDir, fmt.Sprintf(c.Regions.ImageNameFormat, pageID))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
