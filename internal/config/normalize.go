package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if strings.TrimSpace(c.Database.Path) == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Database.Path, err = expandPath(c.Database.Path); err != nil {
		return fmt.Errorf("database.path: %w", err)
	}

	c.normalizeLogging()

	c.Publication.Format = strings.ToLower(strings.TrimSpace(c.Publication.Format))
	if c.Publication.Format == "" {
		c.Publication.Format = defaultPublishFormat
	}
	if c.Publication.Metadata == nil {
		c.Publication.Metadata = map[string]string{}
	}

	if err := c.normalizeRegions(); err != nil {
		return err
	}

	c.OCR.BoxesExtension = strings.TrimSpace(c.OCR.BoxesExtension)
	if c.OCR.BoxesExtension == "" {
		c.OCR.BoxesExtension = defaultBoxesExtension
	}
	if !strings.HasPrefix(c.OCR.BoxesExtension, ".") {
		c.OCR.BoxesExtension = "." + c.OCR.BoxesExtension
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = defaultLogFormat
	case "text", "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeRegions() error {
	var err error
	if c.Regions.PageWidth == 0 {
		c.Regions.PageWidth = defaultPageWidth
	}
	if c.Regions.PageHeight == 0 {
		c.Regions.PageHeight = defaultPageHeight
	}
	c.Regions.ImageURLPrefix = strings.TrimRight(strings.TrimSpace(c.Regions.ImageURLPrefix), "/")
	c.Regions.PageURLPrefix = strings.TrimRight(strings.TrimSpace(c.Regions.PageURLPrefix), "/")
	if strings.TrimSpace(c.Regions.ImagesDir) == "" {
		c.Regions.ImagesDir = defaultImagesDir
	}
	if c.Regions.ImagesDir, err = expandPath(c.Regions.ImagesDir); err != nil {
		return fmt.Errorf("regions.images_dir: %w", err)
	}
	if strings.TrimSpace(c.Regions.ImageNameFormat) == "" {
		c.Regions.ImageNameFormat = defaultImageNameFormat
	}
	if c.Regions.CropQuality == 0 {
		c.Regions.CropQuality = defaultCropQuality
	}
	return nil
}
