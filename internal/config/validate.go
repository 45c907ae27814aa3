package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	switch c.Publication.Format {
	case "text", "tei", "html":
	default:
		return fmt.Errorf("publication.format must be text, tei, or html (got %q)", c.Publication.Format)
	}
	return c.validateRegions()
}

func (c *Config) validateLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

func (c *Config) validateRegions() error {
	if c.Regions.PageWidth < 0 || c.Regions.PageHeight < 0 {
		return errors.New("regions.page_width and regions.page_height must be positive")
	}
	if c.Regions.MaxGroupNumber < 0 {
		return errors.New("regions.max_group_number must be zero or positive")
	}
	if c.Regions.CropQuality < 1 || c.Regions.CropQuality > 100 {
		return errors.New("regions.crop_quality must be between 1 and 100")
	}
	if c.Regions.CropPadding < 0 {
		return errors.New("regions.crop_padding must be zero or positive")
	}
	if f := c.Regions.ImageNameFormat; strings.Contains(fmt.Sprintf(f, 1), "%!") || fmt.Sprintf(f, 1) == fmt.Sprintf(f, 2) {
		return fmt.Errorf("regions.image_name_format must hold one integer verb such as %%d (got %q)", f)
	}
	return nil
}
