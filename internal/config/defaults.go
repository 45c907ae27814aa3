package config

const (
	defaultDatabasePath    = "~/.local/share/proofkit/proofing.db"
	defaultLogFormat       = "text"
	defaultLogLevel        = "info"
	defaultPublishFormat   = "text"
	defaultPageWidth       = 3309
	defaultPageHeight      = 4678
	defaultMaxGroupNumber  = 0
	defaultCropQuality     = 85
	defaultCropPadding     = 8
	defaultImagesDir       = "~/.local/share/proofkit/images"
	defaultImageNameFormat = "%d.jpg"
	defaultBoxesExtension  = ".tsv"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: Database{
			Path: defaultDatabasePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Publication: Publication{
			Format:   defaultPublishFormat,
			Metadata: map[string]string{},
		},
		Regions: Regions{
			PageWidth:       defaultPageWidth,
			PageHeight:      defaultPageHeight,
			MaxGroupNumber:  defaultMaxGroupNumber,
			ImagesDir:       defaultImagesDir,
			ImageNameFormat: defaultImageNameFormat,
			CropQuality:     defaultCropQuality,
			CropPadding:     defaultCropPadding,
		},
		OCR: OCR{
			BoxesExtension: defaultBoxesExtension,
		},
	}
}
