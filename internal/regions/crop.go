package regions

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

const defaultJPEGQuality = 85

// CropURL returns the archive.org image URL of the region's crop. Page IDs
// are 1-based; archive.org page images are 0-based. Offsets are truncated
// to two decimals, the height to three, and the size is padded so the crop
// never cuts into the text.
func CropURL(prefix string, r Region, pageWidth, pageHeight float64) string {
	x := truncate(r.XMin/pageWidth, 2)
	y := truncate(r.YMin/pageHeight, 2)
	w := truncate(r.Width/pageWidth, 2) + 0.01
	h := truncate(r.Height/pageHeight, 3) + 0.001
	return fmt.Sprintf("%s/page/n%d_x%s_y%s_w%s_h%s.jpg",
		strings.TrimSuffix(prefix, "/"), r.PageID-1,
		formatFloat(x), formatFloat(y), formatFloat(w), formatFloat(h))
}

func truncate(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Trunc(v*scale) / scale
}

// formatFloat prints the shortest representation, always with a decimal point.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Cropper cuts regions out of local page scans.
type Cropper struct {
	// ImagePath returns the scan of a page.
	ImagePath func(pageID int64) string
	OutDir    string
	// JPEGQuality defaults to 85.
	JPEGQuality int
	// Padding in pixels added on every side, clipped to the image.
	Padding int
}

// CropAll writes one JPEG per region and returns the written paths. Each
// page image is decoded once.
func (c *Cropper) CropAll(rs []Region) ([]string, error) {
	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	quality := c.JPEGQuality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}

	images := make(map[int64]image.Image)
	var paths []string
	for _, r := range rs {
		img, ok := images[r.PageID]
		if !ok {
			src := c.ImagePath(r.PageID)
			var err error
			img, err = imaging.Open(src)
			if err != nil {
				return paths, fmt.Errorf("failed to open page image %q: %w", src, err)
			}
			images[r.PageID] = img
		}

		cropped := imaging.Crop(img, c.cropRect(r, img.Bounds()))
		out := filepath.Join(c.OutDir, fmt.Sprintf("%s-%s-p%d.jpg", r.Name, r.Kind(), r.PageID))
		if err := imaging.Save(cropped, out, imaging.JPEGQuality(quality)); err != nil {
			return paths, fmt.Errorf("failed to save crop %q: %w", out, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}

func (c *Cropper) cropRect(r Region, bounds image.Rectangle) image.Rectangle {
	rect := image.Rect(
		int(math.Floor(r.XMin))-c.Padding,
		int(math.Floor(r.YMin))-c.Padding,
		int(math.Ceil(r.XMin+r.Width))+c.Padding,
		int(math.Ceil(r.YMin+r.Height))+c.Padding,
	)
	return rect.Intersect(bounds)
}
