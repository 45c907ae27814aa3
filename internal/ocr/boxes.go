package ocr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedBox = errors.New("malformed bounding box row")

// BoundingBox is the pixel extent of one OCR word.
type BoundingBox struct {
	X1, Y1, X2, Y2 int
	Text           string
}

// SerializeBoundingBoxes writes boxes as TSV rows: x1, y1, x2, y2, text.
func SerializeBoundingBoxes(boxes []BoundingBox) string {
	rows := make([]string, len(boxes))
	for i, b := range boxes {
		rows[i] = strings.Join([]string{
			strconv.Itoa(b.X1),
			strconv.Itoa(b.Y1),
			strconv.Itoa(b.X2),
			strconv.Itoa(b.Y2),
			b.Text,
		}, "\t")
	}
	return strings.Join(rows, "\n")
}

// ParseBoundingBoxes reads the output of SerializeBoundingBoxes. Blank lines
// are ignored.
func ParseBoundingBoxes(data string) ([]BoundingBox, error) {
	var boxes []BoundingBox
	for i, row := range strings.Split(data, "\n") {
		if strings.TrimSpace(row) == "" {
			continue
		}
		fields := strings.SplitN(row, "\t", 5)
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformedBox, i+1, len(fields))
		}
		var coords [4]int
		for j := range coords {
			v, err := strconv.Atoi(fields[j])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedBox, i+1, err)
			}
			coords[j] = v
		}
		boxes = append(boxes, BoundingBox{
			X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3],
			Text: fields[4],
		})
	}
	return boxes, nil
}
