package ocr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoAnnotation = errors.New("response has no fullTextAnnotation")

// BreakType is the detected break after a symbol.
type BreakType int

const (
	BreakUnknown BreakType = iota
	BreakSpace
	BreakSureSpace
	BreakEOLSureSpace
	BreakHyphen
	BreakLineBreak
)

var breakTypeNames = map[string]BreakType{
	"UNKNOWN":        BreakUnknown,
	"SPACE":          BreakSpace,
	"SURE_SPACE":     BreakSureSpace,
	"EOL_SURE_SPACE": BreakEOLSureSpace,
	"HYPHEN":         BreakHyphen,
	"LINE_BREAK":     BreakLineBreak,
}

// UnmarshalJSON accepts the enum either by name or by number.
func (b *BreakType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		v, ok := breakTypeNames[name]
		if !ok {
			return fmt.Errorf("unknown break type %q", name)
		}
		*b = v
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid break type %s: %w", data, err)
	}
	*b = BreakType(n)
	return nil
}

// Response is the subset of a Vision AnnotateImageResponse used here.
type Response struct {
	FullTextAnnotation *TextAnnotation `json:"fullTextAnnotation"`
}

type TextAnnotation struct {
	Text  string `json:"text"`
	Pages []Page `json:"pages"`
}

type Page struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Blocks []Block `json:"blocks"`
}

type Block struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

type Paragraph struct {
	Words []Word `json:"words"`
}

type Word struct {
	BoundingBox BoundingPoly `json:"boundingBox"`
	Symbols     []Symbol     `json:"symbols"`
}

type BoundingPoly struct {
	Vertices []Vertex `json:"vertices"`
}

type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Symbol struct {
	Text     string `json:"text"`
	Property struct {
		DetectedBreak struct {
			Type BreakType `json:"type"`
		} `json:"detectedBreak"`
	} `json:"property"`
}

// Result is assembled OCR output ready for proofreading.
type Result struct {
	// Text is the post-processed plain text.
	Text  string
	Boxes []BoundingBox
}

// ParseResponse decodes a saved response. Responses cached as a JSON string
// holding the JSON document are unwrapped first.
func ParseResponse(data []byte) (*Response, error) {
	data, err := unwrapCached(data)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse OCR response: %w", err)
	}
	if resp.FullTextAnnotation == nil {
		return nil, ErrNoAnnotation
	}
	return &resp, nil
}

func unwrapCached(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		return data, nil
	}
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, fmt.Errorf("failed to unwrap cached response: %w", err)
	}
	return []byte(inner), nil
}

// Assemble rebuilds the page text from symbols and their detected breaks and
// collects one bounding box per word.
func Assemble(resp *Response) Result {
	var (
		sb    strings.Builder
		boxes []BoundingBox
	)
	for _, page := range resp.FullTextAnnotation.Pages {
		for _, block := range page.Blocks {
			for _, para := range block.Paragraphs {
				for _, w := range para.Words {
					var word strings.Builder
					for _, s := range w.Symbols {
						word.WriteString(s.Text)
					}
					boxes = append(boxes, wordBox(w.BoundingBox, word.String()))

					for _, s := range w.Symbols {
						sb.WriteString(s.Text)
						sb.WriteString(breakText(s.Property.DetectedBreak.Type))
					}
				}
			}
		}
	}
	return Result{Text: PostProcess(sb.String()), Boxes: boxes}
}

func breakText(t BreakType) string {
	switch t {
	case BreakSpace, BreakSureSpace:
		return " "
	case BreakEOLSureSpace:
		return "\n"
	case BreakHyphen:
		return "-\n"
	case BreakLineBreak:
		return "\n\n"
	default:
		return ""
	}
}

func wordBox(poly BoundingPoly, text string) BoundingBox {
	if len(poly.Vertices) == 0 {
		return BoundingBox{Text: text}
	}
	b := BoundingBox{
		X1: poly.Vertices[0].X, Y1: poly.Vertices[0].Y,
		X2: poly.Vertices[0].X, Y2: poly.Vertices[0].Y,
		Text: text,
	}
	for _, v := range poly.Vertices[1:] {
		b.X1 = min(b.X1, v.X)
		b.Y1 = min(b.Y1, v.Y)
		b.X2 = max(b.X2, v.X)
		b.Y2 = max(b.Y2, v.Y)
	}
	return b
}
