package ocr

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestPostProcess(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"रामः |", "रामः ।"},
		{"सीता ||", "सीता ॥"},
		{"a || b | c", "a ॥ b । c"},
		{"||| x", "॥। x"},
		{"।। end", "॥ end"},
		{"‘quoted’ “text”", `'quoted' "text"`},
		{"no change", "no change"},
	}
	for _, tt := range tests {
		if got := PostProcess(tt.in); got != tt.want {
			t.Errorf("PostProcess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPostProcess_KeepsCodepoints(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"\u0958 ab||", "\u0958 ab॥"},
		{"sam\u0323dhi", "sam\u0323dhi"},
	}
	for _, tt := range tests {
		if got := PostProcess(tt.in); got != tt.want {
			t.Errorf("PostProcess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComposeNFC(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		// m + combining dot below composes to U+1E43.
		{"sam\u0323dhi", "sa\u1e43dhi"},
		{"\u0958", "\u0915\u093c"},
	}
	for _, tt := range tests {
		if got := ComposeNFC(tt.in); got != tt.want {
			t.Errorf("ComposeNFC(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBoundingBoxes_RoundTrip(t *testing.T) {
	boxes := []BoundingBox{
		{X1: 1, Y1: 2, X2: 30, Y2: 40, Text: "रामः"},
		{X1: 35, Y1: 2, X2: 80, Y2: 41, Text: "has\ttab"},
	}
	tsv := SerializeBoundingBoxes(boxes)
	if want := "1\t2\t30\t40\tरामः\n35\t2\t80\t41\thas\ttab"; tsv != want {
		t.Fatalf("SerializeBoundingBoxes() = %q, want %q", tsv, want)
	}

	got, err := ParseBoundingBoxes(tsv + "\n\n")
	if err != nil {
		t.Fatalf("ParseBoundingBoxes() error = %v", err)
	}
	if !reflect.DeepEqual(got, boxes) {
		t.Fatalf("ParseBoundingBoxes() = %+v, want %+v", got, boxes)
	}
}

func TestParseBoundingBoxes_Malformed(t *testing.T) {
	for _, in := range []string{"1\t2\t3\tword", "a\t2\t3\t4\tword"} {
		if _, err := ParseBoundingBoxes(in); !errors.Is(err, ErrMalformedBox) {
			t.Errorf("ParseBoundingBoxes(%q) error = %v, want ErrMalformedBox", in, err)
		}
	}
}

const sampleResponse = `{
  "fullTextAnnotation": {
    "pages": [{
      "width": 100, "height": 200,
      "blocks": [{
        "paragraphs": [{
          "words": [
            {
              "boundingBox": {"vertices": [{"x": 10, "y": 5}, {"x": 40, "y": 5}, {"x": 40, "y": 20}, {"y": 20}]},
              "symbols": [{"text": "r"}, {"text": "a"}, {"text": "m"}, {"text": "a", "property": {"detectedBreak": {"type": "HYPHEN"}}}]
            },
            {
              "boundingBox": {"vertices": [{"x": 0, "y": 25}, {"x": 30, "y": 25}, {"x": 30, "y": 40}, {"x": 0, "y": 40}]},
              "symbols": [{"text": "y"}, {"text": "a"}, {"text": "n"}, {"text": "a", "property": {"detectedBreak": {"type": 1}}}]
            },
            {
              "boundingBox": {"vertices": [{"x": 35, "y": 25}, {"x": 45, "y": 25}, {"x": 45, "y": 40}, {"x": 35, "y": 40}]},
              "symbols": [{"text": "|"}, {"text": "|", "property": {"detectedBreak": {"type": "LINE_BREAK"}}}]
            }
          ]
        }]
      }]
    }]
  }
}`

func TestAssemble(t *testing.T) {
	resp, err := ParseResponse([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	got := Assemble(resp)

	if want := "rama-\nyana ॥\n\n"; got.Text != want {
		t.Fatalf("Text = %q, want %q", got.Text, want)
	}
	wantBoxes := []BoundingBox{
		{X1: 0, Y1: 5, X2: 40, Y2: 20, Text: "rama"},
		{X1: 0, Y1: 25, X2: 30, Y2: 40, Text: "yana"},
		{X1: 35, Y1: 25, X2: 45, Y2: 40, Text: "||"},
	}
	if !reflect.DeepEqual(got.Boxes, wantBoxes) {
		t.Fatalf("Boxes = %+v, want %+v", got.Boxes, wantBoxes)
	}
}

func TestParseResponse_DoubleEncoded(t *testing.T) {
	wrapped, err := json.Marshal(sampleResponse)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ParseResponse(wrapped)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if len(resp.FullTextAnnotation.Pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(resp.FullTextAnnotation.Pages))
	}
}

func TestParseResponse_Errors(t *testing.T) {
	if _, err := ParseResponse([]byte(`{}`)); !errors.Is(err, ErrNoAnnotation) {
		t.Errorf("error = %v, want ErrNoAnnotation", err)
	}
	if _, err := ParseResponse([]byte(`{"fullTextAnnotation":`)); err == nil {
		t.Error("expected parse error")
	}
	bad := `{"fullTextAnnotation":{"pages":[{"blocks":[{"paragraphs":[{"words":[{"symbols":[{"text":"a","property":{"detectedBreak":{"type":"BOGUS"}}}]}]}]}]}]}}`
	if _, err := ParseResponse([]byte(bad)); err == nil {
		t.Error("expected error for unknown break type")
	}
}
