package proofing

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  Kind
	}{
		{"double danda", Block{"रामः।", "सीता।॥"}, Verse},
		{"single danda", Block{"रामः।"}, Prose},
		{"danda inside line", Block{"॥ a"}, Prose},
		{"only last line counts", Block{"a॥", "b"}, Prose},
		{"plain", Block{"hello"}, Prose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.block); got != tt.want {
				t.Fatalf("Classify(%q) = %v, want %v", tt.block, got, tt.want)
			}
		})
	}
}

func TestJoinProse(t *testing.T) {
	tests := []struct {
		block Block
		want  string
	}{
		{Block{"rama-", "yana"}, "ramayana"},
		{Block{"rama", "yana"}, "rama yana"},
		{Block{"a-", "b-", "c"}, "abc"},
		{Block{"ends with-"}, "ends with"},
		{Block{"one"}, "one"},
	}
	for _, tt := range tests {
		if got := JoinProse(tt.block); got != tt.want {
			t.Errorf("JoinProse(%q) = %q, want %q", tt.block, got, tt.want)
		}
	}
}

func TestRenderText_VerseExample(t *testing.T) {
	pages := []Page{legacy("रामः।\nसीता।॥"), legacy("")}
	got, err := RenderText(pages)
	if err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	want := "रामः।\nसीता।॥"
	if got != want {
		t.Fatalf("RenderText() = %q, want %q", got, want)
	}
}

func TestRenderText_StructuredHyphenJoin(t *testing.T) {
	got, err := RenderText([]Page{structured(`{"blocks":[["word1-","word2"]]}`)})
	if err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	if got != "word1word2" {
		t.Fatalf("RenderText() = %q, want %q", got, "word1word2")
	}
}

func TestRenderText_MixedBlocks(t *testing.T) {
	pages := []Page{
		legacy("first para-\ngraph here\n\nक।\nख॥"),
		structured(`{"blocks":[["next","page"]]}`),
	}
	got, err := RenderText(pages)
	if err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	want := "first paragraph here\n\nक।\nख॥\n\nnext page"
	if got != want {
		t.Fatalf("RenderText() = %q, want %q", got, want)
	}
}

func TestRenderText_ParagraphContinuesAcrossPages(t *testing.T) {
	got, err := RenderText([]Page{legacy("a bro-"), legacy("ken word")})
	if err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	if got != "a broken word" {
		t.Fatalf("RenderText() = %q, want %q", got, "a broken word")
	}
}

func TestRenderText_Empty(t *testing.T) {
	got, err := RenderText(nil)
	if err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	if got != "" {
		t.Fatalf("RenderText() = %q, want empty", got)
	}
}

func TestRenderText_MalformedStructuredPage(t *testing.T) {
	if _, err := RenderText([]Page{legacy("ok"), structured("{")}); err == nil {
		t.Fatal("expected error for malformed structured page")
	}
}

func TestRenderText_VerseBoundariesSurviveResplit(t *testing.T) {
	verses := []Block{
		{"धर्मक्षेत्रे कुरुक्षेत्रे।", "समवेता युयुत्सवः॥"},
		{"मामकाः पाण्डवाश्चैव।", "किमकुर्वत सञ्जय॥"},
		{"एकः॥"},
	}
	var parts []string
	for _, v := range verses {
		parts = append(parts, strings.Join(v, "\n"))
	}
	out, err := RenderText([]Page{legacy(strings.Join(parts, "\n\n\n"))})
	if err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}

	again, err := PageBlocks(legacy(out))
	if err != nil {
		t.Fatalf("PageBlocks() error = %v", err)
	}
	if !reflect.DeepEqual(again, verses) {
		t.Fatalf("re-split blocks = %q, want %q", again, verses)
	}
}
