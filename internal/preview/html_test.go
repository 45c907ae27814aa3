package preview

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/ambuda-org/proofkit/internal/proofing"
)

func parseTestHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func buildTestDocument(t *testing.T, b *Builder, pages ...proofing.Page) *goquery.Document {
	t.Helper()
	for _, p := range pages {
		if err := b.AddPage(p); err != nil {
			t.Fatalf("AddPage() error = %v", err)
		}
	}
	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return parseTestHTML(t, out)
}

func TestBuild_PagesAndBlocks(t *testing.T) {
	b := NewBuilder("Test <Book>")
	doc := buildTestDocument(t, b,
		proofing.Page{Content: "क।\nख॥\n\nrama-\nyana", Version: proofing.SchemaLegacy},
		proofing.Page{Content: `{"blocks":[["a","b"]]}`, Version: proofing.SchemaStructured},
	)

	if got := doc.Find("title").Text(); got != "Test <Book>" {
		t.Fatalf("title = %q", got)
	}
	if n := doc.Find("div.page").Length(); n != 2 {
		t.Fatalf("page count = %d, want 2", n)
	}
	if b.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", b.PageCount())
	}

	pb, _ := doc.Find("#page-2 hr.pb").Attr("data-n")
	if pb != "2" {
		t.Fatalf("page 2 marker data-n = %q", pb)
	}

	verse := doc.Find("#page-1 div.verse")
	if verse.Length() != 1 {
		t.Fatalf("verse count = %d, want 1", verse.Length())
	}
	if n := verse.Find("span.l").Length(); n != 2 {
		t.Fatalf("verse lines = %d, want 2", n)
	}
	if got := doc.Find("#page-1 p").Text(); got != "ramayana" {
		t.Fatalf("prose = %q, want %q", got, "ramayana")
	}
	if got := doc.Find("#page-2 p").Text(); got != "a b" {
		t.Fatalf("prose = %q, want %q", got, "a b")
	}
}

func TestBuild_UntitledAndEmpty(t *testing.T) {
	doc := buildTestDocument(t, NewBuilder(""))
	if got := doc.Find("title").Text(); got != "Untitled" {
		t.Fatalf("title = %q, want Untitled", got)
	}
	if doc.Find("div.page").Length() != 0 {
		t.Fatal("expected no pages")
	}
}

func TestAddPage_Error(t *testing.T) {
	b := NewBuilder("x")
	err := b.AddPage(proofing.Page{Content: "{", Version: proofing.SchemaStructured})
	if err == nil || !strings.Contains(err.Error(), "page 1") {
		t.Fatalf("expected page error, got %v", err)
	}
}

func TestBuild_TextFilter(t *testing.T) {
	b := NewBuilder("x")
	b.TextFilter = strings.ToUpper
	doc := buildTestDocument(t, b,
		proofing.Page{Content: "abc॥", Version: proofing.SchemaLegacy},
	)
	if got := doc.Find("span.l").Text(); got != "ABC॥" {
		t.Fatalf("filtered verse = %q, want %q", got, "ABC॥")
	}
	if got := doc.Find("title").Text(); got != "x" {
		t.Fatalf("title should not be filtered, got %q", got)
	}
}

func TestFilterSanskritText(t *testing.T) {
	doc := parseTestHTML(t, `<html><body><div>bhASAH
<p lang="sa">saMskRtam <b>padam</b></p>
<p lang="en">English</p>
<div lang="sa">outer <span lang="en">inner</span></div>
</div></body></html>`)

	FilterSanskritText(doc.Selection, strings.ToUpper)

	if got := doc.Find(`p[lang="sa"]`).Text(); got != "SAMSKRTAM PADAM" {
		t.Errorf("sa paragraph = %q", got)
	}
	if got := doc.Find(`p[lang="en"]`).Text(); got != "English" {
		t.Errorf("en paragraph = %q", got)
	}
	if got := doc.Find(`span[lang="en"]`).Text(); got != "inner" {
		t.Errorf("nested en span = %q", got)
	}
	if !strings.Contains(doc.Find("body > div").Text(), "bhASAH") {
		t.Error("text outside lang=sa should be untouched")
	}
}

func TestRenderHTML(t *testing.T) {
	meta := proofing.Metadata{proofing.MetaTitle: "Śatakatrayam"}
	out, err := RenderHTML(meta, []proofing.Page{
		{Content: "", Version: proofing.SchemaLegacy},
		{Content: "a\nb॥", Version: proofing.SchemaLegacy},
	}, nil)
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	doc := parseTestHTML(t, out)
	if got := doc.Find("title").Text(); got != "Śatakatrayam" {
		t.Fatalf("title = %q", got)
	}
	if doc.Find("#page-1").Children().Length() != 1 {
		t.Fatal("empty page should only carry its marker")
	}
	if doc.Find("#page-2 span.l").Length() != 2 {
		t.Fatal("expected two verse lines on page 2")
	}

	_, err = RenderHTML(meta, []proofing.Page{{Content: "{", Version: proofing.SchemaStructured}}, nil)
	if err == nil || !strings.Contains(err.Error(), "page 1") {
		t.Fatalf("error = %v, want page 1 error", err)
	}
}

func TestRenderHTML_TextFilter(t *testing.T) {
	meta := proofing.Metadata{proofing.MetaTitle: "abc"}
	out, err := RenderHTML(meta, []proofing.Page{
		{Content: "a\nb॥", Version: proofing.SchemaLegacy},
	}, strings.ToUpper)
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	doc := parseTestHTML(t, out)
	if got := doc.Find("span.l").First().Text(); got != "A" {
		t.Errorf("first line = %q, want filtered text", got)
	}
	if got := doc.Find("title").Text(); got != "abc" {
		t.Errorf("title = %q, want unfiltered", got)
	}
}
