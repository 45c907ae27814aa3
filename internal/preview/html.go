package preview

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"

	"github.com/ambuda-org/proofkit/internal/proofing"
)

// Builder builds a single HTML reading document from proofread pages.
type Builder struct {
	title string
	pages []pageContent
	// TextFilter, when set, rewrites the text of every lang="sa" element.
	TextFilter func(string) string
}

type pageContent struct {
	number int
	blocks []proofing.Block
}

// NewBuilder creates a Builder for a document with the given title.
func NewBuilder(title string) *Builder {
	return &Builder{title: title}
}

// AddPage extracts the blocks of page and appends them as the next page.
func (b *Builder) AddPage(page proofing.Page) error {
	number := len(b.pages) + 1
	blocks, err := proofing.PageBlocks(page)
	if err != nil {
		return fmt.Errorf("page %d: %w", number, err)
	}
	b.pages = append(b.pages, pageContent{number: number, blocks: blocks})
	return nil
}

// PageCount returns the number of pages added so far.
func (b *Builder) PageCount() int {
	return len(b.pages)
}

// Build generates the integrated HTML document.
func (b *Builder) Build() (string, error) {
	templateHTML := `<html xmlns="http://www.w3.org/1999/xhtml"><head><meta charset="utf-8"/></head><body></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(templateHTML))
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	title := b.title
	if title == "" {
		title = "Untitled"
	}
	doc.Find("head").AppendHtml("<title>" + html.EscapeString(title) + "</title>")

	body := doc.Find("body")
	for _, page := range b.pages {
		var pageHTML strings.Builder
		fmt.Fprintf(&pageHTML, `<div class="page" id="page-%d">`, page.number)
		fmt.Fprintf(&pageHTML, `<hr class="pb" data-n="%d"/>`, page.number)
		for _, block := range page.blocks {
			pageHTML.WriteString(blockHTML(block))
		}
		pageHTML.WriteString("</div>")
		body.AppendHtml(pageHTML.String())
	}

	if b.TextFilter != nil {
		FilterSanskritText(doc.Selection, b.TextFilter)
	}

	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to generate HTML: %w", err)
	}
	return out, nil
}

// RenderHTML renders pages as an HTML reading preview titled from meta.
// filter may be nil.
func RenderHTML(meta proofing.Metadata, pages []proofing.Page, filter func(string) string) (string, error) {
	b := NewBuilder(meta[proofing.MetaTitle])
	b.TextFilter = filter
	for _, p := range pages {
		if err := b.AddPage(p); err != nil {
			return "", err
		}
	}
	return b.Build()
}

func blockHTML(block proofing.Block) string {
	if proofing.Classify(block) == proofing.Verse {
		lines := make([]string, len(block))
		for i, line := range block {
			lines[i] = `<span class="l">` + html.EscapeString(line) + `</span>`
		}
		return `<div class="verse" lang="sa">` + strings.Join(lines, "<br/>") + `</div>`
	}
	return `<p lang="sa">` + html.EscapeString(proofing.JoinProse(block)) + `</p>`
}

// FilterSanskritText applies fn to every text node inside an element marked
// lang="sa". Text in other languages is left alone.
func FilterSanskritText(sel *goquery.Selection, fn func(string) string) {
	sel.Find(`[lang="sa"]`).Each(func(i int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			filterTextNodes(node, fn)
		}
	})
}

func filterTextNodes(n *nethtml.Node, fn func(string) string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case nethtml.TextNode:
			c.Data = fn(c.Data)
		case nethtml.ElementNode:
			// Nested lang="sa" elements are visited by the outer Find.
			if attr(c, "lang") != "" {
				continue
			}
			filterTextNodes(c, fn)
		}
	}
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
