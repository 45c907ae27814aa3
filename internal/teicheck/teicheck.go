// Package teicheck re-reads published TEI documents and summarises their
// structure, so a publication run can verify what it wrote.
package teicheck

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var (
	ErrNotTEI        = errors.New("document root is not <TEI>")
	ErrPageNumbering = errors.New("page breaks are not numbered 1..N")
)

var (
	titleExpr = xpath.MustCompile(`//teiHeader//titleStmt/title[@type='main']`)
	pbExpr    = xpath.MustCompile(`//body//pb`)
	lgExpr    = xpath.MustCompile(`//body//lg`)
	lExpr     = xpath.MustCompile(`//body//lg/l`)
	pExpr     = xpath.MustCompile(`//body//p`)
)

// Summary describes the body of a TEI document.
type Summary struct {
	Title       string
	Language    string
	Pages       []int // n attribute of each <pb>, in document order
	VerseGroups int
	VerseLines  int
	Paragraphs  int
}

// Inspect parses a TEI document and summarises it.
func Inspect(data []byte) (*Summary, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing TEI: %w", err)
	}

	root := documentElement(doc)
	if root == nil || root.Data != "TEI" {
		return nil, ErrNotTEI
	}

	s := &Summary{
		VerseGroups: len(xmlquery.QuerySelectorAll(doc, lgExpr)),
		VerseLines:  len(xmlquery.QuerySelectorAll(doc, lExpr)),
		Paragraphs:  len(xmlquery.QuerySelectorAll(doc, pExpr)),
	}
	if title := xmlquery.QuerySelector(doc, titleExpr); title != nil {
		s.Title = strings.TrimSpace(title.InnerText())
	}
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == "text" {
			s.Language = langAttr(child)
			break
		}
	}

	for _, pb := range xmlquery.QuerySelectorAll(doc, pbExpr) {
		raw := pb.SelectAttr("n")
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("page break with invalid n=%q: %w", raw, err)
		}
		s.Pages = append(s.Pages, n)
	}
	return s, nil
}

// Check inspects a document and verifies that page breaks run 1..N.
func Check(data []byte) (*Summary, error) {
	s, err := Inspect(data)
	if err != nil {
		return nil, err
	}
	for i, n := range s.Pages {
		if n != i+1 {
			return s, fmt.Errorf("%w: position %d has n=%d", ErrPageNumbering, i+1, n)
		}
	}
	return s, nil
}

func documentElement(doc *xmlquery.Node) *xmlquery.Node {
	for child := doc.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

// langAttr returns xml:lang whichever way the parser recorded its prefix.
func langAttr(n *xmlquery.Node) string {
	for _, attr := range n.Attr {
		if attr.Name.Local == "lang" {
			return attr.Value
		}
	}
	return ""
}
