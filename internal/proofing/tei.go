package proofing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"
)

var ErrMissingMetadata = errors.New("missing metadata")

const (
	// TEILanguage is the xml:lang of the text body.
	TEILanguage = "sa-Deva"
	// TEIPlaceholder marks header fields left for manual review.
	TEIPlaceholder = "TODO"

	teiTrailer = "</body></text></TEI>"
)

var teiHeader = template.Must(template.New("tei-header").Option("missingkey=error").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!-- This file was automatically generated. Please review it for markup mistakes
and resolve any TODOs. -->
<TEI xml:id="{{.xml_id}}" xmlns="http://www.tei-c.org/ns/1.0">
  <teiHeader xml:lang="en">
    <fileDesc>
      <titleStmt>
        <title type="main">{{.title}}</title>
        <title type="sub">A machine-readable edition</title>
        <author>{{.author}}</author>
      </titleStmt>
      <publicationStmt>
        <publisher>Ambuda</publisher>
        <!-- "free" or "restricted" depending on the license-->
        <availability status="{{.availability_status}}">
          <license>
            TODO
          </license>
        </availability>
        <date>{{.current_year}}</date>
      </publicationStmt>
      <sourceDesc>
        <bibl>
          <title>{{.title}}</title>
          <author>{{.author}}</author>
          <editor>{{.editor}}</editor>
          <publisher>{{.publisher}}</publisher>
          <pubPlace>{{.publisher_location}}</pubPlace>
          <date>{{.publication_year}}</date>
        </bibl>
      </sourceDesc>
    </fileDesc>
    <encodingDesc>
      <projectDesc>
        <p>Produced through the distributed proofreading interface on Ambuda.</p>
      </projectDesc>
    </encodingDesc>
    <revisionDesc>
      TODO
    </revisionDesc>
  </teiHeader>
  <text xml:lang="{{.text_language}}">
    <body>`))

// RenderTEI publishes pages as a TEI XML document. Each page is extracted on
// its own and preceded by a <pb n="N" /> marker, N being its 1-based position.
func RenderTEI(meta Metadata, pages []Page) (string, error) {
	return renderTEI(meta, pages, time.Now())
}

func renderTEI(meta Metadata, pages []Page, now time.Time) (string, error) {
	header, err := TEIHeader(meta, now)
	if err != nil {
		return "", err
	}

	parts := []string{header}
	for i, page := range pages {
		parts = append(parts, fmt.Sprintf(`<pb n="%d" />`, i+1))

		blocks, err := PageBlocks(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		rendered := make([]string, len(blocks))
		for j, b := range blocks {
			rendered[j] = xmlBlock(b)
		}
		parts = append(parts, strings.Join(rendered, "\n\n"))
	}
	parts = append(parts, teiTrailer)
	return strings.Join(parts, "\n\n"), nil
}

// TEIHeader fills the header template. publisher_location falls back to the
// placeholder; every other required key must be present.
func TEIHeader(meta Metadata, now time.Time) (string, error) {
	vars := make(map[string]string, len(meta)+5)
	for k, v := range meta {
		vars[k] = escapeXML(v)
	}
	for _, key := range RequiredMetadata {
		if _, ok := meta[key]; !ok {
			return "", fmt.Errorf("%w: %q", ErrMissingMetadata, key)
		}
	}
	if strings.TrimSpace(meta[MetaPublisherLocation]) == "" {
		vars[MetaPublisherLocation] = TEIPlaceholder
	}
	vars["xml_id"] = TEIPlaceholder
	vars["availability_status"] = TEIPlaceholder
	vars["current_year"] = strconv.Itoa(now.Year())
	vars["text_language"] = TEILanguage

	var sb strings.Builder
	if err := teiHeader.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("failed to render TEI header: %w", err)
	}
	return sb.String(), nil
}

func xmlBlock(b Block) string {
	if Classify(b) == Verse {
		lines := make([]string, 0, len(b)+2)
		lines = append(lines, "<lg>")
		for _, line := range b {
			lines = append(lines, "  <l>"+escapeXML(line)+"</l>")
		}
		lines = append(lines, "</lg>")
		return strings.Join(lines, "\n")
	}

	text := strings.TrimRightFunc(joinProse(b), unicode.IsSpace)
	return "<p>" + escapeXML(text) + "</p>"
}

// xmlEscaper escapes element content. Quotes stay literal since no
// escaped value is placed in an attribute.
var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
