// Package publish turns a book's proofread pages into a finished
// publication file.
package publish

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/ambuda-org/proofkit/internal/preview"
	"github.com/ambuda-org/proofkit/internal/proofing"
	"github.com/ambuda-org/proofkit/internal/teicheck"
)

// Format is an output format.
type Format string

const (
	FormatText Format = "text"
	FormatTEI  Format = "tei"
	FormatHTML Format = "html"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatTEI, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// Extension returns the usual file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatTEI:
		return ".xml"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// PublishOptions holds options for the publishing pipeline.
type PublishOptions struct {
	Format Format
	Source Source
	// OutputPath "-" writes to Stdout. A path ending in .xz is compressed.
	OutputPath string
	// DefaultMetadata fills keys the source leaves unset.
	DefaultMetadata proofing.Metadata
	// Metadata overrides what the source provides. Blank values are ignored.
	Metadata proofing.Metadata
	// TextFilter, when set, rewrites the text of HTML output.
	TextFilter func(string) string
	// Check re-parses TEI output before it is written.
	Check  bool
	Logger *slog.Logger
	Stdout io.Writer
}

// Result describes a written publication.
type Result struct {
	Path   string
	Pages  int
	Size   int
	BLAKE3 string
	// Summary is set when TEI output was checked.
	Summary *teicheck.Summary
}

// Pipeline orchestrates loading, rendering, and writing a publication.
type Pipeline struct {
	Options PublishOptions
}

// NewPipeline creates a new publishing pipeline.
func NewPipeline(opts PublishOptions) *Pipeline {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Pipeline{Options: opts}
}

// Publish executes the pipeline. Nothing is written if rendering or the
// check fails.
func (p *Pipeline) Publish(ctx context.Context) (*Result, error) {
	log := p.Options.Logger
	if p.Options.Source == nil {
		return nil, fmt.Errorf("no page source configured")
	}

	pages, srcMeta, err := p.Options.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	meta := mergeMetadata(mergeMetadata(p.Options.DefaultMetadata, srcMeta), p.Options.Metadata)
	log.Debug("pages loaded", "pages", len(pages), "format", p.Options.Format)

	if p.Options.TextFilter != nil && p.Options.Format != FormatHTML {
		log.Warn("text filter only applies to HTML output, skipping", "format", p.Options.Format)
	}
	out, err := p.render(meta, pages)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", p.Options.Format, err)
	}

	res := &Result{Path: p.Options.OutputPath, Pages: len(pages), Size: len(out)}
	if p.Options.Check {
		if p.Options.Format != FormatTEI {
			log.Warn("check only applies to TEI output, skipping", "format", p.Options.Format)
		} else {
			summary, err := teicheck.Check([]byte(out))
			if err != nil {
				return nil, fmt.Errorf("TEI check failed: %w", err)
			}
			res.Summary = summary
			log.Debug("TEI check passed",
				"pages", len(summary.Pages),
				"verse_groups", summary.VerseGroups,
				"paragraphs", summary.Paragraphs)
		}
	}

	digest := blake3.Sum256([]byte(out))
	res.BLAKE3 = hex.EncodeToString(digest[:])

	if err := p.write(out); err != nil {
		return nil, err
	}
	log.Info("publication written",
		"path", res.Path,
		"format", p.Options.Format,
		"pages", res.Pages,
		"size", humanize.Bytes(uint64(res.Size)),
		"blake3", res.BLAKE3)
	return res, nil
}

func (p *Pipeline) render(meta proofing.Metadata, pages []proofing.Page) (string, error) {
	switch p.Options.Format {
	case FormatText:
		return proofing.RenderText(pages)
	case FormatTEI:
		return proofing.RenderTEI(meta, pages)
	case FormatHTML:
		return preview.RenderHTML(meta, pages, p.Options.TextFilter)
	default:
		return "", fmt.Errorf("unknown format %q", p.Options.Format)
	}
}

func (p *Pipeline) write(out string) error {
	if p.Options.OutputPath == "" || p.Options.OutputPath == "-" {
		if _, err := io.WriteString(p.Options.Stdout, out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	f, err := os.Create(p.Options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if strings.HasSuffix(p.Options.OutputPath, ".xz") {
		compressed, err := compressXZ(out)
		if err != nil {
			return err
		}
		if _, err := f.Write(compressed); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else if _, err := io.WriteString(f, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return f.Close()
}

func compressXZ(s string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		return nil, fmt.Errorf("failed to compress output: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress output: %w", err)
	}
	return buf.Bytes(), nil
}

func mergeMetadata(base, override proofing.Metadata) proofing.Metadata {
	out := make(proofing.Metadata, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if strings.TrimSpace(v) != "" {
			out[k] = v
		}
	}
	return out
}
