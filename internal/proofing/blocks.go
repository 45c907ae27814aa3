package proofing

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
)

var (
	ErrUnknownSchema = errors.New("unknown page schema version")
	ErrMissingBlocks = errors.New(`structured page has no "blocks" array`)
)

// structuredPage is the version-1 page document.
type structuredPage struct {
	Blocks *[][]string `json:"blocks"`
}

// Blocks yields the blocks of each page in order. Pages are extracted
// independently; a block never crosses a page boundary.
//
// The sequence is single-use: it stops at the first error.
func Blocks(pages []Page) iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		for i, page := range pages {
			blocks, err := PageBlocks(page)
			if err != nil {
				yield(nil, fmt.Errorf("page %d: %w", i+1, err))
				return
			}
			for _, b := range blocks {
				if !yield(b, nil) {
					return
				}
			}
		}
	}
}

// Stream is like Blocks, except that consecutive legacy pages are read as one
// continuous stream of lines, so a paragraph may continue across a page turn.
// A structured page flushes any pending legacy lines before its own blocks.
func Stream(pages []Page) iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		var buf Block
		flush := func() bool {
			if len(buf) == 0 {
				return true
			}
			b := buf
			buf = nil
			return yield(b, nil)
		}

		for i, page := range pages {
			switch page.Version {
			case SchemaLegacy:
				for _, line := range legacyLines(page.Content) {
					if line != "" {
						buf = append(buf, line)
					} else if !flush() {
						return
					}
				}
			case SchemaStructured:
				if !flush() {
					return
				}
				blocks, err := structuredBlocks(page.Content)
				if err != nil {
					yield(nil, fmt.Errorf("page %d: %w", i+1, err))
					return
				}
				for _, b := range blocks {
					if !yield(b, nil) {
						return
					}
				}
			default:
				yield(nil, fmt.Errorf("page %d: %w: %d", i+1, ErrUnknownSchema, int(page.Version)))
				return
			}
		}
		flush()
	}
}

// PageBlocks extracts the blocks of a single page.
func PageBlocks(page Page) ([]Block, error) {
	switch page.Version {
	case SchemaLegacy:
		return legacyBlocks(page.Content), nil
	case SchemaStructured:
		return structuredBlocks(page.Content)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSchema, int(page.Version))
	}
}

// legacyLines returns the trimmed lines of a legacy page. Blank lines are
// kept as empty strings since they delimit blocks.
func legacyLines(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	lines := splitLines(content)
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

func legacyBlocks(content string) []Block {
	var (
		blocks []Block
		buf    Block
	)
	for _, line := range legacyLines(content) {
		if line != "" {
			buf = append(buf, line)
			continue
		}
		if len(buf) > 0 {
			blocks = append(blocks, buf)
			buf = nil
		}
	}
	if len(buf) > 0 {
		blocks = append(blocks, buf)
	}
	return blocks
}

func structuredBlocks(content string) ([]Block, error) {
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	var doc structuredPage
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse structured page: %w", err)
	}
	if doc.Blocks == nil {
		return nil, ErrMissingBlocks
	}

	blocks := make([]Block, 0, len(*doc.Blocks))
	for _, lines := range *doc.Blocks {
		if len(lines) == 0 {
			continue
		}
		blocks = append(blocks, Block(lines))
	}
	return blocks, nil
}

// splitLines splits at line boundaries: \n, \r\n, \r, \v, \f, the
// \x1c-\x1e separators, NEL, U+2028 and U+2029. A trailing boundary does not
// start a new line.
func splitLines(s string) []string {
	var (
		lines []string
		start int
	)
	for i, r := range s {
		if i < start {
			// Second byte of \r\n.
			continue
		}
		if !isLineBoundary(r) {
			continue
		}
		lines = append(lines, s[start:i])
		start = i + utf8.RuneLen(r)
		if r == '\r' && strings.HasPrefix(s[start:], "\n") {
			start++
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
