// Test program for block extraction and classification
//
// Usage:
//   go run ./cmd/test/block_extractor/main.go <page-dir>
//
// This program:
// 1. Loads every .txt and .json page in the directory in natural order
// 2. Extracts the blocks of each page on its own
// 3. Classifies each block as verse or prose and shows how it renders
// 4. Compares per-page extraction with the continuous plain-text stream
//
// Verification points:
// - ✓ Legacy and structured pages are both extracted
// - ✓ Verse blocks end with a double danda
// - ✓ Hyphenated prose lines are rejoined
// - ✓ Paragraphs continuing across legacy page turns are merged in the stream

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ambuda-org/proofkit/internal/proofing"
	"github.com/ambuda-org/proofkit/internal/publish"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <page-dir>\n", filepath.Base(os.Args[0]))
		os.Exit(1)
	}

	dir := os.Args[1]

	fmt.Printf("=== Block Extractor Test ===\n")
	fmt.Printf("Page directory: %s\n\n", dir)

	pages, _, err := publish.DirSource{Dir: dir}.Load(context.Background())
	if err != nil {
		log.Fatalf("Failed to load pages: %v", err)
	}
	fmt.Printf("✓ Loaded %d pages\n\n", len(pages))

	fmt.Println("=== Pages ===")

	errorCount := 0
	perPage := 0
	verseCount := 0
	for i, page := range pages {
		fmt.Printf("[%d] Page ID %d (%s)\n", i+1, page.ID, page.Version)

		blocks, err := proofing.PageBlocks(page)
		if err != nil {
			fmt.Printf("    ✗ Failed to extract blocks: %v\n\n", err)
			errorCount++
			continue
		}
		if len(blocks) == 0 {
			fmt.Printf("    Blocks: none\n\n")
			continue
		}

		for j, b := range blocks {
			kind := proofing.Classify(b)
			if kind == proofing.Verse {
				verseCount++
			}
			fmt.Printf("    Block %d: %s, %d lines\n", j+1, kind, len(b))
			if kind == proofing.Prose {
				fmt.Printf("      %s\n", proofing.JoinProse(b))
			} else {
				for _, line := range b {
					fmt.Printf("      | %s\n", line)
				}
			}
		}
		perPage += len(blocks)
		fmt.Println()
	}

	streamed := 0
	for _, err := range proofing.Stream(pages) {
		if err != nil {
			fmt.Printf("✗ Stream failed: %v\n", err)
			errorCount++
			break
		}
		streamed++
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Blocks per page total: %d\n", perPage)
	fmt.Printf("Blocks in text stream: %d\n", streamed)
	fmt.Printf("Verse blocks: %d\n", verseCount)
	if perPage != streamed {
		fmt.Printf("Merged across page turns: %d\n", perPage-streamed)
	}
	if errorCount > 0 {
		fmt.Printf("Errors: %d\n", errorCount)
		os.Exit(1)
	}
}
