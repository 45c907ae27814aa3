package proofing

import "strings"

// RenderText publishes pages as plain text. Legacy pages are read as one
// continuous stream, so no page markers appear in the output and a paragraph
// may run across a page turn. Blocks are separated by a blank line.
func RenderText(pages []Page) (string, error) {
	var out []string
	for b, err := range Stream(pages) {
		if err != nil {
			return "", err
		}
		out = append(out, textBlock(b))
	}
	return strings.Join(out, "\n\n"), nil
}

func textBlock(b Block) string {
	if Classify(b) == Verse {
		return strings.Join(b, "\n")
	}
	return JoinProse(b)
}
