// Package ocr post-processes OCR output for proofreading: punctuation
// normalisation, word bounding boxes and text assembly from saved Google
// Vision responses.
package ocr

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	Danda       = "।"
	DoubleDanda = "॥"
)

// The replacements run in order: "||" must become a double danda before the
// single bars are converted, and two adjacent dandas collapse afterwards.
var punctuationSteps = []*strings.Replacer{
	strings.NewReplacer("||", DoubleDanda),
	strings.NewReplacer("|", Danda),
	strings.NewReplacer(Danda+Danda, DoubleDanda),
	strings.NewReplacer(
		"‘", "'",
		"’", "'",
		"“", `"`,
		"”", `"`,
	),
}

// PostProcess normalises OCR punctuation: ASCII bars become dandas and curly
// quotes become straight quotes. Everything else is left as is.
func PostProcess(text string) string {
	for _, r := range punctuationSteps {
		text = r.Replace(text)
	}
	return text
}

// ComposeNFC puts text in Unicode NFC. Precomposed nuqta letters such as
// U+0958 are composition exclusions and come out decomposed.
func ComposeNFC(text string) string {
	return norm.NFC.String(text)
}
