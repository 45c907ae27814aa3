package proofing

import "strings"

// DoubleDanda closes a verse line in Devanagari text.
const DoubleDanda = "॥"

// Classify reports whether a block is verse or prose. A block is verse iff
// its last line ends with a double danda. b must not be empty.
func Classify(b Block) Kind {
	if strings.HasSuffix(b[len(b)-1], DoubleDanda) {
		return Verse
	}
	return Prose
}

// JoinProse joins the lines of a prose block into one trimmed line of text.
func JoinProse(b Block) string {
	return strings.TrimSpace(joinProse(b))
}

// joinProse joins prose lines into running text. A trailing hyphen marks a
// word broken across lines: the hyphen is dropped and the next line follows
// without a space. The trailing separator is kept; callers trim it.
func joinProse(b Block) string {
	var sb strings.Builder
	for _, line := range b {
		if rest, ok := strings.CutSuffix(line, "-"); ok {
			sb.WriteString(rest)
			continue
		}
		sb.WriteString(line)
		sb.WriteByte(' ')
	}
	return sb.String()
}
