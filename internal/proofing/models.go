package proofing

import "fmt"

// SchemaVersion identifies how a page's content is encoded.
type SchemaVersion int

const (
	// SchemaLegacy is plain text; blocks are separated by blank lines.
	SchemaLegacy SchemaVersion = 0
	// SchemaStructured is a JSON document with a top-level "blocks" array.
	SchemaStructured SchemaVersion = 1
)

func (v SchemaVersion) String() string {
	switch v {
	case SchemaLegacy:
		return "legacy"
	case SchemaStructured:
		return "structured"
	default:
		return fmt.Sprintf("SchemaVersion(%d)", int(v))
	}
}

// Page is one unit of transcribed input.
type Page struct {
	ID      int64 // Storage identifier, if any. Never used for numbering.
	Content string
	Version SchemaVersion
}

// Block is a non-empty group of lines rendered as one unit (stanza or paragraph).
type Block []string

// Kind is the derived classification of a block.
type Kind int

const (
	Prose Kind = iota
	Verse
)

func (k Kind) String() string {
	if k == Verse {
		return "verse"
	}
	return "prose"
}

// Metadata holds the template variables of the TEI header.
type Metadata map[string]string

// Metadata keys.
const (
	MetaTitle             = "title"
	MetaAuthor            = "author"
	MetaEditor            = "editor"
	MetaPublisher         = "publisher"
	MetaPublisherLocation = "publisher_location"
	MetaPublicationYear   = "publication_year"
)

// RequiredMetadata lists the keys a caller must supply for TEI output.
var RequiredMetadata = []string{
	MetaTitle,
	MetaAuthor,
	MetaEditor,
	MetaPublisher,
	MetaPublicationYear,
}
