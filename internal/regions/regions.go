// Package regions mines named line groups (verses, footnotes) and their
// bounding boxes from structured proofing documents.
package regions

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ambuda-org/proofkit/internal/proofing"
)

var (
	ErrNotDocument = errors.New("page content is not a structured document")
	ErrBadName     = errors.New("unsupported group name")
)

// Group types used by the proofing editor.
const (
	TypeVerse    = "lgVerse"
	TypeFootnote = "lgFootnote"
	TypeHeader   = "lgHeader"
)

// Region is the extent of one named line group on one page.
type Region struct {
	PageID int64    `json:"page_id"`
	Type   string   `json:"type"`
	Name   string   `json:"name"`
	XMin   float64  `json:"xmin"`
	YMin   float64  `json:"ymin"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Text   []string `json:"text"`
}

// Kind is the short label of the region's group type.
func (r Region) Kind() string {
	switch r.Type {
	case TypeVerse:
		return "verse"
	case TypeFootnote:
		return "footnote"
	case TypeHeader:
		return "header"
	default:
		return r.Type
	}
}

type node struct {
	Type    string          `json:"type"`
	Text    string          `json:"text"`
	Attrs   json.RawMessage `json:"attrs"`
	Content []node          `json:"content"`
}

type groupAttrs struct {
	GroupName *string `json:"groupName"`
}

type lineAttrs struct {
	Box *struct {
		XMin float64 `json:"xmin"`
		YMin float64 `json:"ymin"`
		XMax float64 `json:"xmax"`
		YMax float64 `json:"ymax"`
	} `json:"box"`
}

// Extract returns the named groups of one page's document. Groups without a
// name or without boxed lines are skipped.
func Extract(pageID int64, content string) ([]Region, error) {
	var doc node
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocument, err)
	}
	if doc.Type != "doc" {
		return nil, fmt.Errorf("%w: root type %q", ErrNotDocument, doc.Type)
	}

	var out []Region
	for i, group := range doc.Content {
		var ga groupAttrs
		if len(group.Attrs) > 0 {
			if err := json.Unmarshal(group.Attrs, &ga); err != nil {
				return nil, fmt.Errorf("page %d group %d: %w", pageID, i, err)
			}
		}
		if ga.GroupName == nil || *ga.GroupName == "" {
			continue
		}

		r := Region{PageID: pageID, Type: group.Type, Name: *ga.GroupName}
		xmin, ymin := math.Inf(1), math.Inf(1)
		xmax, ymax := math.Inf(-1), math.Inf(-1)
		for _, line := range group.Content {
			var la lineAttrs
			if len(line.Attrs) > 0 {
				if err := json.Unmarshal(line.Attrs, &la); err != nil {
					return nil, fmt.Errorf("page %d group %q: %w", pageID, r.Name, err)
				}
			}
			if la.Box == nil {
				continue
			}
			xmin = math.Min(xmin, la.Box.XMin)
			ymin = math.Min(ymin, la.Box.YMin)
			xmax = math.Max(xmax, la.Box.XMax)
			ymax = math.Max(ymax, la.Box.YMax)
			r.Text = append(r.Text, lineText(line))
		}
		if math.IsInf(xmin, 1) {
			continue
		}
		r.XMin, r.YMin = xmin, ymin
		r.Width, r.Height = xmax-xmin, ymax-ymin
		out = append(out, r)
	}
	return out, nil
}

func lineText(n node) string {
	var sb strings.Builder
	for _, c := range n.Content {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// ExtractAll mines every page in order. Pages whose content is not a
// structured document (plain text, empty) are skipped.
func ExtractAll(pages []proofing.Page) ([]Region, error) {
	var out []Region
	for _, p := range pages {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		rs, err := Extract(p.ID, p.Content)
		if errors.Is(err, ErrNotDocument) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// NormalizeName zero-pads the numeric part of a group name to three digits.
// The only allowed suffix is "f" (footnote), which is dropped. It returns
// the normalised name and its number.
func NormalizeName(name string) (string, int, error) {
	i := strings.IndexFunc(name, func(r rune) bool { return r < '0' || r > '9' })
	if i < 0 {
		i = len(name)
	}
	if suffix := name[i:]; suffix != "" && suffix != "f" {
		return "", 0, fmt.Errorf("%w: %q", ErrBadName, name)
	}
	if i == 0 {
		return "", 0, fmt.Errorf("%w: %q has no number", ErrBadName, name)
	}
	n, err := strconv.Atoi(name[:i])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrBadName, name, err)
	}
	return fmt.Sprintf("%03d", n), n, nil
}

// Normalize renames verse and footnote regions with NormalizeName, drops
// headers and, when maxNumber > 0, drops groups numbered above it.
func Normalize(rs []Region, maxNumber int) ([]Region, error) {
	out := make([]Region, 0, len(rs))
	for _, r := range rs {
		switch r.Type {
		case TypeHeader:
			continue
		case TypeVerse, TypeFootnote:
		default:
			return nil, fmt.Errorf("page %d: unexpected group type %q", r.PageID, r.Type)
		}
		name, n, err := NormalizeName(r.Name)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", r.PageID, err)
		}
		if maxNumber > 0 && n > maxNumber {
			continue
		}
		r.Name = name
		out = append(out, r)
	}
	return out, nil
}

// NamedGroup is all regions sharing a name, split by kind.
type NamedGroup struct {
	Name   string
	ByKind map[string][]Region
}

// MarshalJSON encodes the group as a [name, {kind: regions}] pair.
func (g NamedGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{g.Name, g.ByKind})
}

// Group collects regions by name, names in sorted order. Within a kind,
// regions keep their input order.
func Group(rs []Region) []NamedGroup {
	byName := make(map[string]map[string][]Region)
	for _, r := range rs {
		kinds, ok := byName[r.Name]
		if !ok {
			kinds = make(map[string][]Region)
			byName[r.Name] = kinds
		}
		kinds[r.Kind()] = append(kinds[r.Kind()], r)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]NamedGroup, len(names))
	for i, name := range names {
		out[i] = NamedGroup{Name: name, ByKind: byName[name]}
	}
	return out
}

// Dump is the grouped regions of a book together with what a viewer needs to
// locate them in the scanned pages.
type Dump struct {
	TotWidth       float64      `json:"totWidth"`
	TotHeight      float64      `json:"totHeight"`
	ImageURLPrefix string       `json:"imageUrlPrefix"`
	PageURLPrefix  string       `json:"pageUrlPrefix"`
	Regions        []NamedGroup `json:"regions"`
}
