package publish

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/ambuda-org/proofkit/internal/proofing"
	"github.com/ambuda-org/proofkit/internal/store"
)

func writePages(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func testMetadata() proofing.Metadata {
	return proofing.Metadata{
		proofing.MetaTitle:           "Śatakatrayam",
		proofing.MetaAuthor:          "Bhartṛhari",
		proofing.MetaEditor:          "D. D. Kosambi",
		proofing.MetaPublisher:       "Singhi Jain Series",
		proofing.MetaPublicationYear: "1948",
	}
}

func TestDirSource_NaturalOrder(t *testing.T) {
	dir := writePages(t, map[string]string{
		"10.txt":    "ten",
		"2.json":    `{"blocks":[["two"]]}`,
		"1.txt":     "one",
		"notes.md":  "ignored",
		"extra.txt": "extra",
	})
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	pages, meta, err := DirSource{Dir: dir}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if meta != nil {
		t.Fatalf("expected no metadata, got %v", meta)
	}
	want := []proofing.Page{
		{ID: 1, Content: "one", Version: proofing.SchemaLegacy},
		{ID: 2, Content: `{"blocks":[["two"]]}`, Version: proofing.SchemaStructured},
		{ID: 10, Content: "ten", Version: proofing.SchemaLegacy},
		{ID: 4, Content: "extra", Version: proofing.SchemaLegacy},
	}
	if len(pages) != len(want) {
		t.Fatalf("Load() returned %d pages, want %d", len(pages), len(want))
	}
	for i := range want {
		if pages[i] != want[i] {
			t.Errorf("page %d = %+v, want %+v", i, pages[i], want[i])
		}
	}
}

func TestDirSource_Empty(t *testing.T) {
	dir := writePages(t, map[string]string{"readme.md": "x"})
	if _, _, err := (DirSource{Dir: dir}).Load(context.Background()); !errors.Is(err, ErrNoPages) {
		t.Fatalf("error = %v, want ErrNoPages", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "TEI", " html "} {
		if _, err := ParseFormat(s); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
	if FormatTEI.Extension() != ".xml" || FormatText.Extension() != ".txt" {
		t.Error("unexpected extensions")
	}
}

func TestPublish_TextToStdout(t *testing.T) {
	dir := writePages(t, map[string]string{
		"1.txt": "क।\nख॥\n\nrama-",
		"2.txt": "yana is a\nstory",
	})
	var stdout bytes.Buffer
	res, err := NewPipeline(PublishOptions{
		Format:     FormatText,
		Source:     DirSource{Dir: dir},
		OutputPath: "-",
		Stdout:     &stdout,
	}).Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	want := "क।\nख॥\n\nramayana is a story"
	if stdout.String() != want {
		t.Fatalf("output = %q, want %q", stdout.String(), want)
	}
	digest := blake3.Sum256([]byte(want))
	if res.BLAKE3 != hex.EncodeToString(digest[:]) {
		t.Fatalf("BLAKE3 = %s", res.BLAKE3)
	}
	if res.Pages != 2 || res.Size != len(want) {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestPublish_TEIChecked(t *testing.T) {
	dir := writePages(t, map[string]string{
		"1.txt":  "a\nb॥",
		"2.json": `{"blocks":[["prose-","line"]]}`,
	})
	out := filepath.Join(t.TempDir(), "book.xml")
	res, err := NewPipeline(PublishOptions{
		Format:     FormatTEI,
		Source:     DirSource{Dir: dir},
		OutputPath: out,
		Metadata:   testMetadata(),
		Check:      true,
	}).Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Summary == nil {
		t.Fatal("expected a TEI summary")
	}
	if res.Summary.Title != "Śatakatrayam" || len(res.Summary.Pages) != 2 {
		t.Fatalf("unexpected summary %+v", res.Summary)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "<p>proseline</p>") {
		t.Fatalf("output missing joined prose:\n%s", data)
	}
}

func TestPublish_MissingMetadataWritesNothing(t *testing.T) {
	dir := writePages(t, map[string]string{"1.txt": "a"})
	out := filepath.Join(t.TempDir(), "book.xml")
	meta := testMetadata()
	delete(meta, proofing.MetaEditor)

	_, err := NewPipeline(PublishOptions{
		Format:     FormatTEI,
		Source:     DirSource{Dir: dir},
		OutputPath: out,
		Metadata:   meta,
	}).Publish(context.Background())
	if !errors.Is(err, proofing.ErrMissingMetadata) {
		t.Fatalf("error = %v, want ErrMissingMetadata", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("output file should not exist")
	}
}

func TestPublish_XZ(t *testing.T) {
	dir := writePages(t, map[string]string{"1.txt": "a\nb॥"})
	out := filepath.Join(t.TempDir(), "book.html.xz")
	res, err := NewPipeline(PublishOptions{
		Format:     FormatHTML,
		Source:     DirSource{Dir: dir},
		OutputPath: out,
		Metadata:   proofing.Metadata{proofing.MetaTitle: "Book"},
	}).Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	r, err := xz.NewReader(f)
	if err != nil {
		t.Fatalf("xz.NewReader() error = %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	if len(data) != res.Size {
		t.Fatalf("decompressed %d bytes, want %d", len(data), res.Size)
	}
	if !strings.Contains(string(data), `<span class="l">b॥</span>`) {
		t.Fatalf("unexpected HTML:\n%s", data)
	}
}

func TestPublish_StoreSource(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "proofing.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer s.Close()

	projectID, err := s.CreateProject(ctx, store.Project{
		Slug:            "book",
		Title:           "Stored Title",
		Author:          "A",
		Editor:          "E",
		Publisher:       "P",
		PublicationYear: "1900",
	})
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	pageID, err := s.AddPage(ctx, projectID, 1, proofing.SchemaLegacy)
	if err != nil {
		t.Fatalf("AddPage() error = %v", err)
	}
	if err := s.AddRevision(ctx, pageID, 1, "x॥"); err != nil {
		t.Fatalf("AddRevision() error = %v", err)
	}

	var stdout bytes.Buffer
	res, err := NewPipeline(PublishOptions{
		Format:   FormatTEI,
		Source:   StoreSource{Store: s, Slug: "book"},
		Metadata: proofing.Metadata{proofing.MetaTitle: "Override", proofing.MetaAuthor: " "},
		Check:    true,
		Stdout:   &stdout,
	}).Publish(ctx)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Summary.Title != "Override" {
		t.Fatalf("title = %q, want Override", res.Summary.Title)
	}
	if !strings.Contains(stdout.String(), "<author>A</author>") {
		t.Fatalf("blank override replaced stored author:\n%s", stdout.String())
	}

	_, err = NewPipeline(PublishOptions{
		Format: FormatText,
		Source: StoreSource{Store: s, Slug: "missing"},
		Stdout: io.Discard,
	}).Publish(ctx)
	if !errors.Is(err, store.ErrProjectNotFound) {
		t.Fatalf("error = %v, want ErrProjectNotFound", err)
	}
}

func TestPublish_DefaultMetadataRanksBelowSource(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(ctx, filepath.Join(t.TempDir(), "proofing.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	defer s.Close()

	if _, err := s.ImportProject(ctx, store.Project{
		Slug:            "book",
		Title:           "DB Title",
		Author:          "A",
		Editor:          "E",
		Publisher:       "P",
		PublicationYear: "1900",
	}, []proofing.Page{{Content: "x॥", Version: proofing.SchemaLegacy}}, 1); err != nil {
		t.Fatalf("ImportProject() error = %v", err)
	}

	var stdout bytes.Buffer
	res, err := NewPipeline(PublishOptions{
		Format: FormatTEI,
		Source: StoreSource{Store: s, Slug: "book"},
		DefaultMetadata: proofing.Metadata{
			proofing.MetaTitle:             "Config Title",
			proofing.MetaPublisherLocation: "Bombay",
		},
		Metadata: proofing.Metadata{proofing.MetaEditor: "Flag Editor"},
		Check:    true,
		Stdout:   &stdout,
	}).Publish(ctx)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if res.Summary.Title != "DB Title" {
		t.Fatalf("title = %q, want DB Title", res.Summary.Title)
	}
	out := stdout.String()
	if !strings.Contains(out, "<pubPlace>Bombay</pubPlace>") {
		t.Errorf("default should fill the blank stored location:\n%s", out)
	}
	if !strings.Contains(out, "<editor>Flag Editor</editor>") {
		t.Errorf("override should replace the stored editor:\n%s", out)
	}
}

func TestPublish_HTMLTextFilter(t *testing.T) {
	dir := writePages(t, map[string]string{"1.txt": "a\nb॥"})
	var stdout bytes.Buffer
	_, err := NewPipeline(PublishOptions{
		Format:     FormatHTML,
		Source:     DirSource{Dir: dir},
		OutputPath: "-",
		TextFilter: strings.ToUpper,
		Stdout:     &stdout,
	}).Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !strings.Contains(stdout.String(), `<span class="l">A</span>`) {
		t.Fatalf("text filter not applied:\n%s", stdout.String())
	}
}
