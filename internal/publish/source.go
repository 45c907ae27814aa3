package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ambuda-org/proofkit/internal/proofing"
	"github.com/ambuda-org/proofkit/internal/store"
)

var ErrNoPages = errors.New("no pages found")

// Source supplies the pages of one book in reading order, plus any header
// metadata it knows about.
type Source interface {
	Load(ctx context.Context) ([]proofing.Page, proofing.Metadata, error)
}

// DirSource reads one page per file from a directory. Files ending in .txt
// hold legacy text and files ending in .json hold structured pages. Files
// are read in natural order of their names, so 2.txt comes before 10.txt.
type DirSource struct {
	Dir string
}

type pageFile struct {
	name    string
	number  int
	numeric bool
	version proofing.SchemaVersion
}

// Load implements Source. A directory has no metadata of its own.
func (s DirSource) Load(ctx context.Context) ([]proofing.Page, proofing.Metadata, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read page directory: %w", err)
	}

	var files []pageFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f := pageFile{name: e.Name()}
		switch strings.ToLower(filepath.Ext(f.name)) {
		case ".txt":
			f.version = proofing.SchemaLegacy
		case ".json":
			f.version = proofing.SchemaStructured
		default:
			continue
		}
		stem := strings.TrimSuffix(f.name, filepath.Ext(f.name))
		if n, err := strconv.Atoi(stem); err == nil {
			f.number, f.numeric = n, true
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoPages, s.Dir)
	}
	slices.SortFunc(files, comparePageFiles)

	pages := make([]proofing.Page, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.Dir, f.name))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read page %q: %w", f.name, err)
		}
		id := int64(i + 1)
		if f.numeric {
			id = int64(f.number)
		}
		pages = append(pages, proofing.Page{ID: id, Content: string(data), Version: f.version})
	}
	return pages, nil, nil
}

func comparePageFiles(a, b pageFile) int {
	switch {
	case a.numeric && b.numeric && a.number != b.number:
		return a.number - b.number
	case a.numeric && !b.numeric:
		return -1
	case !a.numeric && b.numeric:
		return 1
	}
	return strings.Compare(a.name, b.name)
}

// StoreSource reads the newest revision of every page of a project.
type StoreSource struct {
	Store *store.Store
	Slug  string
}

// Load implements Source. Metadata comes from the project record.
func (s StoreSource) Load(ctx context.Context) ([]proofing.Page, proofing.Metadata, error) {
	project, err := s.Store.ProjectBySlug(ctx, s.Slug)
	if err != nil {
		return nil, nil, err
	}
	pages, err := s.Store.LatestPages(ctx, project.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(pages) == 0 {
		return nil, nil, fmt.Errorf("%w for project %q", ErrNoPages, s.Slug)
	}
	return pages, project.Metadata(), nil
}
