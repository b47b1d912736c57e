package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/notevillage/internal/village"
)

// Scanner walks a vault directory and builds an Index of its markdown notes.
type Scanner struct {
	root            string
	excludedFolders []string
	excludedTags    map[string]bool
	logger          *zap.Logger
}

// NewScanner creates a Scanner rooted at the vault directory.
//
// Precondition: root must be non-empty; logger must be non-nil.
// Folder exclusions match vault-relative path prefixes; tag exclusions are
// normalized before matching.
func NewScanner(root string, excludedFolders, excludedTags []string, logger *zap.Logger) *Scanner {
	excluded := make(map[string]bool, len(excludedTags))
	for _, t := range excludedTags {
		excluded[NormalizeTag(t)] = true
	}
	return &Scanner{
		root:            root,
		excludedFolders: excludedFolders,
		excludedTags:    excluded,
		logger:          logger,
	}
}

// Scan walks the vault and returns a fresh Index snapshot.
//
// Hidden directories (dot-prefixed, e.g. .obsidian) and excluded folders are
// skipped. Unreadable individual notes are logged and skipped, not fatal.
//
// Postcondition: Returns a non-nil Index or an error if the root walk fails.
func (s *Scanner) Scan() (*Index, error) {
	ix := newIndex()

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || s.folderExcluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			s.logger.Warn("skipping unreadable note",
				zap.String("path", rel),
				zap.Error(readErr),
			)
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			s.logger.Warn("skipping note without file info",
				zap.String("path", rel),
				zap.Error(infoErr),
			)
			return nil
		}

		note := village.Note{
			Path:          rel,
			DisplayName:   DisplayName(rel),
			ContentLength: len(content),
			ModifiedAt:    info.ModTime(),
		}

		var tags []string
		for _, t := range ExtractTags(content) {
			if !s.excludedTags[t] {
				tags = append(tags, t)
			}
		}
		ix.add(note, tags)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: scanning %s: %w", s.root, err)
	}

	ix.finalize()
	s.logger.Info("vault scanned",
		zap.String("root", s.root),
		zap.Int("notes", ix.NoteCount()),
		zap.Int("tags", len(ix.counts)),
	)
	return ix, nil
}

func (s *Scanner) folderExcluded(rel string) bool {
	for _, folder := range s.excludedFolders {
		folder = strings.Trim(filepath.ToSlash(folder), "/")
		if folder == "" {
			continue
		}
		if rel == folder || strings.HasPrefix(rel, folder+"/") {
			return true
		}
	}
	return false
}

// Index is an immutable snapshot of a vault's notes grouped by tag. It
// implements the generator's TagRanker and NoteSource contracts.
type Index struct {
	notes  []village.Note
	byTag  map[string][]village.Note
	counts []village.TagCount
}

func newIndex() *Index {
	return &Index{byTag: map[string][]village.Note{}}
}

func (ix *Index) add(note village.Note, tags []string) {
	ix.notes = append(ix.notes, note)
	for _, t := range tags {
		ix.byTag[t] = append(ix.byTag[t], note)
	}
}

// finalize computes the ranked tag list. Ties break alphabetically so the
// ranking is deterministic for a given vault state.
func (ix *Index) finalize() {
	ix.counts = make([]village.TagCount, 0, len(ix.byTag))
	for tag, notes := range ix.byTag {
		ix.counts = append(ix.counts, village.TagCount{Tag: tag, Count: len(notes)})
	}
	sort.Slice(ix.counts, func(a, b int) bool {
		if ix.counts[a].Count != ix.counts[b].Count {
			return ix.counts[a].Count > ix.counts[b].Count
		}
		return ix.counts[a].Tag < ix.counts[b].Tag
	})
}

// NoteCount returns the total number of scanned notes.
func (ix *Index) NoteCount() int {
	return len(ix.notes)
}

// TopTags returns the n most frequent tags in descending count order.
//
// Postcondition: Returns at most n entries; the slice is a copy.
func (ix *Index) TopTags(n int) []village.TagCount {
	if n > len(ix.counts) {
		n = len(ix.counts)
	}
	if n < 0 {
		n = 0
	}
	return append([]village.TagCount(nil), ix.counts[:n]...)
}

// NotesGroupedByTag returns the notes for each requested tag.
//
// Postcondition: Every requested tag is present as a key, even when its note
// list is empty; the note slices are copies.
func (ix *Index) NotesGroupedByTag(tags []string) map[string][]village.Note {
	out := make(map[string][]village.Note, len(tags))
	for _, t := range tags {
		notes := ix.byTag[t]
		copied := make([]village.Note, len(notes))
		copy(copied, notes)
		out[t] = copied
	}
	return out
}
