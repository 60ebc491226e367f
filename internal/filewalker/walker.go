package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cdb-transformer/internal/format"

	"github.com/rs/zerolog/log"
)

// Walker turns source arguments into files with a known format.
type Walker struct {
	// fallback applies to explicitly named files whose extension is not
	// recognized. Empty means xyyz, with a warning.
	fallback format.Format
}

// NewWalker creates a Walker. fallback may be empty.
func NewWalker(fallback format.Format) *Walker {
	return &Walker{fallback: fallback}
}

// FileEntry is a source file and the format it will be read as.
type FileEntry struct {
	Path   string
	Ext    string
	Format format.Format
}

// Expand resolves each argument in order. Directories contribute every
// file with a recognized extension, in lexical order.
func (w *Walker) Expand(args []string) ([]FileEntry, error) {
	var entries []FileEntry
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat source: %w", err)
		}
		if info.IsDir() {
			found, err := w.Walk(arg)
			if err != nil {
				return nil, err
			}
			entries = append(entries, found...)
			continue
		}
		entries = append(entries, w.entry(arg))
	}
	return entries, nil
}

func (w *Walker) entry(path string) FileEntry {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := format.Guess(path); ok {
		return FileEntry{Path: path, Ext: ext, Format: f}
	}
	if w.fallback != "" {
		return FileEntry{Path: path, Ext: ext, Format: w.fallback}
	}
	log.Warn().Str("path", path).Msg("Cannot determine the format from the file name, reading as xyyz")
	return FileEntry{Path: path, Ext: ext, Format: format.Xyyz}
}

// Walk collects the files under root whose extension names a card format.
// Unreadable subtrees are skipped with a warning.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		f, ok := format.Guess(path)
		if !ok {
			return nil
		}
		entries = append(entries, FileEntry{
			Path:   path,
			Ext:    strings.ToLower(filepath.Ext(path)),
			Format: f,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	log.Debug().Int("files", len(entries)).Str("root", root).Msg("Found card sources")
	return entries, nil
}
