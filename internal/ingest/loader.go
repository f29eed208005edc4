// Package ingest reads corpus files from disk and tags them with metadata.
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metadata"
)

// Entry is one corpus file ready to be added to an index.
type Entry struct {
	Text     string
	Metadata domain.Metadata
}

// Loader collects corpus files. Paths may be files, directories (walked
// recursively) or glob patterns.
type Loader struct {
	extensions map[string]struct{}
	now        func() time.Time
}

// NewLoader creates a loader accepting the given file extensions.
func NewLoader(extensions []string) *Loader {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = struct{}{}
	}
	return &Loader{extensions: exts, now: time.Now}
}

// Load reads every matching file under paths, sorted by path so document
// ids are assigned deterministically.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]Entry, error) {
	files := make(map[string]struct{})
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("invalid corpus pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if err := l.collect(m, files); err != nil {
				return nil, err
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no corpus files found: %w", domain.ErrEmptyCorpus)
	}

	sorted := make([]string, 0, len(files))
	for f := range files {
		sorted = append(sorted, f)
	}
	sort.Strings(sorted)

	now := l.now()
	entries := make([]Entry, 0, len(sorted))
	for _, f := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		text := string(data)
		entries = append(entries, Entry{Text: text, Metadata: metadata.Extract(f, text, now)})
	}
	return entries, nil
}

func (l *Loader) collect(path string, files map[string]struct{}) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if l.accepts(path) {
			files[path] = struct{}{}
		}
		return nil
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if l.accepts(p) {
			files[p] = struct{}{}
		}
		return nil
	})
}

func (l *Loader) accepts(path string) bool {
	_, ok := l.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
