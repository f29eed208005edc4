package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/ingest"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metadata"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore/memory"
)

// BuildSummary describes a freshly built and saved index.
type BuildSummary struct {
	Documents  int            `json:"documents"`
	Vocabulary int            `json:"vocabulary"`
	Deprecated int            `json:"deprecated"`
	DocTypes   map[string]int `json:"doc_types"`
	Path       string         `json:"path"`
}

// IndexService ingests a corpus, builds a new index and persists it. Every
// run replaces the previous artifact; there is no incremental update.
type IndexService struct {
	loader  *ingest.Loader
	storage vectorstore.Storage
	export  *metadata.FileSource
	workers int
	logger  *slog.Logger
}

// NewIndexService wires the build path. export may be nil to skip writing
// the JSON metadata export.
func NewIndexService(loader *ingest.Loader, storage vectorstore.Storage, export *metadata.FileSource, workers int, logger *slog.Logger) *IndexService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IndexService{loader: loader, storage: storage, export: export, workers: workers, logger: logger}
}

// Ingest loads paths, builds the index and saves it.
func (s *IndexService) Ingest(ctx context.Context, paths []string) (*memory.Index, BuildSummary, error) {
	entries, err := s.loader.Load(ctx, paths...)
	if err != nil {
		return nil, BuildSummary{}, domain.NewOpError("load corpus", err)
	}
	s.logger.Debug("corpus loaded", "files", len(entries))

	b := memory.NewBuilder(s.workers)
	for _, e := range entries {
		if err := b.Add(e.Text, e.Metadata); err != nil {
			return nil, BuildSummary{}, domain.NewOpError("add document", err)
		}
	}
	ix, err := b.Build(ctx)
	if err != nil {
		return nil, BuildSummary{}, domain.NewOpError("build index", err)
	}
	if err := s.storage.Save(ctx, ix); err != nil {
		return nil, BuildSummary{}, domain.NewOpError("save index", err)
	}

	recs := ix.Metadata()
	if s.export != nil {
		if err := s.export.Write(recs); err != nil {
			return nil, BuildSummary{}, domain.NewOpError("write metadata export", err)
		}
	}

	sum := summarize(ix, recs)
	sum.Path = s.storage.Path()
	s.logger.Info("index built",
		"documents", sum.Documents,
		"vocabulary", sum.Vocabulary,
		"deprecated", sum.Deprecated,
		"path", sum.Path)
	return ix, sum, nil
}

func summarize(ix *memory.Index, recs []domain.Metadata) BuildSummary {
	sum := BuildSummary{
		Documents:  ix.Len(),
		Vocabulary: ix.Model().Dimension(),
		DocTypes:   make(map[string]int),
	}
	for _, r := range recs {
		sum.DocTypes[r.DocType]++
		if r.Deprecated {
			sum.Deprecated++
		}
	}
	return sum
}

// SortedDocTypes returns the doc type names in s in lexical order.
func (s BuildSummary) SortedDocTypes() []string {
	out := make([]string, 0, len(s.DocTypes))
	for t := range s.DocTypes {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Dataset groups the indexed documents that came from one file.
type Dataset struct {
	File       string `json:"file"`
	Version    string `json:"version"`
	Deprecated bool   `json:"deprecated"`
	DocType    string `json:"doc_type"`
	Count      int    `json:"count"`
}

// Datasets groups recs by file name, sorted by name. Attributes are taken
// from the first record of each file.
func Datasets(recs []domain.Metadata) []Dataset {
	byFile := make(map[string]*Dataset)
	for _, r := range recs {
		ds, ok := byFile[r.FileName]
		if !ok {
			ds = &Dataset{File: r.FileName, Version: r.Version, Deprecated: r.Deprecated, DocType: r.DocType}
			byFile[r.FileName] = ds
		}
		ds.Count++
	}
	out := make([]Dataset, 0, len(byFile))
	for _, ds := range byFile {
		out = append(out, *ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}
