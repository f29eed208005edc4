// Package service composes retrieval and risk scoring into the query
// pipeline, and ingests corpora into persisted indexes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metrics"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/risk"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/vectorstore/memory"
)

// snapshot pairs an index with the engine built from the same metadata, so
// readers never see an index from one build scored with facts from another.
type snapshot struct {
	index  *memory.Index
	engine *risk.Engine
}

// Pipeline answers queries against the current snapshot. Reload builds a
// complete replacement and swaps it in atomically; in-flight queries keep
// using the snapshot they started with.
type Pipeline struct {
	storage    vectorstore.Storage
	metaSource domain.MetadataSource // nil: facts come from the loaded index
	current    atomic.Pointer[snapshot]
	topK       int
	engineOpts []risk.Option
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithTopK sets how many documents each query retrieves.
func WithTopK(k int) PipelineOption {
	return func(p *Pipeline) {
		if k > 0 {
			p.topK = k
		}
	}
}

// WithMetadataSource overrides where corpus facts are read from. By default
// they come from the metadata of the loaded index itself.
func WithMetadataSource(src domain.MetadataSource) PipelineOption {
	return func(p *Pipeline) { p.metaSource = src }
}

// WithEngineOptions passes options to every risk engine the pipeline builds.
func WithEngineOptions(opts ...risk.Option) PipelineOption {
	return func(p *Pipeline) { p.engineOpts = append(p.engineOpts, opts...) }
}

// WithMetrics records query and reload metrics.
func WithMetrics(m *metrics.Metrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline creates a pipeline with no snapshot; call Reload or Install
// before Analyze.
func NewPipeline(storage vectorstore.Storage, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		storage: storage,
		topK:    5,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reload loads the persisted index and constructs a new risk engine, then
// swaps both in. Unless a metadata source was configured, the engine is built
// from the loaded index, so both halves of a snapshot come from one read of
// the artifact. On error the current snapshot stays.
func (p *Pipeline) Reload(ctx context.Context) error {
	err := p.reload(ctx)
	p.metrics.ObserveReload(err)
	return err
}

func (p *Pipeline) reload(ctx context.Context) error {
	ix, err := p.storage.Load(ctx)
	if err != nil {
		return domain.NewOpError("load index", err)
	}
	var engine *risk.Engine
	if p.metaSource == nil {
		engine = risk.NewEngineFromRecords(ix.Metadata(), p.engineOptions()...)
	} else {
		engine, err = risk.NewEngine(ctx, p.metaSource, p.engineOptions()...)
		if err != nil {
			return domain.NewOpError("build risk engine", err)
		}
	}
	p.current.Store(&snapshot{index: ix, engine: engine})
	p.logger.Info("index loaded", "documents", ix.Len(), "vocabulary", ix.Model().Dimension(), "path", p.storage.Path())
	return nil
}

// Install swaps in an index that is already in memory, building the engine
// from its own metadata.
func (p *Pipeline) Install(ix *memory.Index) {
	engine := risk.NewEngineFromRecords(ix.Metadata(), p.engineOptions()...)
	p.current.Store(&snapshot{index: ix, engine: engine})
}

func (p *Pipeline) engineOptions() []risk.Option {
	return append([]risk.Option{risk.WithLogger(p.logger)}, p.engineOpts...)
}

// Analyze retrieves the top documents for query and scores them.
func (p *Pipeline) Analyze(ctx context.Context, query string) (domain.Analysis, error) {
	return p.AnalyzeTopK(ctx, query, p.topK)
}

// AnalyzeTopK is Analyze with an explicit result count.
func (p *Pipeline) AnalyzeTopK(ctx context.Context, query string, topK int) (domain.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return domain.Analysis{}, err
	}
	snap := p.current.Load()
	if snap == nil {
		return domain.Analysis{}, domain.NewOpError("search", domain.ErrIndexNotBuilt)
	}
	start := time.Now()
	results, err := snap.index.Search(query, topK)
	if err != nil {
		return domain.Analysis{}, domain.NewOpError("search", err)
	}
	verdict := snap.engine.Compute(results)
	p.metrics.ObserveAnalysis(verdict, time.Since(start))

	return domain.Analysis{
		ID:        uuid.NewString(),
		Query:     query,
		CreatedAt: p.now().UTC(),
		Results:   results,
		Verdict:   verdict,
	}, nil
}

// Facts returns the corpus facts of the current snapshot.
func (p *Pipeline) Facts() (risk.Facts, error) {
	snap := p.current.Load()
	if snap == nil {
		return risk.Facts{}, domain.ErrIndexNotBuilt
	}
	return snap.engine.Facts(), nil
}

// Describe summarizes the current snapshot in one line.
func (p *Pipeline) Describe() string {
	snap := p.current.Load()
	if snap == nil {
		return "No index loaded."
	}
	f := snap.engine.Facts()
	latest := f.Latest
	if latest == "" {
		latest = "n/a"
	}
	return fmt.Sprintf("%d documents, %d terms, latest version %s, deprecation notice: %t",
		snap.index.Len(), snap.index.Model().Dimension(), latest, f.DeprecationNoticeExists)
}
