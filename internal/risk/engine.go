// Package risk scores a retrieval result set for drift risk: the chance that
// the retrieved evidence is stale, deprecated or inconsistent with the
// current version of a policy or API. The rules are heuristic.
package risk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/metadata"
)

// DefaultCriticalTypes are the doc types whose correctness is high-stakes.
var DefaultCriticalTypes = []string{"payment_api", "auth_api", "webhook", "sdk"}

type options struct {
	criticalTypes []string
	noticeMarkers []string
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithCriticalTypes replaces the critical doc type set.
func WithCriticalTypes(types []string) Option {
	return func(o *options) {
		if len(types) > 0 {
			o.criticalTypes = types
		}
	}
}

// WithNoticeMarkers sets the file name fragments that announce a deprecation.
func WithNoticeMarkers(markers []string) Option {
	return func(o *options) { o.noticeMarkers = markers }
}

// WithLogger sets the logger used for debug output of fired rules.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Engine evaluates result sets against fixed corpus facts. It holds no
// mutable state and is safe for concurrent use; a metadata change requires
// a new Engine.
type Engine struct {
	corpus corpus
	logger *slog.Logger
}

// corpus is the read-only view every rule receives.
type corpus struct {
	facts        Facts
	latestByType map[string]*semver.Version
	latest       *semver.Version
	critical     map[string]struct{}
}

// NewEngine reads every record from src and computes the corpus facts.
func NewEngine(ctx context.Context, src domain.MetadataSource, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no metadata source", domain.ErrMetadataUnavailable)
	}
	records, err := src.Records(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrMetadataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrMetadataUnavailable, err)
	}
	return NewEngineFromRecords(records, opts...), nil
}

// NewEngineFromRecords builds an engine from already loaded metadata.
func NewEngineFromRecords(records []domain.Metadata, opts ...Option) *Engine {
	o := options{
		criticalTypes: DefaultCriticalTypes,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	facts := ComputeFacts(records, metadata.NewNoticeMatcher(o.noticeMarkers))
	c := corpus{
		facts:        facts,
		latestByType: make(map[string]*semver.Version, len(facts.LatestVersions)),
		latest:       parseVersion(facts.Latest),
		critical:     make(map[string]struct{}, len(o.criticalTypes)),
	}
	for t, v := range facts.LatestVersions {
		c.latestByType[t] = parseVersion(v)
	}
	for _, t := range o.criticalTypes {
		c.critical[t] = struct{}{}
	}
	o.logger.Debug("risk engine ready",
		"records", len(records),
		"doc_types", len(facts.LatestVersions),
		"latest", facts.Latest,
		"deprecation_notice", facts.DeprecationNoticeExists)
	return &Engine{corpus: c, logger: o.logger}
}

// Facts returns a copy of the corpus facts.
func (e *Engine) Facts() Facts {
	f := e.corpus.facts
	f.LatestVersions = make(map[string]string, len(e.corpus.facts.LatestVersions))
	for k, v := range e.corpus.facts.LatestVersions {
		f.LatestVersions[k] = v
	}
	return f
}

// Compute scores results. An empty result set is LOW with score 0.
func (e *Engine) Compute(results []domain.SearchResult) domain.RiskVerdict {
	if len(results) == 0 {
		return domain.RiskVerdict{
			Score:   0,
			Level:   domain.RiskLow,
			Reasons: []string{"No documents retrieved; nothing to assess."},
			Flags:   []string{},
			Actions: []string{},
		}
	}

	acc := newAccumulator()
	for _, r := range rules {
		acc = r(acc, results, e.corpus)
	}
	v := acc.verdict()
	if len(v.Flags) > 0 {
		e.logger.Debug("risk rules fired", "flags", v.Flags, "score", v.Score, "level", v.Level)
	}
	return v
}

// LevelFor maps a clamped score to its level.
func LevelFor(score int) domain.RiskLevel {
	switch {
	case score >= 70:
		return domain.RiskHigh
	case score >= 35:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
