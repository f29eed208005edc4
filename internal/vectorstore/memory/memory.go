package memory

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/embedding/tfidf"
)

// Builder collects documents and fits them into an immutable Index.
// After Build the builder is frozen and rejects further documents; a new
// Builder is needed to produce a replacement index.
type Builder struct {
	texts   []string
	metas   []domain.Metadata
	workers int
	frozen  bool
}

// NewBuilder creates an empty builder. workers bounds the number of
// goroutines used to vectorize documents; <= 0 means GOMAXPROCS.
func NewBuilder(workers int) *Builder {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{workers: workers}
}

// Add appends a document to the pending corpus. No vectorization happens yet.
func (b *Builder) Add(text string, meta domain.Metadata) error {
	if b.frozen {
		return domain.ErrIndexFrozen
	}
	b.texts = append(b.texts, text)
	b.metas = append(b.metas, meta)
	return nil
}

// Len returns the number of pending documents.
func (b *Builder) Len() int { return len(b.texts) }

// Build fits a term model over all pending texts, vectorizes each one and
// returns the frozen index. Document ids are insertion positions.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	if b.frozen {
		return nil, domain.ErrIndexFrozen
	}
	if len(b.texts) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	model, err := tfidf.Fit(b.texts)
	if err != nil {
		return nil, err
	}

	vectors := make([]tfidf.Vector, len(b.texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range b.texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			vectors[i] = model.Transform(b.texts[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("vectorize documents: %w", err)
	}

	docs := make([]domain.Document, len(b.texts))
	for i := range b.texts {
		docs[i] = domain.Document{ID: i, Text: b.texts[i], Metadata: b.metas[i]}
	}
	b.frozen = true
	return &Index{model: model, docs: docs, vectors: vectors}, nil
}

// Index is an exact nearest-neighbor index over a frozen corpus. It is never
// mutated after construction, so any number of goroutines may search it.
type Index struct {
	model   *tfidf.Model
	docs    []domain.Document
	vectors []tfidf.Vector
}

// New assembles an index from previously persisted parts. docs and vectors
// must be positionally aligned, ids must equal positions, and every vector
// must match the model dimension; otherwise ErrCorruptStore is returned.
func New(model *tfidf.Model, docs []domain.Document, vectors []tfidf.Vector) (*Index, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: missing term model", domain.ErrCorruptStore)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: no documents", domain.ErrCorruptStore)
	}
	if len(docs) != len(vectors) {
		return nil, fmt.Errorf("%w: %d documents but %d vectors", domain.ErrCorruptStore, len(docs), len(vectors))
	}
	dim := model.Dimension()
	for i := range docs {
		if docs[i].ID != i {
			return nil, fmt.Errorf("%w: document at position %d has id %d", domain.ErrCorruptStore, i, docs[i].ID)
		}
		v := vectors[i]
		if v.Dim != dim || len(v.Indices) != len(v.Weights) {
			return nil, fmt.Errorf("%w: vector %d has inconsistent shape", domain.ErrCorruptStore, i)
		}
		for j, idx := range v.Indices {
			if idx < 0 || idx >= dim || (j > 0 && idx <= v.Indices[j-1]) {
				return nil, fmt.Errorf("%w: vector %d has invalid term index %d", domain.ErrCorruptStore, i, idx)
			}
		}
	}
	return &Index{model: model, docs: docs, vectors: vectors}, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.docs) }

// Model returns the fitted term model.
func (ix *Index) Model() *tfidf.Model { return ix.model }

// Document returns the document at position i.
func (ix *Index) Document(i int) domain.Document { return ix.docs[i] }

// Vector returns the stored vector of document i.
func (ix *Index) Vector(i int) tfidf.Vector { return ix.vectors[i] }

// Metadata returns the metadata of every indexed document in id order.
func (ix *Index) Metadata() []domain.Metadata {
	out := make([]domain.Metadata, len(ix.docs))
	for i := range ix.docs {
		out[i] = ix.docs[i].Metadata
	}
	return out
}

// IndexType names the search strategy of Index.
const IndexType = "exact_l2"

// Stats describes the shape of an index.
type Stats struct {
	Documents  int     `json:"documents"`
	Vocabulary int     `json:"vocabulary"`
	NonZero    int     `json:"non_zero"` // stored weights across all vectors
	Density    float64 `json:"density"`  // NonZero / (Documents * Vocabulary)
	IndexType  string  `json:"index_type"`
}

// Stats counts documents, vocabulary and stored weights.
func (ix *Index) Stats() Stats {
	st := Stats{Documents: len(ix.docs), Vocabulary: ix.model.Dimension(), IndexType: IndexType}
	for _, v := range ix.vectors {
		st.NonZero += v.NNZ()
	}
	if cells := st.Documents * st.Vocabulary; cells > 0 {
		st.Density = float64(st.NonZero) / float64(cells)
	}
	return st
}

// Search returns the topK documents closest to query by squared Euclidean
// distance. Ties keep insertion order. topK is clamped to the index size.
func (ix *Index) Search(query string, topK int) ([]domain.SearchResult, error) {
	if ix == nil {
		return nil, domain.ErrIndexNotBuilt
	}
	if topK <= 0 {
		return nil, domain.ErrInvalidTopK
	}
	q := ix.model.Transform(query)
	distances := make([]float64, len(ix.vectors))
	for i := range ix.vectors {
		distances[i] = tfidf.SquaredDistance(q, ix.vectors[i])
	}
	idxs := argsortAsc(distances)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, j := range idxs[:topK] {
		results = append(results, domain.SearchResult{Distance: distances[j], Document: ix.docs[j]})
	}
	return results, nil
}

func argsortAsc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] < vals[idxs[b]] })
	return idxs
}
