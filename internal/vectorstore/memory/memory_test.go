package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/embedding/tfidf"
)

func buildIndex(t *testing.T, texts ...string) *Index {
	t.Helper()
	b := NewBuilder(2)
	for i, text := range texts {
		require.NoError(t, b.Add(text, domain.Metadata{FileName: text[:3], Version: "1.0", DocType: "general", Path: string(rune('a' + i))}))
	}
	ix, err := b.Build(context.Background())
	require.NoError(t, err)
	return ix
}

func TestBuild_Empty(t *testing.T) {
	_, err := NewBuilder(0).Build(context.Background())
	require.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestBuild_FreezesBuilder(t *testing.T) {
	b := NewBuilder(1)
	require.NoError(t, b.Add("payment refunds", domain.Metadata{}))
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	require.ErrorIs(t, b.Add("late document", domain.Metadata{}), domain.ErrIndexFrozen)
	_, err = b.Build(context.Background())
	require.ErrorIs(t, err, domain.ErrIndexFrozen)
	assert.Equal(t, 1, b.Len())
}

func TestBuild_AssignsSequentialIDs(t *testing.T) {
	ix := buildIndex(t, "alpha payments", "beta webhooks", "gamma auth tokens")
	require.Equal(t, 3, ix.Len())
	for i := 0; i < ix.Len(); i++ {
		assert.Equal(t, i, ix.Document(i).ID)
		assert.Equal(t, ix.Model().Dimension(), ix.Vector(i).Dim)
	}
	assert.Len(t, ix.Metadata(), 3)
}

func TestSearch_NotBuilt(t *testing.T) {
	var ix *Index
	_, err := ix.Search("anything", 3)
	require.ErrorIs(t, err, domain.ErrIndexNotBuilt)
}

func TestSearch_InvalidTopK(t *testing.T) {
	ix := buildIndex(t, "alpha payments")
	_, err := ix.Search("alpha", 0)
	require.ErrorIs(t, err, domain.ErrInvalidTopK)
}

func TestSearch_RanksByDistance(t *testing.T) {
	ix := buildIndex(t,
		"webhook signature verification retries",
		"payment intents capture refunds",
		"oauth token refresh login",
	)

	res, err := ix.Search("payment refunds", 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, 1, res[0].Document.ID)
	for i := 1; i < len(res); i++ {
		assert.LessOrEqual(t, res[i-1].Distance, res[i].Distance)
	}
	for _, r := range res {
		assert.GreaterOrEqual(t, r.Distance, 0.0)
	}
}

func TestSearch_ExactMatchHasZeroDistance(t *testing.T) {
	ix := buildIndex(t, "webhook signature verification", "payment intents capture")
	res, err := ix.Search("payment intents capture", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 1, res[0].Document.ID)
	assert.Equal(t, 0.0, res[0].Distance)
}

func TestSearch_ClampsTopK(t *testing.T) {
	ix := buildIndex(t, "alpha payments", "beta webhooks")
	res, err := ix.Search("alpha", 50)
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	ix := buildIndex(t, "alpha payments", "beta webhooks", "gamma tokens")
	// unknown terms produce a zero query vector, every unit document is at distance 1
	res, err := ix.Search("zzz unknown", 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for i, r := range res {
		assert.Equal(t, i, r.Document.ID)
		assert.InDelta(t, 1.0, r.Distance, 1e-12)
	}
}

func TestSearch_Idempotent(t *testing.T) {
	ix := buildIndex(t, "alpha payments refunds", "beta webhooks", "payments gamma")
	first, err := ix.Search("payments", 2)
	require.NoError(t, err)
	second, err := ix.Search("payments", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNew_RejectsMisalignedParts(t *testing.T) {
	ix := buildIndex(t, "alpha payments", "beta webhooks")
	docs := []domain.Document{ix.Document(0), ix.Document(1)}

	_, err := New(ix.Model(), docs, []tfidf.Vector{ix.Vector(0)})
	require.ErrorIs(t, err, domain.ErrCorruptStore)

	swapped := []domain.Document{ix.Document(1), ix.Document(0)}
	_, err = New(ix.Model(), swapped, []tfidf.Vector{ix.Vector(0), ix.Vector(1)})
	require.ErrorIs(t, err, domain.ErrCorruptStore)

	bad := tfidf.Vector{Dim: ix.Model().Dimension(), Indices: []int{ix.Model().Dimension()}, Weights: []float64{1}}
	_, err = New(ix.Model(), docs, []tfidf.Vector{ix.Vector(0), bad})
	require.ErrorIs(t, err, domain.ErrCorruptStore)

	rebuilt, err := New(ix.Model(), docs, []tfidf.Vector{ix.Vector(0), ix.Vector(1)})
	require.NoError(t, err)
	assert.Equal(t, 2, rebuilt.Len())
}

func TestStats(t *testing.T) {
	ix := buildIndex(t, "alpha payments", "beta webhooks")
	st := ix.Stats()
	assert.Equal(t, 2, st.Documents)
	assert.Equal(t, 4, st.Vocabulary)
	assert.Equal(t, 4, st.NonZero)
	assert.InDelta(t, 0.5, st.Density, 1e-12)
	assert.Equal(t, IndexType, st.IndexType)
}
