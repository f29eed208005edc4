package tfidf

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/domain"
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’]\p{L}+)*`)

// Model is a fitted term-weight model: a sorted vocabulary and one smoothed
// IDF weight per term. A fitted Model is read-only and safe for concurrent use.
type Model struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	stopwords  map[string]struct{}
}

// Params are the fitted parameters of a Model, suitable for persistence.
// Terms are sorted and IDF[i] belongs to Terms[i].
type Params struct {
	Terms []string
	IDF   []float64
}

// Fit builds the vocabulary and IDF values from the provided corpus.
// idf(t) = ln((1+N)/(1+df(t))) + 1.
func Fit(corpus []string) (*Model, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("fit term model: %w", domain.ErrEmptyCorpus)
	}
	stop := defaultStopwords()
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text, stop) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("fit term model: no tokens in %d documents: %w", len(corpus), domain.ErrEmptyCorpus)
	}
	// Stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return newModel(terms, idf, stop), nil
}

// FromParams restores a Model from persisted parameters without re-fitting.
func FromParams(p Params) (*Model, error) {
	if len(p.Terms) == 0 {
		return nil, fmt.Errorf("restore term model: %w", domain.ErrEmptyCorpus)
	}
	if len(p.Terms) != len(p.IDF) {
		return nil, fmt.Errorf("restore term model: %d terms but %d weights", len(p.Terms), len(p.IDF))
	}
	if !sort.StringsAreSorted(p.Terms) {
		return nil, fmt.Errorf("restore term model: vocabulary is not sorted")
	}
	terms := append([]string(nil), p.Terms...)
	idf := append([]float64(nil), p.IDF...)
	return newModel(terms, idf, defaultStopwords()), nil
}

func newModel(terms []string, idf []float64, stop map[string]struct{}) *Model {
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return &Model{vocabulary: vocab, terms: terms, idf: idf, stopwords: stop}
}

// Dimension returns the vocabulary size, which is the dimensionality of every
// vector this model produces.
func (m *Model) Dimension() int { return len(m.terms) }

// Params returns a copy of the fitted parameters.
func (m *Model) Params() Params {
	return Params{
		Terms: append([]string(nil), m.terms...),
		IDF:   append([]float64(nil), m.idf...),
	}
}

// Transform computes the term-weight vector for text: raw term counts scaled
// by IDF, then L2-normalized. Terms outside the vocabulary are dropped.
func (m *Model) Transform(text string) Vector {
	tf := make(map[int]int)
	for _, tok := range tokenize(text, m.stopwords) {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
		}
	}
	vec := Vector{Dim: len(m.terms)}
	if len(tf) == 0 {
		return vec
	}
	vec.Indices = make([]int, 0, len(tf))
	for idx := range tf {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)
	vec.Weights = make([]float64, len(vec.Indices))
	norm := 0.0
	for i, idx := range vec.Indices {
		w := float64(tf[idx]) * m.idf[idx]
		vec.Weights[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec.Weights {
			vec.Weights[i] /= norm
		}
	}
	return vec
}

func tokenize(text string, stopwords map[string]struct{}) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Tokenize returns the lower-cased, stopword-filtered tokens the model
// indexes for text, in order of appearance.
func Tokenize(text string) []string {
	return tokenize(text, defaultStopwords())
}
