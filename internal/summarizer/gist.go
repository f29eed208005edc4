// Package summarizer picks the sentences of a document that best represent
// it for a given query, for compact display of retrieved documents.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kanikakaushik1667-afk/GhostTraceAI/internal/embedding/tfidf"
)

var sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

// Sentences splits text into trimmed sentences. Trailing text without
// terminal punctuation is kept as a final sentence.
func Sentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

type ranked struct {
	idx     int
	overlap int
	score   float64
}

// Rank orders sentence indexes by relevance: sentences sharing more distinct
// terms with query come first, then those with higher normalized term
// frequency within the document. Ties keep document order.
func Rank(sentences []string, query string) []int {
	freq := make(map[string]float64)
	toks := make([][]string, len(sentences))
	for i, s := range sentences {
		toks[i] = tfidf.Tokenize(s)
		for _, t := range toks[i] {
			freq[t]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}

	q := make(map[string]struct{})
	for _, t := range tfidf.Tokenize(query) {
		q[t] = struct{}{}
	}

	rs := make([]ranked, len(sentences))
	for i := range sentences {
		r := ranked{idx: i}
		seen := make(map[string]struct{}, len(toks[i]))
		for _, t := range toks[i] {
			r.score += freq[t] / maxF
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if _, ok := q[t]; ok {
				r.overlap++
			}
		}
		if n := len(toks[i]); n > 0 {
			r.score /= math.Sqrt(float64(n))
		}
		rs[i] = r
	}
	sort.SliceStable(rs, func(a, b int) bool {
		if rs[a].overlap != rs[b].overlap {
			return rs[a].overlap > rs[b].overlap
		}
		return rs[a].score > rs[b].score
	})
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.idx
	}
	return out
}

// Gist returns up to maxSentences of the best ranked sentences of text,
// joined in their original order.
func Gist(text, query string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 1
	}
	sentences := Sentences(text)
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " ")
	}
	picked := Rank(sentences, query)[:maxSentences]
	sort.Ints(picked)
	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}
