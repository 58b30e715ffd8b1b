package memstore

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// BM25 parameters, tuned for short interaction snippets.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// rankRecords orders records by BM25 relevance to the query, most
// relevant first, with ties broken by recency. Records scoring zero
// are dropped. The scoring runs against the candidate set directly
// instead of a persistent inverted index: candidate sets here are one
// user's interaction history, small enough to score per call.
func rankRecords(records []Record, query string, limit int) []Record {
	if len(records) == 0 {
		return nil
	}
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	freqs := make([]map[string]int, len(records))
	lengths := make([]int, len(records))
	totalLen := 0
	for i, r := range records {
		tokens := tokenize(r.Content)
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		freqs[i] = tf
		lengths[i] = len(tokens)
		totalLen += len(tokens)
	}
	if totalLen == 0 {
		return nil
	}
	avgDL := float64(totalLen) / float64(len(records))

	// Document frequency per query term across the candidate set.
	df := make(map[string]int, len(queryTokens))
	for _, term := range queryTokens {
		if _, seen := df[term]; seen {
			continue
		}
		n := 0
		for _, tf := range freqs {
			if tf[term] > 0 {
				n++
			}
		}
		df[term] = n
	}

	type scored struct {
		idx   int
		score float64
	}
	results := make([]scored, 0, len(records))
	for i := range records {
		s := bm25Score(freqs[i], lengths[i], queryTokens, df, len(records), avgDL)
		if s > 0 {
			results = append(results, scored{idx: i, score: s})
		}
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].score != results[b].score {
			return results[a].score > results[b].score
		}
		return records[results[a].idx].CreatedAt.After(records[results[b].idx].CreatedAt)
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	out := make([]Record, len(results))
	for i, r := range results {
		out[i] = records[r.idx]
	}
	return out
}

func bm25Score(tf map[string]int, docLen int, queryTokens []string, df map[string]int, totalDocs int, avgDL float64) float64 {
	score := 0.0
	for _, term := range queryTokens {
		f := float64(tf[term])
		if f == 0 {
			continue
		}
		n := float64(df[term])
		idf := math.Log((float64(totalDocs)-n+0.5)/(n+0.5) + 1.0)
		numerator := f * (bm25K1 + 1)
		denominator := f + bm25K1*(1-bm25B+bm25B*float64(docLen)/avgDL)
		score += idf * numerator / denominator
	}
	return score
}

// tokenize splits text into lowercase tokens, dropping punctuation and
// stop words.
func tokenize(text string) []string {
	text = strings.ToLower(text)
	tokens := make([]string, 0, len(text)/4)
	var current strings.Builder
	emit := func() {
		if current.Len() == 0 {
			return
		}
		if token := current.String(); !stopWords[token] {
			tokens = append(tokens, token)
		}
		current.Reset()
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			emit()
		}
	}
	emit()
	return tokens
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "do": true,
	"does": true, "did": true, "to": true, "of": true, "in": true,
	"for": true, "on": true, "with": true, "at": true, "by": true,
	"from": true, "and": true, "but": true, "or": true, "not": true,
	"this": true, "that": true, "it": true, "i": true, "you": true,
	"what": true, "how": true, "can": true, "me": true, "my": true,
}
