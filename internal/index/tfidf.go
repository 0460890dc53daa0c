package index

import (
	"math"
	"strings"
	"unicode"
)

// stopwords are dropped during tokenization. A compact English list keeps
// high-frequency glue words from dominating the term weights.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "and", "are", "as", "at", "be", "but", "by", "can",
		"do", "for", "from", "has", "have", "how", "if", "in", "into",
		"is", "it", "its", "more", "no", "not", "of", "on", "or", "our",
		"should", "such", "than", "that", "the", "their", "then", "there",
		"these", "they", "this", "to", "was", "we", "were", "what", "when",
		"where", "which", "who", "will", "with", "would", "you", "your",
	} {
		stopwords[w] = struct{}{}
	}
}

// tokenize lowercases the text and splits it on non-alphanumeric runes,
// dropping stopwords and single-character tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, skip := stopwords[f]; skip {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// termVector is a sparse TF-IDF vector keyed by term. Weights are
// L2-normalized, so the dot product of two termVectors is their cosine
// similarity.
type termVector map[string]float64

// dot returns the cosine similarity of two normalized term vectors,
// clamped to [0, 1].
func (v termVector) dot(other termVector) float64 {
	// Iterate the smaller map.
	if len(other) < len(v) {
		v, other = other, v
	}
	var sum float64
	for term, w := range v {
		if ow, ok := other[term]; ok {
			sum += w * ow
		}
	}
	return clamp01(sum)
}

// clamp01 bounds a similarity score to [0, 1]. Scores must never leave
// this range regardless of how they were produced.
func clamp01(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// vectorizer converts text into TF-IDF term vectors. It is fitted once
// on a corpus and then shared read-only between that corpus's vectors and
// every query vector, so both sides of a comparison use the same
// transform.
type vectorizer struct {
	docFreq map[string]int
	numDocs int
}

// fitVectorizer computes document frequencies over the corpus.
func fitVectorizer(texts []string) *vectorizer {
	v := &vectorizer{
		docFreq: make(map[string]int),
		numDocs: len(texts),
	}
	seen := make(map[string]struct{})
	for _, text := range texts {
		clear(seen)
		for _, term := range tokenize(text) {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			v.docFreq[term]++
		}
	}
	return v
}

// idf uses the smoothed formula ln((1+N)/(1+df)) + 1 so terms present in
// every document still carry a small positive weight.
func (v *vectorizer) idf(term string) float64 {
	df := v.docFreq[term]
	return math.Log(float64(1+v.numDocs)/float64(1+df)) + 1
}

// transform builds the L2-normalized TF-IDF vector for a text. Terms
// absent from the fitted vocabulary are dropped, matching the corpus-side
// transform.
func (v *vectorizer) transform(text string) termVector {
	counts := make(map[string]int)
	for _, term := range tokenize(text) {
		if _, known := v.docFreq[term]; !known {
			continue
		}
		counts[term]++
	}
	if len(counts) == 0 {
		return nil
	}

	vec := make(termVector, len(counts))
	var normSq float64
	for term, tf := range counts {
		w := float64(tf) * v.idf(term)
		vec[term] = w
		normSq += w * w
	}
	norm := math.Sqrt(normSq)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}
