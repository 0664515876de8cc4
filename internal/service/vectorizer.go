package service

import (
	"math"
	"sort"

	"chatbot/internal/utils"
)

// Vectorizer embeds text into a term-weighted (TF-IDF) feature space over
// unigrams and bigrams. Fit runs once at construction and the fitted state is
// read-only afterwards, so Transform is safe for concurrent use. Refitting is
// not thread-safe and must only happen while no readers are active.
type Vectorizer struct {
	maxFeatures int
	vocab       map[string]int
	idf         []float64
	fitted      bool
}

// NewVectorizer creates a vectorizer capped at maxFeatures terms
func NewVectorizer(maxFeatures int) *Vectorizer {
	return &Vectorizer{
		maxFeatures: maxFeatures,
		vocab:       make(map[string]int),
	}
}

// Fitted reports whether Fit completed with a non-empty vocabulary
func (v *Vectorizer) Fitted() bool {
	return v.fitted
}

// Dimensions returns the size of the fitted feature space
func (v *Vectorizer) Dimensions() int {
	return len(v.vocab)
}

// Fit builds the vocabulary and IDF weights from the given documents
func (v *Vectorizer) Fit(docs []string) {
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range ngrams(utils.Tokenize(doc)) {
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	if len(docFreq) == 0 {
		return
	}

	// Keep the most frequent terms; ties broken lexicographically so the
	// feature space is deterministic across restarts.
	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if docFreq[terms[i]] != docFreq[terms[j]] {
			return docFreq[terms[i]] > docFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		terms = terms[:v.maxFeatures]
	}

	n := float64(len(docs))
	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocab[term] = i
		// Smoothed IDF keeps terms present in every document from zeroing out
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	v.fitted = true
}

// Transform embeds text into the fitted feature space as an L2-normalized
// TF-IDF vector. Returns a zero vector for text sharing no terms with the
// vocabulary.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.vocab))
	if !v.fitted {
		return vec
	}

	for _, term := range ngrams(utils.Tokenize(text)) {
		if idx, ok := v.vocab[term]; ok {
			vec[idx] += v.idf[idx]
		}
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// ngrams expands tokens into unigrams plus adjacent bigrams
func ngrams(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
