// Package lexical ranks passages against a query with TF-IDF when no
// embedding model is available.
package lexical

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Ranker scores a corpus with unigram and bigram TF-IDF and cosine similarity.
// It is stateless between calls; the vocabulary is fitted on each corpus.
type Ranker struct {
	threshold    float64
	maxFeatures  int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func NewRanker(threshold float64, maxFeatures int) *Ranker {
	return &Ranker{
		threshold:    threshold,
		maxFeatures:  maxFeatures,
		tokenPattern: regexp.MustCompile(`\b\w\w+\b`),
		stopwords:    defaultStopwords(),
	}
}

// Rank returns up to k corpus entries whose similarity to query exceeds the
// threshold, best first, ties in corpus order. When nothing clears the
// threshold it returns the first k entries as they are.
func (r *Ranker) Rank(corpus []string, query string, k int) []string {
	if len(corpus) == 0 || k <= 0 {
		return nil
	}

	docTerms := make([][]string, len(corpus))
	for i, text := range corpus {
		docTerms[i] = r.terms(text)
	}
	vocab, idf := r.fit(docTerms)

	queryVec := vectorize(r.terms(query), vocab, idf)
	type scored struct {
		idx   int
		score float64
	}
	var hits []scored
	if len(queryVec) > 0 {
		for i, terms := range docTerms {
			score := dot(queryVec, vectorize(terms, vocab, idf))
			if score > r.threshold {
				hits = append(hits, scored{idx: i, score: score})
			}
		}
	}

	if len(hits) == 0 {
		return append([]string(nil), corpus[:min(k, len(corpus))]...)
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	out := make([]string, 0, min(k, len(hits)))
	for _, h := range hits[:min(k, len(hits))] {
		out = append(out, corpus[h.idx])
	}
	return out
}

// terms lowercases, tokenizes, drops stopwords and adds adjacent bigrams.
func (r *Ranker) terms(text string) []string {
	raw := r.tokenPattern.FindAllString(strings.ToLower(text), -1)
	words := raw[:0]
	for _, t := range raw {
		if _, isStop := r.stopwords[t]; isStop {
			continue
		}
		words = append(words, t)
	}
	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for i := 1; i < len(words); i++ {
		out = append(out, words[i-1]+" "+words[i])
	}
	return out
}

// fit builds the capped vocabulary and smoothed idf weights.
func (r *Ranker) fit(docTerms [][]string) (map[string]int, []float64) {
	df := make(map[string]int)
	freq := make(map[string]int)
	for _, terms := range docTerms {
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			freq[t]++
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	if r.maxFeatures > 0 && len(terms) > r.maxFeatures {
		sort.Slice(terms, func(a, b int) bool {
			if freq[terms[a]] != freq[terms[b]] {
				return freq[terms[a]] > freq[terms[b]]
			}
			return terms[a] < terms[b]
		})
		terms = terms[:r.maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docTerms))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		vocab[t] = i
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1.0
	}
	return vocab, idf
}

// vectorize returns a sparse l2 normalized tf-idf vector.
func vectorize(terms []string, vocab map[string]int, idf []float64) map[int]float64 {
	vec := make(map[int]float64)
	for _, t := range terms {
		if idx, ok := vocab[t]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for idx, count := range vec {
		v := count * idf[idx]
		vec[idx] = v
		norm += v * v
	}
	if norm == 0 {
		return nil
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0.0
	for idx, v := range a {
		sum += v * b[idx]
	}
	return sum
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "against", "all", "am", "an", "and", "any", "are", "as", "at",
		"be", "because", "been", "before", "being", "below", "between", "both", "but", "by",
		"can", "could", "did", "do", "does", "doing", "don", "down", "during",
		"each", "else", "few", "for", "from", "further", "had", "has", "have", "having", "he", "her", "here",
		"hers", "herself", "him", "himself", "his", "how", "if", "in", "into", "is", "it", "its", "itself",
		"just", "me", "more", "most", "my", "myself", "no", "nor", "not", "now", "of", "off", "on", "once",
		"only", "or", "other", "our", "ours", "ourselves", "out", "over", "own", "same", "she", "should",
		"so", "some", "such", "than", "that", "the", "their", "theirs", "them", "themselves", "then", "there",
		"these", "they", "this", "those", "through", "to", "too", "under", "until", "up", "very", "was", "we",
		"were", "what", "when", "where", "which", "while", "who", "whom", "why", "will", "with", "would",
		"you", "your", "yours", "yourself", "yourselves",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
