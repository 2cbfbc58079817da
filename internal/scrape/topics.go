// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are common English and bibliographic filler words excluded
// from trending-topic counts.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else",
		"of", "in", "on", "at", "to", "for", "from", "by", "with",
		"about", "into", "through", "during", "before", "after",
		"above", "below", "between", "under", "over", "is", "are",
		"was", "were", "be", "been", "being", "have", "has", "had",
		"do", "does", "did", "will", "would", "can", "could", "should",
		"may", "might", "must", "shall", "this", "that", "these",
		"those", "we", "our", "us", "it", "its", "as", "such", "via",
		"using", "use", "used", "based", "new", "novel", "paper",
		"approach", "method", "methods", "model", "models", "results",
		"show", "study", "propose", "proposed", "present", "also",
		"which", "their", "than", "both", "more", "most", "other",
		"two", "one", "not", "no", "however", "well", "each", "all",
	} {
		stopwords[w] = struct{}{}
	}
}

// TrendingTopics returns the most frequent non-stopword terms across
// the given titles and abstracts, most frequent first, at most limit
// entries. Terms shorter than four characters are ignored.
func TrendingTopics(texts []string, limit int) []string {
	if limit <= 0 {
		limit = 10
	}

	counts := make(map[string]int)
	for _, text := range texts {
		for _, word := range tokenize(text) {
			if len(word) < 4 {
				continue
			}
			if _, skip := stopwords[word]; skip {
				continue
			}
			counts[word]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	// Ties break alphabetically so output is deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

// tokenize lowercases text and splits on anything that is not a
// letter, digit, or hyphen.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}
