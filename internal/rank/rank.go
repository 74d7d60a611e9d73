// Package rank scores articles against a free-text query and orders
// search results by that score.
//
// The score is a heuristic built from independent additive signals, not
// an IR model: upstream keyword annotations carry the most weight,
// followed by title, content, category and publisher matches. Scoring is
// pure and deterministic; ordering is the only contract, there is no
// relevance cutoff.
package rank

import (
	"sort"
	"strings"

	"github.com/pressline/pressline/internal/model"
)

// Signal weights. The keyword annotation weight scales the upstream
// score from [0,1] into the same range as the text signals.
const (
	keywordWeight      = 100.0
	titleFullMatch     = 50.0
	titleWordMatch     = 20.0
	titlePrefixBonus   = 10.0
	titleAllWordsBonus = 30.0
	contentFullMatch   = 15.0
	contentWordMatch   = 5.0
	contentOccurrence  = 2.0
	contentOccurCap    = 10.0
	categoryWordMatch  = 15.0
	publisherWordMatch = 8.0
)

// Score computes the relevance of one article to a query. It is always
// >= 0, never errors, and never mutates the article. An empty or
// whitespace-only query scores 0.
func Score(a *model.Article, query string) float64 {
	full := strings.ToLower(strings.TrimSpace(query))
	words := strings.Fields(full)
	if len(words) == 0 {
		return 0
	}

	var total float64

	// Keyword annotations: one search word may claim each annotation.
	for _, kw := range a.Keywords {
		word := strings.ToLower(kw.Word)
		if word == "" {
			continue
		}
		for _, w := range words {
			if strings.Contains(word, w) || strings.Contains(w, word) {
				total += kw.Score * keywordWeight
				break
			}
		}
	}

	if a.Title != "" {
		title := strings.ToLower(a.Title)
		if strings.Contains(title, full) {
			total += titleFullMatch
		}
		matched := 0
		for _, w := range words {
			if strings.Contains(title, w) {
				matched++
				total += titleWordMatch
				if strings.HasPrefix(title, w) {
					total += titlePrefixBonus
				}
			}
		}
		if matched == len(words) && len(words) > 1 {
			total += titleAllWordsBonus
		}
	}

	if a.Content != "" {
		content := strings.ToLower(a.Content)
		if strings.Contains(content, full) {
			total += contentFullMatch
		}
		for _, w := range words {
			if strings.Contains(content, w) {
				total += contentWordMatch
				occurrences := strings.Count(content, w)
				total += min(float64(occurrences)*contentOccurrence, contentOccurCap)
			}
		}
	}

	if a.Category != "" {
		category := strings.ToLower(a.Category)
		for _, w := range words {
			if strings.Contains(category, w) {
				total += categoryWordMatch
			}
		}
	}

	if a.Publisher != "" {
		publisher := strings.ToLower(a.Publisher)
		for _, w := range words {
			if strings.Contains(publisher, w) {
				total += publisherWordMatch
			}
		}
	}

	return total
}

// SortByRelevance returns a new slice ordered by descending Score. The
// sort is stable: equal scores keep their input order. Each returned
// article carries its score in the transient RelevanceScore field.
func SortByRelevance(articles []model.Article, query string) []model.Article {
	sorted := make([]model.Article, len(articles))
	copy(sorted, articles)

	for i := range sorted {
		sorted[i].RelevanceScore = Score(&sorted[i], query)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})

	return sorted
}
