package rank

import (
	"math/rand"
	"testing"

	"github.com/pressline/pressline/internal/model"
)

func TestScoreKeywordAnnotation(t *testing.T) {
	a := model.Article{
		Title:    "市场大涨",
		Content:  "今日A股创新高，投资者情绪高涨",
		Category: "财经",
		Keywords: []model.Keyword{{Word: "股市", Score: 0.9}},
	}

	got := Score(&a, "股市")
	if got < 90 {
		t.Errorf("Score = %v, want >= 90 from the keyword annotation alone", got)
	}
}

func TestScoreNoMatchingSignals(t *testing.T) {
	a := model.Article{
		Title:    "天气预报",
		Content:  "明天多云转晴",
		Category: "社会",
	}

	if got := Score(&a, "股市"); got != 0 {
		t.Errorf("Score = %v, want 0 for an article with no matching signals", got)
	}
}

func TestScoreEmptyQuery(t *testing.T) {
	a := model.Article{
		Title:    "市场大涨",
		Content:  "今日A股创新高",
		Keywords: []model.Keyword{{Word: "股市", Score: 0.9}},
	}

	for _, q := range []string{"", "   ", "\t\n"} {
		if got := Score(&a, q); got != 0 {
			t.Errorf("Score(%q) = %v, want 0", q, got)
		}
	}
}

func TestScoreNonNegative(t *testing.T) {
	articles := []model.Article{
		{},
		{Title: "hello"},
		{Content: "world", Publisher: "acme"},
		{Keywords: []model.Keyword{{Word: "go", Score: 0.5}}},
	}
	queries := []string{"", "go", "hello world", "股市 财经", "zzz"}

	for _, a := range articles {
		for _, q := range queries {
			if got := Score(&a, q); got < 0 {
				t.Errorf("Score(%q, %q) = %v, want >= 0", a.Title, q, got)
			}
		}
	}
}

func TestScoreKeywordOrderInvariant(t *testing.T) {
	keywords := []model.Keyword{
		{Word: "股市", Score: 0.5},
		{Word: "经济", Score: 0.25},
		{Word: "投资", Score: 0.125},
		{Word: "银行", Score: 0.75},
	}

	a := model.Article{Title: "财经快讯", Keywords: keywords}
	want := Score(&a, "股市 经济 投资")

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := make([]model.Keyword, len(keywords))
		copy(shuffled, keywords)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		a.Keywords = shuffled
		if got := Score(&a, "股市 经济 投资"); got != want {
			t.Errorf("shuffle %d: Score = %v, want %v", i, got, want)
		}
	}
}

func TestScoreTitleSignals(t *testing.T) {
	tests := []struct {
		name  string
		title string
		query string
		want  float64
	}{
		// full match 50 + word match 20 + prefix 10
		{"full match with prefix", "股市大涨", "股市", 80},
		// full match 50 + word match 20, no prefix
		{"word match mid title", "今日股市行情", "股市", 70},
		// words 20+20, prefix 10, all-words 30; no contiguous full match
		{"all words bonus", "股市上扬 经济向好", "股市 经济", 80},
		{"no match", "天气预报", "股市", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := model.Article{Title: tt.title}
			if got := Score(&a, tt.query); got != tt.want {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.title, tt.query, got, tt.want)
			}
		})
	}
}

func TestScoreContentOccurrenceCap(t *testing.T) {
	// Seven occurrences: full 15 + word 5 + min(7*2, 10) = 30.
	a := model.Article{Content: "go go go go go go go"}
	if got := Score(&a, "go"); got != 30 {
		t.Errorf("Score = %v, want 30 with the occurrence bonus capped at 10", got)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	a := model.Article{Title: "Breaking News Today"}
	if got, want := Score(&a, "BREAKING"), Score(&a, "breaking"); got != want {
		t.Errorf("case-sensitive scores differ: %v vs %v", got, want)
	}
}

func TestSortByRelevanceOrdersDescending(t *testing.T) {
	articles := []model.Article{
		{ID: "low", Title: "无关内容"},
		{ID: "high", Title: "股市大涨", Keywords: []model.Keyword{{Word: "股市", Score: 0.9}}},
		{ID: "mid", Content: "今日股市平稳"},
	}

	sorted := SortByRelevance(articles, "股市")

	if sorted[0].ID != "high" || sorted[1].ID != "mid" || sorted[2].ID != "low" {
		t.Errorf("order = %s, %s, %s; want high, mid, low", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].RelevanceScore < sorted[i].RelevanceScore {
			t.Errorf("scores not descending at %d: %v < %v", i, sorted[i-1].RelevanceScore, sorted[i].RelevanceScore)
		}
	}
}

func TestSortByRelevanceStable(t *testing.T) {
	// All articles score identically; input order must survive.
	articles := []model.Article{
		{ID: "a", Title: "股市一"},
		{ID: "b", Title: "股市二"},
		{ID: "c", Title: "股市三"},
	}

	sorted := SortByRelevance(articles, "股市")
	for i, id := range []string{"a", "b", "c"} {
		if sorted[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, sorted[i].ID, id)
		}
	}
}

func TestSortByRelevanceDoesNotMutateInput(t *testing.T) {
	articles := []model.Article{
		{ID: "a", Title: "无关"},
		{ID: "b", Title: "股市", Keywords: []model.Keyword{{Word: "股市", Score: 1}}},
	}

	SortByRelevance(articles, "股市")

	if articles[0].ID != "a" || articles[1].ID != "b" {
		t.Error("input slice was reordered")
	}
	if articles[1].RelevanceScore != 0 {
		t.Error("input articles were scored in place")
	}
}
