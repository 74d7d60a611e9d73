package model

import "strings"

// CategoryAll is the pseudo-category that selects every permitted category.
const CategoryAll = "全部"

// CategoryOther is the exclusion-only sentinel. Articles whose remote
// category is blank or not in the permitted set are coerced to it, and it
// is never shown in any feed view.
const CategoryOther = "其他"

// Categories is the fixed, ordered set of category labels the app knows
// about. The remote API speaks Chinese labels; these match it verbatim.
var Categories = []string{
	CategoryAll,
	"娱乐",
	"军事",
	"教育",
	"文化",
	"健康",
	"财经",
	"体育",
	"汽车",
	"科技",
	"社会",
}

// NormalizeCategory maps an arbitrary remote category string to a
// permitted label, or to CategoryOther. It is total: every input maps
// somewhere, never to an error.
func NormalizeCategory(category string) string {
	c := strings.TrimSpace(category)
	if c == "" {
		return CategoryOther
	}
	for _, valid := range Categories {
		if c == valid {
			return c
		}
	}
	return CategoryOther
}
