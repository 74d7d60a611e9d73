package client

import (
	"net/url"
	"strconv"
	"time"

	"github.com/pressline/pressline/internal/model"
)

// Params are the query parameters of the remote news-list endpoint.
// Words is always sent, even when empty: the upstream API requires the
// parameter to be present on time-range queries.
type Params struct {
	Size       int
	StartDate  string // yyyy-MM-dd
	EndDate    string // yyyy-MM-dd
	Words      string
	Categories string
	Page       int
}

const (
	defaultPageSize = 30
	defaultWords    = "新闻"
	// earliestDate is the open-ended start of the default window; the
	// upstream archive reaches back this far.
	earliestDate = "2019-01-01"
)

// DefaultParams is the broad first-page query used by the "all" feed.
func DefaultParams() Params {
	return Params{
		Size:      defaultPageSize,
		Page:      1,
		StartDate: earliestDate,
		EndDate:   time.Now().Format("2006-01-02"),
		Words:     defaultWords,
	}
}

// CategoryParams targets one category page. The category doubles as the
// search word: the upstream category index alone is too sparse.
func CategoryParams(category string, page int) Params {
	p := DefaultParams()
	if category != "" && category != model.CategoryAll {
		p.Words = category
		p.Categories = category
	}
	p.Page = page
	return p
}

// SearchParams is a keyword query, optionally scoped to a category.
func SearchParams(words, category string, page int) Params {
	p := DefaultParams()
	if words != "" {
		p.Words = words
	}
	if category != "" && category != model.CategoryAll {
		p.Categories = category
	}
	p.Page = page
	return p
}

// TimeRangeParams is a date-window query with no keywords.
func TimeRangeParams(startDate, endDate string, page int) Params {
	return Params{
		Size:      defaultPageSize,
		Page:      page,
		StartDate: startDate,
		EndDate:   endDate,
		Words:     "", // required by the API even when empty
	}
}

// encode renders the parameters as a query string. Words is included
// unconditionally; the rest only when set.
func (p Params) encode() string {
	v := url.Values{}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	if p.StartDate != "" {
		v.Set("startDate", p.StartDate)
	}
	if p.EndDate != "" {
		v.Set("endDate", p.EndDate)
	}
	v.Set("words", p.Words)
	if p.Categories != "" {
		v.Set("categories", p.Categories)
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v.Encode()
}
