// Package model defines the article and response types shared by the
// fetch client, the local store, and the feed coordinator.
package model

// Keyword is a topical term the upstream API attached to an article,
// with a relevance weight in [0,1].
type Keyword struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Entity is a named mention (person or organization) extracted upstream.
type Entity struct {
	Count     int    `json:"count"`
	LinkedURL string `json:"linkedURL,omitempty"`
	Mention   string `json:"mention,omitempty"`
}

// Location is a place mention with optional coordinates.
type Location struct {
	Longitude float64 `json:"lng,omitempty"`
	Latitude  float64 `json:"lat,omitempty"`
	Count     int     `json:"count"`
	LinkedURL string  `json:"linkedURL,omitempty"`
	Mention   string  `json:"mention,omitempty"`
}

// WordRef is a weighted word reference used by the when/where/who lists.
type WordRef struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Article is one news item as returned by the remote API, plus the
// locally overlaid read/favorite state.
//
// ID is immutable once assigned; every store lookup and dedup keys on it.
// Articles without a remote ID get a synthesized one during fetch
// normalization, before anything else sees them.
type Article struct {
	ID          string `json:"newsID"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Image       string `json:"image,omitempty"`
	Video       string `json:"video,omitempty"`
	Publisher   string `json:"publisher"`
	Category    string `json:"category"`
	PublishTime string `json:"publishTime"` // "2006-01-02 15:04:05"
	CrawlTime   string `json:"crawlTime,omitempty"`
	Language    string `json:"language,omitempty"`

	Keywords      []Keyword  `json:"keywords,omitempty"`
	Persons       []Entity   `json:"persons,omitempty"`
	Organizations []Entity   `json:"organizations,omitempty"`
	Locations     []Location `json:"locations,omitempty"`
	When          []WordRef  `json:"when,omitempty"`
	Where         []WordRef  `json:"where,omitempty"`
	Who           []WordRef  `json:"who,omitempty"`

	// Local overlay, sourced from the store rather than the API.
	IsRead     bool  `json:"isRead,omitempty"`
	IsFavorite bool  `json:"isFavorite,omitempty"`
	ReadAt     int64 `json:"readAt,omitempty"` // unix millis, 0 if never read

	// RelevanceScore is a transient per-query ordering signal.
	// It must never reach the store, hence the json:"-".
	RelevanceScore float64 `json:"-"`
}

// Response is the envelope of the remote queryNewsList endpoint.
type Response struct {
	Total       int       `json:"total"`
	PageSize    int       `json:"pageSize"`
	CurrentPage int       `json:"currentPage"`
	Data        []Article `json:"data"`
}
