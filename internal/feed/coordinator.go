// Package feed coordinates the user-visible article feed: remote page
// fetches, category filtering, read/favorite overlay, pagination and
// search dispatch.
//
// A Coordinator runs one fetch at a time. Requests issued while one is
// in flight are rejected, not queued; there is no cancellation, so a
// response that lands after the session has moved on is applied as if
// it were current. Results are delivered through a callback, exactly
// once per accepted request, on success and on error alike.
package feed

import (
	"context"
	"strings"
	"sync"

	"github.com/pressline/pressline/internal/client"
	"github.com/pressline/pressline/internal/logging"
	"github.com/pressline/pressline/internal/model"
	"github.com/pressline/pressline/internal/rank"
	"github.com/pressline/pressline/internal/store"
)

// Fetcher is the remote page source. *client.Client satisfies it; tests
// inject fakes.
type Fetcher interface {
	Query(ctx context.Context, p client.Params) (*model.Response, error)
}

// Update is one delivery of fetch results. Articles is the full feed
// after the page was applied; on error it reflects the post-error feed
// (cleared when the failed request was a refresh).
type Update struct {
	Articles []model.Article
	Total    int
	Err      error
}

// Coordinator drives one feed session. Safe for concurrent use; the
// in-flight guard serializes actual fetches.
type Coordinator struct {
	fetcher Fetcher
	store   *store.Store
	notify  func(Update) // optional

	mu       sync.Mutex
	loading  bool
	category string
	keyword  string // empty in browse mode
	page     int
	articles []model.Article
	wg       sync.WaitGroup
}

// New creates a Coordinator. The notify callback may be nil when the
// caller polls Articles instead.
func New(f Fetcher, st *store.Store, notify func(Update)) *Coordinator {
	return &Coordinator{
		fetcher:  f,
		store:    st,
		notify:   notify,
		category: model.CategoryAll,
		page:     1,
	}
}

// LoadFeed fetches the next page of the given category in browse mode.
// refresh restarts from page 1; the current list is cleared only when
// the response (or error) arrives, so a fast network never flashes an
// empty feed. Returns false without side effects when a fetch is
// already in flight.
func (c *Coordinator) LoadFeed(ctx context.Context, category string, refresh bool) bool {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		logging.Debug("fetch rejected, already loading", "category", category)
		return false
	}
	c.loading = true
	c.keyword = ""
	if refresh || category != c.category {
		c.page = 1
	}
	c.category = category
	page := c.page
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		resp, err := c.fetcher.Query(ctx, client.CategoryParams(category, page))
		c.finish(resp, err, category, "", refresh)
	}()
	return true
}

// Search fetches results for a query. A query that passes the strict
// calendar-date check runs in date mode: a one-day time-range fetch
// with no relevance reordering. Anything else runs in keyword mode:
// fetch, reorder by relevance, then keep only articles whose title or
// body literally contains the query. An empty query falls back to a
// plain feed load. Returns false when a fetch is in flight.
func (c *Coordinator) Search(ctx context.Context, query, category string, refresh bool) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.LoadFeed(ctx, category, refresh)
	}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		logging.Debug("search rejected, already loading", "query", query)
		return false
	}
	c.loading = true
	if refresh || query != c.keyword || category != c.category {
		c.page = 1
	}
	c.keyword = query
	c.category = category
	page := c.page
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		var p client.Params
		if model.IsDateQuery(query) {
			p = client.TimeRangeParams(query, model.NextDay(query), page)
		} else {
			p = client.SearchParams(query, category, page)
		}
		resp, err := c.fetcher.Query(ctx, p)
		c.finish(resp, err, category, query, refresh)
	}()
	return true
}

// LoadMore fetches the next page of whatever the session is currently
// showing, browse feed or search results.
func (c *Coordinator) LoadMore(ctx context.Context) bool {
	c.mu.Lock()
	keyword, category := c.keyword, c.category
	c.mu.Unlock()

	if keyword != "" {
		return c.Search(ctx, keyword, category, false)
	}
	return c.LoadFeed(ctx, category, false)
}

// finish applies one response to the session and clears the in-flight
// flag. It runs the whole result pipeline: category filter, relevance
// reorder and containment filter for keyword queries, store overlay.
func (c *Coordinator) finish(resp *model.Response, err error, category, keyword string, refresh bool) {
	c.mu.Lock()
	c.loading = false

	if err != nil {
		if refresh {
			c.articles = nil
		}
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		logging.Warn("fetch failed", "category", category, "keyword", keyword, "error", err)
		c.deliver(Update{Articles: snapshot, Err: err})
		return
	}

	page := filterByCategory(resp.Data, category)
	if keyword != "" && !model.IsDateQuery(keyword) {
		page = rank.SortByRelevance(page, keyword)
		page = filterByContainment(page, keyword)
	}
	c.overlay(page)

	if refresh {
		c.articles = page
	} else {
		c.articles = append(c.articles, page...)
	}
	// An empty response page does not advance the counter; the next
	// load retries the same page.
	if len(resp.Data) > 0 {
		c.page++
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	logging.Info("feed updated",
		"category", category, "keyword", keyword, "added", len(page), "size", len(snapshot))
	c.deliver(Update{Articles: snapshot, Total: resp.Total})
}

func (c *Coordinator) deliver(u Update) {
	if c.notify != nil {
		c.notify(u)
	}
}

// OpenArticle records a read and returns the article with its overlay
// flags updated. The in-memory feed entry is updated too.
func (c *Coordinator) OpenArticle(a model.Article) (model.Article, error) {
	if err := c.store.RecordRead(a); err != nil {
		return a, err
	}
	a.IsRead = true
	a.ReadAt = c.store.ReadAt(a.ID)

	c.mu.Lock()
	for i := range c.articles {
		if c.articles[i].ID == a.ID {
			c.articles[i].IsRead = true
			c.articles[i].ReadAt = a.ReadAt
		}
	}
	c.mu.Unlock()
	return a, nil
}

// ToggleFavorite flips the favorite state of an article and reports the
// new state.
func (c *Coordinator) ToggleFavorite(a model.Article) (bool, error) {
	var (
		now bool
		err error
	)
	if c.store.IsFavorite(a.ID) {
		err = c.store.RemoveFavorite(a.ID)
	} else {
		err = c.store.AddFavorite(a)
		now = true
	}
	if err != nil {
		return !now, err
	}

	c.mu.Lock()
	for i := range c.articles {
		if c.articles[i].ID == a.ID {
			c.articles[i].IsFavorite = now
		}
	}
	c.mu.Unlock()
	return now, nil
}

// Articles returns a copy of the current feed.
func (c *Coordinator) Articles() []model.Article {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Loading reports whether a fetch is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Category returns the session's current category.
func (c *Coordinator) Category() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

// Keyword returns the active search query, or "" in browse mode.
func (c *Coordinator) Keyword() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyword
}

// Wait blocks until all dispatched fetches have delivered.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) snapshotLocked() []model.Article {
	out := make([]model.Article, len(c.articles))
	copy(out, c.articles)
	return out
}

// overlay fills each article's read/favorite state from the store.
func (c *Coordinator) overlay(articles []model.Article) {
	for i := range articles {
		id := articles[i].ID
		articles[i].IsRead = c.store.IsRead(id)
		articles[i].IsFavorite = c.store.IsFavorite(id)
		if articles[i].IsRead {
			articles[i].ReadAt = c.store.ReadAt(id)
		}
	}
}

// filterByCategory keeps only articles of the requested category.
// "all" passes everything through; the exclusion sentinel was already
// dropped during fetch normalization.
func filterByCategory(articles []model.Article, category string) []model.Article {
	if category == "" || category == model.CategoryAll {
		out := make([]model.Article, len(articles))
		copy(out, articles)
		return out
	}
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// filterByContainment keeps articles whose title or body contains the
// query, case-insensitive. Order is preserved.
func filterByContainment(articles []model.Article, query string) []model.Article {
	q := strings.ToLower(query)
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Content), q) {
			out = append(out, a)
		}
	}
	return out
}
