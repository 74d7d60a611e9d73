// Package client talks to the remote news API and normalizes what it
// returns. Raw article records are defensively repaired, never rejected:
// missing IDs are synthesized, missing fields defaulted, and unknown
// categories coerced to the exclusion sentinel and dropped.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pressline/pressline/internal/apperr"
	"github.com/pressline/pressline/internal/logging"
	"github.com/pressline/pressline/internal/model"
)

// DefaultBaseURL is the production news-list endpoint.
const DefaultBaseURL = "https://api2.newsminer.net/svc/news/queryNewsList"

const userAgent = "pressline/1.0"

// maxConcurrentPrefetch limits parallel category warmup fetches.
const maxConcurrentPrefetch = 4

// Config controls the HTTP client behavior.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RatePerSecond throttles outbound requests; zero disables the limiter.
	RatePerSecond float64
}

// Client fetches and normalizes news pages. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	now func() time.Time // replaced in tests for deterministic IDs
}

// New creates a Client from config, filling in defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		now:     time.Now,
	}
}

// Query fetches one page of articles. The returned response holds only
// normalized articles; records coerced to the category sentinel are
// already filtered out. Errors are classified as network or decode.
func (c *Client) Query(ctx context.Context, p Params) (*model.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperr.NewNetwork("rate limit wait", err)
		}
	}

	reqURL := c.baseURL + "?" + p.encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.NewNetwork("create request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.NewNetwork("fetch news", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.NewNetwork("fetch news", fmt.Errorf("HTTP %d %s", resp.StatusCode, resp.Status))
	}

	var nr model.Response
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, apperr.NewDecode("decode news response", err)
	}

	raw := len(nr.Data)
	nr.Data = c.normalizeAll(nr.Data)
	logging.Debug("news page fetched",
		"page", p.Page, "raw", raw, "kept", len(nr.Data), "total", nr.Total)

	return &nr, nil
}

// PrefetchCategories warms one page per category in parallel and returns
// how many articles each yielded. Per-category failures are logged, not
// returned: warmup is best-effort.
func (c *Client) PrefetchCategories(ctx context.Context, categories []string) map[string]int {
	var (
		mu     sync.Mutex
		counts = make(map[string]int, len(categories))
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentPrefetch)

	for _, category := range categories {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			resp, err := c.Query(ctx, CategoryParams(category, 1))
			if err != nil {
				logging.Warn("category prefetch failed", "category", category, "error", err)
				return nil
			}
			mu.Lock()
			counts[category] = len(resp.Data)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return counts
}

// normalizeAll repairs every record and drops the ones that end up in
// the exclusion sentinel, which is never shown in any view.
func (c *Client) normalizeAll(articles []model.Article) []model.Article {
	nowMillis := c.now().UnixMilli()
	kept := make([]model.Article, 0, len(articles))
	for i := range articles {
		c.normalize(&articles[i], i, nowMillis)
		if articles[i].Category == model.CategoryOther {
			continue
		}
		kept = append(kept, articles[i])
	}
	return kept
}

// normalize fills defaults so downstream code never sees a half-formed
// article. A missing ID gets a synthesized one from the fetch clock and
// the record's index within the page; it stays stable for the lifetime
// of the article in memory and in the store.
func (c *Client) normalize(a *model.Article, index int, nowMillis int64) {
	if a.ID == "" {
		a.ID = fmt.Sprintf("news_%d_%d", nowMillis, index)
	}
	if a.Title == "" {
		a.Title = "无标题"
	}
	if a.Publisher == "" {
		a.Publisher = "未知来源"
	}
	if a.PublishTime == "" {
		a.PublishTime = c.now().Format("2006-01-02 15:04:05")
	}
	a.Category = model.NormalizeCategory(a.Category)
}
