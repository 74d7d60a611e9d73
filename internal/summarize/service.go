package summarize

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/pressline/pressline/internal/logging"
	"github.com/pressline/pressline/internal/model"
	"github.com/pressline/pressline/internal/store"
)

// Generator produces a summary for an article body.
type Generator interface {
	Summarize(ctx context.Context, content string) (string, error)
	Available() bool
}

// Service serves article summaries from the store cache, generating and
// caching on miss. Concurrent requests for the same article share one
// generation.
type Service struct {
	gen   Generator
	store *store.Store
	group singleflight.Group
}

// NewService wires a generator to the summary cache.
func NewService(gen Generator, st *store.Store) *Service {
	return &Service{gen: gen, store: st}
}

// Available reports whether summaries can be generated at all.
func (s *Service) Available() bool { return s.gen.Available() }

// Summary returns the summary for an article, from cache when present.
// A cache write failure is logged but does not fail the request; the
// summary was already produced.
func (s *Service) Summary(ctx context.Context, a model.Article) (string, error) {
	if cached, ok := s.store.CachedSummary(a.ID); ok {
		logging.Debug("summary cache hit", "id", a.ID)
		return cached, nil
	}

	v, err, _ := s.group.Do(a.ID, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// cached between our miss and this call.
		if cached, ok := s.store.CachedSummary(a.ID); ok {
			return cached, nil
		}

		summary, err := s.gen.Summarize(ctx, a.Content)
		if err != nil {
			return "", err
		}
		if err := s.store.CacheSummary(a.ID, summary); err != nil {
			logging.Warn("summary cache write failed", "id", a.ID, "error", err)
		}
		return summary, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
