// Package sched runs the periodic background refresh: on each tick it
// warms the configured category pages and refreshes the active feed
// session.
package sched

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pressline/pressline/internal/client"
	"github.com/pressline/pressline/internal/feed"
	"github.com/pressline/pressline/internal/logging"
	"github.com/pressline/pressline/internal/model"
)

// Scheduler drives periodic refreshes through a cron spec.
type Scheduler struct {
	cron       *cron.Cron
	client     *client.Client
	coord      *feed.Coordinator
	categories []string
	entry      cron.EntryID
}

// New creates a Scheduler that refreshes the given categories. An empty
// category list falls back to the "all" feed.
func New(c *client.Client, coord *feed.Coordinator, categories []string) *Scheduler {
	if len(categories) == 0 {
		categories = []string{model.CategoryAll}
	}
	return &Scheduler{
		cron:       cron.New(),
		client:     c,
		coord:      coord,
		categories: categories,
	}
}

// Start registers the refresh job under the given cron spec and starts
// the scheduler. Returns an error when the spec does not parse.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	id, err := s.cron.AddFunc(spec, func() { s.refresh(ctx) })
	if err != nil {
		return err
	}
	s.entry = id
	s.cron.Start()
	logging.Info("background refresh scheduled", "spec", spec, "categories", len(s.categories))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// NextRefresh returns when the next refresh will fire, or the zero time
// when the scheduler is not running.
func (s *Scheduler) NextRefresh() time.Time {
	return s.cron.Entry(s.entry).Next
}

// refresh warms category pages and re-pulls the active feed. The feed
// refresh is skipped when a foreground fetch is in flight; the next
// tick will catch up.
func (s *Scheduler) refresh(ctx context.Context) {
	counts := s.client.PrefetchCategories(ctx, s.categories)
	total := 0
	for _, n := range counts {
		total += n
	}
	logging.Debug("category warmup done", "categories", len(counts), "articles", total)

	if !s.coord.LoadFeed(ctx, s.coord.Category(), true) {
		logging.Debug("feed refresh skipped, fetch in flight")
	}
}
