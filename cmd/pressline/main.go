// Command pressline fetches, searches and manages a personalized news
// feed from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pressline/pressline/internal/client"
	"github.com/pressline/pressline/internal/config"
	"github.com/pressline/pressline/internal/feed"
	"github.com/pressline/pressline/internal/logging"
	"github.com/pressline/pressline/internal/model"
	"github.com/pressline/pressline/internal/sched"
	"github.com/pressline/pressline/internal/store"
	"github.com/pressline/pressline/internal/summarize"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file path (default ~/.pressline/config.yaml)")
		category   = flag.String("category", model.CategoryAll, "feed category")
		search     = flag.String("search", "", "search query: keywords or a yyyy-MM-dd date")
		pages      = flag.Int("pages", 1, "number of pages to fetch")
		favorites  = flag.Bool("favorites", false, "list favorited articles and exit")
		history    = flag.Bool("history", false, "list read history and exit")
		summaryID  = flag.String("summarize", "", "generate a summary for the article with this ID from the current feed")
		daemon     = flag.Bool("daemon", false, "keep running and refresh on the configured schedule")
	)
	flag.Parse()

	if err := run(*configPath, *category, *search, *pages, *favorites, *history, *summaryID, *daemon); err != nil {
		fmt.Fprintln(os.Stderr, "pressline:", err)
		os.Exit(1)
	}
}

func run(configPath, category, search string, pages int, favorites, history bool, summarizeID string, daemon bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.Log.Dir); err != nil {
		logging.InitWriter(os.Stderr)
	}
	defer logging.Close()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if favorites {
		printArticles(st.Favorites())
		return nil
	}
	if history {
		printArticles(st.History())
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cl := client.New(client.Config{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout(),
		RatePerSecond: cfg.API.RatePerSecond,
	})

	var fetchErr error
	coord := feed.New(cl, st, func(u feed.Update) {
		if u.Err != nil {
			fetchErr = u.Err
		}
	})

	for page := 0; page < pages; page++ {
		var ok bool
		if page == 0 {
			if search != "" {
				ok = coord.Search(ctx, search, category, true)
			} else {
				ok = coord.LoadFeed(ctx, category, true)
			}
		} else {
			ok = coord.LoadMore(ctx)
		}
		if !ok {
			break
		}
		coord.Wait()
		if fetchErr != nil {
			return fetchErr
		}
	}

	articles := coord.Articles()
	printArticles(articles)

	if summarizeID != "" {
		if err := printSummary(ctx, cfg, st, articles, summarizeID); err != nil {
			return err
		}
	}

	if daemon && cfg.Refresh.Enabled {
		scheduler := sched.New(cl, coord, cfg.Refresh.Categories)
		if err := scheduler.Start(ctx, cfg.Refresh.Cron); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer scheduler.Stop()

		fmt.Println("refreshing on schedule, next at", scheduler.NextRefresh().Format("15:04:05"))
		<-ctx.Done()
		coord.Wait()
	}

	return nil
}

func printSummary(ctx context.Context, cfg *config.Config, st *store.Store, articles []model.Article, id string) error {
	svc := summarize.NewService(summarize.NewClient(summarize.Config{
		Endpoint: cfg.Summary.Endpoint,
		APIKey:   cfg.Summary.APIKey,
		Model:    cfg.Summary.Model,
		Timeout:  cfg.Summary.Timeout(),
	}), st)

	for _, a := range articles {
		if a.ID != id {
			continue
		}
		summary, err := svc.Summary(ctx, a)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(summary)
		return nil
	}
	return fmt.Errorf("article %q not in the current feed", id)
}

func printArticles(articles []model.Article) {
	if len(articles) == 0 {
		fmt.Println("no articles")
		return
	}
	for _, a := range articles {
		marks := make([]string, 0, 2)
		if a.IsRead {
			marks = append(marks, "read")
		}
		if a.IsFavorite {
			marks = append(marks, "fav")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = " [" + strings.Join(marks, ",") + "]"
		}
		fmt.Printf("%s  %s  %s / %s%s\n", a.ID, a.Title, a.Category, a.Publisher, suffix)
	}
}
