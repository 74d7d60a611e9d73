package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pressline/pressline/internal/client"
	"github.com/pressline/pressline/internal/feed"
	"github.com/pressline/pressline/internal/model"
	"github.com/pressline/pressline/internal/store"
	"github.com/pressline/pressline/internal/summarize"
)

// newsServer serves canned pages in the remote API's shape.
func newsServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		resp := model.Response{
			Total:       3,
			CurrentPage: 1,
			Data: []model.Article{
				{ID: "n1", Title: "股市大涨创新高", Content: "今日A股大涨", Category: "财经",
					Publisher: "财经日报", PublishTime: "2024-01-15 08:00:00",
					Keywords: []model.Keyword{{Word: "股市", Score: 0.9}}},
				{ID: "n2", Title: "新款手机发布", Content: "发布会今日举行", Category: "科技",
					Publisher: "科技报", PublishTime: "2024-01-15 09:00:00"},
				{ID: "n3", Title: "未知板块消息", Content: "正文", Category: "奇怪分类",
					Publisher: "某处", PublishTime: "2024-01-15 10:00:00"},
			},
		}
		if q.Get("words") == "股市" {
			resp.Data = resp.Data[:1]
			resp.Total = 1
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedPipeline(t *testing.T) {
	srv := newsServer(t)
	dbPath := filepath.Join(t.TempDir(), "pressline.db")

	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	cl := client.New(client.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	coord := feed.New(cl, st, nil)
	ctx := context.Background()

	// Browse: the unknown-category article never reaches the feed.
	if !coord.LoadFeed(ctx, model.CategoryAll, true) {
		t.Fatal("LoadFeed rejected")
	}
	coord.Wait()

	articles := coord.Articles()
	if len(articles) != 2 {
		t.Fatalf("feed holds %d articles, want 2", len(articles))
	}
	for _, a := range articles {
		if a.Category == model.CategoryOther {
			t.Errorf("sentinel article %s reached the feed", a.ID)
		}
	}

	// Open and favorite survive in the store.
	if _, err := coord.OpenArticle(articles[0]); err != nil {
		t.Fatalf("OpenArticle: %v", err)
	}
	if _, err := coord.ToggleFavorite(articles[1]); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}

	// Search: relevance-ordered, containment-filtered.
	if !coord.Search(ctx, "股市", model.CategoryAll, true) {
		t.Fatal("Search rejected")
	}
	coord.Wait()

	results := coord.Articles()
	if len(results) != 1 || results[0].ID != "n1" {
		t.Fatalf("search results = %v, want only n1", results)
	}
	if !results[0].IsRead {
		t.Error("read overlay lost on the search pass")
	}

	// State persists across a store re-open.
	if err := st.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	reopened, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	if !reopened.IsRead("n1") {
		t.Error("read state lost across reopen")
	}
	if !reopened.IsFavorite("n2") {
		t.Error("favorite state lost across reopen")
	}
}

func TestSummaryPipeline(t *testing.T) {
	glm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "今日股市大涨。"}},
			},
		})
	}))
	defer glm.Close()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	svc := summarize.NewService(summarize.NewClient(summarize.Config{
		Endpoint: glm.URL,
		APIKey:   "test-key",
	}), st)

	a := model.Article{ID: "n1", Content: "今日A股大涨，成交量放大"}
	got, err := svc.Summary(context.Background(), a)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got != "今日股市大涨。" {
		t.Errorf("Summary = %q", got)
	}

	// Second call is a cache hit even if the provider goes away.
	glm.Close()
	again, err := svc.Summary(context.Background(), a)
	if err != nil {
		t.Fatalf("cached Summary: %v", err)
	}
	if again != got {
		t.Errorf("cached Summary = %q, want %q", again, got)
	}
}
