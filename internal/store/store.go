// Package store persists the user's local news state: favorites, read
// history, read timestamps and the generated-summary cache.
//
// Each collection is one row in a SQLite key/value table, serialized as
// JSON. Collections are independently bounded (history at 100 entries,
// summaries at 200) and re-read on every operation, so several Store
// users see each other's writes. A single mutex serializes the
// read-modify-write cycle; that is the unit of atomicity.
//
// Corrupt persisted JSON is never an error here: the affected collection
// is treated as empty and overwritten on the next write.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pressline/pressline/internal/apperr"
	"github.com/pressline/pressline/internal/logging"
	"github.com/pressline/pressline/internal/model"
)

// Collection keys. The names mirror the on-disk layout of earlier
// releases so existing state survives an upgrade.
const (
	keyFavoriteIDs  = "favorites"
	keyFavoriteData = "favorite_news_data"
	keyHistoryIDs   = "read_news"
	keyHistoryData  = "read_news_data"
	keyReadTimes    = "read_times"
	keySummaries    = "summaries"
)

const (
	// historyCap bounds both history-ids and history-data.
	historyCap = 100
	// summaryCap is the summary-cache high-water mark; once exceeded,
	// summaryEvict entries are dropped in map iteration order. Which
	// entries survive is unspecified.
	summaryCap   = 200
	summaryEvict = 50
)

// Store is the single shared mutable resource of the engine. Safe for
// concurrent use from multiple sessions (feed view, detail view,
// background refresh) via an internal mutex.
type Store struct {
	db *sql.DB
	mu sync.Mutex

	now func() time.Time // replaced in tests
}

// Open creates or opens a store at the given SQLite path.
// ":memory:" is supported for tests.
func Open(path string) (*Store, error) {
	connStr := path
	if path == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, apperr.NewStorage("open database", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperr.NewStorage("ping database", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, apperr.NewStorage("enable WAL mode", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperr.NewStorage("create tables", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// AddFavorite marks an article as favorite and snapshots it. Idempotent:
// an already-favorited or ID-less article is a no-op.
func (s *Store) AddFavorite(a model.Article) error {
	if a.ID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.loadIDs(keyFavoriteIDs)
	for _, id := range ids {
		if id == a.ID {
			return nil
		}
	}
	ids = append(ids, a.ID)
	if err := s.save(keyFavoriteIDs, ids); err != nil {
		return err
	}

	data := s.loadArticles(keyFavoriteData)
	for _, existing := range data {
		if existing.ID == a.ID {
			return nil
		}
	}
	data = append(data, a)
	return s.save(keyFavoriteData, data)
}

// RemoveFavorite drops an article from the favorite list and its
// snapshot. Absent IDs are a no-op.
func (s *Store) RemoveFavorite(id string) error {
	if id == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.loadIDs(keyFavoriteIDs)
	ids = removeID(ids, id)
	if err := s.save(keyFavoriteIDs, ids); err != nil {
		return err
	}

	data := s.loadArticles(keyFavoriteData)
	kept := data[:0]
	for _, a := range data {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	return s.save(keyFavoriteData, kept)
}

// IsFavorite reports membership in the favorite list.
func (s *Store) IsFavorite(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, fav := range s.loadIDs(keyFavoriteIDs) {
		if fav == id {
			return true
		}
	}
	return false
}

// Favorites returns the favorited article snapshots in the order the
// favorite list was built.
func (s *Store) Favorites() []model.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.loadIDs(keyFavoriteIDs)
	data := s.loadArticles(keyFavoriteData)

	byID := make(map[string]model.Article, len(data))
	for _, a := range data {
		byID[a.ID] = a
	}

	out := make([]model.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			a.IsFavorite = true
			out = append(out, a)
		}
	}
	return out
}

// RecordRead moves an article to the front of the read history and
// stamps its read time. The history id list and snapshot list are kept
// in lockstep: remove any existing occurrence, insert at the front,
// truncate both to the cap. Calling it again with the same ID leaves
// exactly one entry, at the front.
func (s *Store) RecordRead(a model.Article) error {
	if a.ID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := removeID(s.loadIDs(keyHistoryIDs), a.ID)
	ids = append([]string{a.ID}, ids...)
	if len(ids) > historyCap {
		ids = ids[:historyCap]
	}
	if err := s.save(keyHistoryIDs, ids); err != nil {
		return err
	}

	data := s.loadArticles(keyHistoryData)
	kept := make([]model.Article, 0, len(data)+1)
	kept = append(kept, a)
	for _, existing := range data {
		if existing.ID != a.ID {
			kept = append(kept, existing)
		}
	}
	if len(kept) > historyCap {
		kept = kept[:historyCap]
	}
	if err := s.save(keyHistoryData, kept); err != nil {
		return err
	}

	times := s.loadTimes()
	times[a.ID] = s.now().UnixMilli()
	return s.save(keyReadTimes, times)
}

// IsRead reports membership in the read history.
func (s *Store) IsRead(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, read := range s.loadIDs(keyHistoryIDs) {
		if read == id {
			return true
		}
	}
	return false
}

// History returns the read article snapshots, most recent first.
func (s *Store) History() []model.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.loadIDs(keyHistoryIDs)
	data := s.loadArticles(keyHistoryData)
	times := s.loadTimes()

	byID := make(map[string]model.Article, len(data))
	for _, a := range data {
		byID[a.ID] = a
	}

	out := make([]model.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			a.IsRead = true
			a.ReadAt = times[id]
			out = append(out, a)
		}
	}
	return out
}

// ReadAt returns the last read time for an article in unix millis, or 0.
func (s *Store) ReadAt(id string) int64 {
	if id == "" {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadTimes()[id]
}

// CacheSummary stores a generated summary for an article. Once the cache
// grows past its cap, an arbitrary batch of entries is evicted; the only
// guarantee is the post-eviction size.
func (s *Store) CacheSummary(id, summary string) error {
	if id == "" || summary == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := s.loadSummaries()
	summaries[id] = summary

	if len(summaries) > summaryCap {
		removed := 0
		for key := range summaries {
			if removed >= summaryEvict {
				break
			}
			delete(summaries, key)
			removed++
		}
		logging.Debug("summary cache evicted", "removed", removed, "remaining", len(summaries))
	}

	return s.save(keySummaries, summaries)
}

// CachedSummary returns the cached summary for an article, if any.
func (s *Store) CachedSummary(id string) (string, bool) {
	if id == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary, ok := s.loadSummaries()[id]
	return summary, ok && summary != ""
}

// load fetches and decodes one collection. Missing rows and corrupt JSON
// both come back as the zero value: stored state is advisory, not
// authoritative enough to fail an operation over.
func (s *Store) load(key string, dest any) {
	var raw string
	err := s.db.QueryRow("SELECT value FROM collections WHERE key = ?", key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.Warn("collection read failed", "key", key, "error", err)
		}
		return
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logging.Warn("collection corrupt, treating as empty", "key", key, "error", err)
	}
}

func (s *Store) loadIDs(key string) []string {
	var ids []string
	s.load(key, &ids)
	return ids
}

func (s *Store) loadArticles(key string) []model.Article {
	var articles []model.Article
	s.load(key, &articles)
	return articles
}

func (s *Store) loadTimes() map[string]int64 {
	times := make(map[string]int64)
	s.load(keyReadTimes, &times)
	return times
}

func (s *Store) loadSummaries() map[string]string {
	summaries := make(map[string]string)
	s.load(keySummaries, &summaries)
	return summaries
}

func (s *Store) save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return apperr.NewStorage("encode "+key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO collections (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(raw))
	if err != nil {
		return apperr.NewStorage("write "+key, err)
	}
	return nil
}

func removeID(ids []string, id string) []string {
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}
