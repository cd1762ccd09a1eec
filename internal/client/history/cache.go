// Package history keeps the user's recent questions: newest first, unique by
// question text, bounded, and persisted to the local record store after every
// change.
//
// Up to PersistLimit entries are retained and written back; callers see the
// newest ActiveLimit of them.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/chemtutor/internal/client/repositories/records"
	"github.com/dmitrijs2005/chemtutor/internal/common"
	"github.com/dmitrijs2005/chemtutor/internal/logging"
)

const (
	ActiveLimit  = 20
	PersistLimit = 50
)

// Entry is one remembered question. Timestamp is Unix milliseconds and is
// used for ordering only.
type Entry struct {
	Question  string `json:"question"`
	Category  string `json:"category"`
	Timestamp int64  `json:"timestamp"`
}

// Time converts Timestamp for display.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

type record struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// legacyEntry is the unversioned array element written by older clients.
type legacyEntry struct {
	Question  string `json:"question"`
	Category  string `json:"category"`
	TS        int64  `json:"ts"`
	Timestamp int64  `json:"timestamp"`
}

type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

type Cache struct {
	mu       sync.Mutex
	repo     records.Repository
	log      logging.Logger
	now      func() time.Time
	retained []Entry
}

func NewCache(repo records.Repository, log logging.Logger, opts ...Option) *Cache {
	c := &Cache{repo: repo, log: log, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the in-memory state with the persisted one. Missing or
// unreadable data yields an empty history, never an error.
func (c *Cache) Load(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.retained = nil

	b, err := c.repo.Get(ctx, common.HistoryKey)
	if err != nil {
		c.log.Warn(ctx, "history read failed, starting empty", "error", err)
		return
	}
	if len(b) == 0 {
		return
	}

	entries, err := decode(b)
	if err != nil {
		c.log.Warn(ctx, "history record is unreadable, starting empty", "error", err)
		return
	}

	c.retained = normalize(entries)
	c.log.Debug(ctx, "history loaded", "entries", len(c.retained))
}

func decode(b []byte) ([]Entry, error) {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var legacy []legacyEntry
		if err := json.Unmarshal(b, &legacy); err != nil {
			return nil, err
		}
		out := make([]Entry, 0, len(legacy))
		for _, l := range legacy {
			ts := l.TS
			if ts == 0 {
				ts = l.Timestamp
			}
			out = append(out, Entry{Question: l.Question, Category: l.Category, Timestamp: ts})
		}
		return out, nil
	}

	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	if rec.Version != common.RecordVersion {
		return nil, fmt.Errorf("unsupported history version %d", rec.Version)
	}
	return rec.Entries, nil
}

// normalize sorts newest first, drops blanks and repeated questions, caps the
// list and makes timestamps strictly decreasing.
func normalize(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})

	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, min(len(entries), PersistLimit))
	for _, e := range entries {
		e.Question = strings.TrimSpace(e.Question)
		if e.Question == "" {
			continue
		}
		if _, dup := seen[e.Question]; dup {
			continue
		}
		seen[e.Question] = struct{}{}
		if strings.TrimSpace(e.Category) == "" {
			e.Category = DefaultCategory
		}
		out = append(out, e)
		if len(out) == PersistLimit {
			break
		}
	}

	for i := len(out) - 2; i >= 0; i-- {
		if out[i].Timestamp <= out[i+1].Timestamp {
			out[i].Timestamp = out[i+1].Timestamp + 1
		}
	}
	return out
}

// Record puts question at the head of the history, removing any earlier
// occurrence, and persists the result. A blank question is ignored.
//
// A persist error is returned, but the in-memory history is updated either
// way.
func (c *Cache) Record(ctx context.Context, question, category string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}
	if strings.TrimSpace(category) == "" {
		category = DefaultCategory
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]Entry, 0, min(len(c.retained)+1, PersistLimit))
	ts := c.now().UnixMilli()
	for _, e := range c.retained {
		if e.Question == question {
			continue
		}
		if len(next) == 0 && ts <= e.Timestamp {
			ts = e.Timestamp + 1
		}
		next = append(next, e)
	}
	next = append([]Entry{{Question: question, Category: category, Timestamp: ts}}, next...)
	if len(next) > PersistLimit {
		next = next[:PersistLimit]
	}
	c.retained = next

	return c.persist(ctx)
}

func (c *Cache) persist(ctx context.Context) error {
	b, err := json.Marshal(record{Version: common.RecordVersion, Entries: c.retained})
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := c.repo.Set(ctx, common.HistoryKey, b); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}

// Entries returns a copy of the visible history, newest first.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.retained[:min(len(c.retained), ActiveLimit)]
	out := make([]Entry, len(active))
	copy(out, active)
	return out
}

// Len is the number of visible entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return min(len(c.retained), ActiveLimit)
}

var ErrNoSuchEntry = errors.New("no such history entry")

// Lookup returns the visible entry at 1-based index.
func (c *Cache) Lookup(index int) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 1 || index > min(len(c.retained), ActiveLimit) {
		return Entry{}, fmt.Errorf("%w: %d", ErrNoSuchEntry, index)
	}
	return c.retained[index-1], nil
}

// RecentCategories lists the distinct categories of the visible history in
// first-seen order.
func (c *Cache) RecentCategories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{})
	var out []string
	for _, e := range c.retained[:min(len(c.retained), ActiveLimit)] {
		if e.Category == "" {
			continue
		}
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}
