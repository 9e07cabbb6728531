package budget

import (
	"context"
	"sort"
	"sync"

	"burnplan/internal/core"
)

// MemoryStore is an in-memory HistoryStore used as the default backend and
// in tests. Upserts are last-writer-wins per (user, date).
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]DailyRecord
}

var _ HistoryStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]DailyRecord)}
}

func recordKey(userID string, date core.Date) string {
	return userID + "|" + date.Key()
}

func (s *MemoryStore) Upsert(_ context.Context, rec DailyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Date = core.DateOf(rec.Date.Time)
	s.records[recordKey(rec.UserID, rec.Date)] = rec
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string, from, to core.Date) ([]DailyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []DailyRecord
	for _, rec := range s.records {
		if rec.UserID != userID {
			continue
		}
		if rec.Date.Time.Before(from.Time) || rec.Date.Time.After(to.Time) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Time.Before(out[j].Date.Time) })
	return out, nil
}
