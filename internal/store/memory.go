package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"sjsage522/pricepeek/internal/model"
	apperrors "sjsage522/pricepeek/pkg/errors"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It is used when no database is configured and in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []*model.Snapshot
	byID      map[string]*model.Snapshot
	history   []model.PriceHistoryRecord
	nextID    int64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*model.Snapshot),
	}
}

func (m *MemoryStore) InsertSnapshot(_ context.Context, s *model.Snapshot) (string, error) {
	if s == nil {
		return "", apperrors.NewPersistence("insert snapshot", errNilValue)
	}

	stored := *s
	stored.ID = uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, &stored)
	m.byID[stored.ID] = &stored
	return stored.ID, nil
}

func (m *MemoryStore) FindLatestSnapshot(_ context.Context, urlHash string) (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *model.Snapshot
	for _, s := range m.snapshots {
		if s.URLHash != urlHash {
			continue
		}
		// Later inserts win ties
		if latest == nil || !s.CapturedAt.Before(latest.CapturedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (m *MemoryStore) FindSnapshotByID(_ context.Context, id string) (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	out := *s
	return &out, nil
}

func (m *MemoryStore) InsertHistoryRecord(_ context.Context, r *model.PriceHistoryRecord) error {
	if r == nil {
		return apperrors.NewPersistence("insert history record", errNilValue)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[r.SnapshotID]; !ok {
		return apperrors.NewPersistence("insert history record", errUnknownSnapshot)
	}
	m.nextID++
	stored := *r
	stored.ID = m.nextID
	m.history = append(m.history, stored)
	r.ID = stored.ID
	return nil
}

func (m *MemoryStore) QueryHistory(_ context.Context, productID string, since time.Time) ([]model.PriceHistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[productID]
	if !ok {
		return []model.PriceHistoryRecord{}, nil
	}

	records := []model.PriceHistoryRecord{}
	for _, r := range m.history {
		if r.URLHash == s.URLHash && !r.RecordedAt.Before(since) {
			records = append(records, r)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RecordedAt.Before(records[j].RecordedAt)
	})
	return records, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
