package product

import (
	"context"
	"errors"
	"sync"
	"time"

	"sjsage522/pricepeek/internal/model"
	"sjsage522/pricepeek/internal/store"
	apperrors "sjsage522/pricepeek/pkg/errors"
)

func float(v float64) *float64 { return &v }

// fakeFetcher serves products per URL and counts scrapes
type fakeFetcher struct {
	mu       sync.Mutex
	products map[string]*model.ScrapedProduct
	err      error
	release  chan struct{}
	calls    int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{products: make(map[string]*model.ScrapedProduct)}
}

func (f *fakeFetcher) Scrape(ctx context.Context, url string) (*model.ScrapedProduct, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	err := f.err
	p, ok := f.products[url]
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewScrape("fake", "product title not found", nil)
	}
	out := *p
	return &out, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// mockPublisher records published events
type mockPublisher struct {
	mu       sync.Mutex
	err      error
	keys     []string
	messages [][]byte
}

func (m *mockPublisher) Publish(key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	m.messages = append(m.messages, message)
	return m.err
}

func (m *mockPublisher) TrimStreams() error { return nil }

func (m *mockPublisher) Close() error { return nil }

// brokenStore fails every write
type brokenStore struct {
	*store.MemoryStore
}

func (b brokenStore) InsertSnapshot(context.Context, *model.Snapshot) (string, error) {
	return "", apperrors.NewPersistence("insert snapshot", errors.New("connection refused"))
}

// stubGetter returns a fixed snapshot or error per URL
type stubGetter struct {
	mu        sync.Mutex
	snapshots map[string]*model.Snapshot
	errs      map[string]error
	calls     int
}

func (s *stubGetter) Get(_ context.Context, url string) (*model.Snapshot, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	snap, ok := s.snapshots[url]
	if !ok {
		return nil, apperrors.NewValidation("dispatcher", "Unsupported platform")
	}
	return snap, nil
}

func snapshot(url string, platform model.Platform, title string, price float64, rating *float64) *model.Snapshot {
	return model.NewSnapshot(model.ScrapedProduct{
		URL:      url,
		Platform: platform,
		Title:    title,
		Price:    price,
		Rating:   rating,
	}, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}
