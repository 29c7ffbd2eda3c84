package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"sjsage522/pricepeek/internal/model"
)

// fakeBrowser hands out fakeSessions and counts them
type fakeBrowser struct {
	mu       sync.Mutex
	openErr  error
	session  func() *fakeSession
	opened   int
	sessions []*fakeSession
}

func (b *fakeBrowser) NewSession(context.Context, string) (Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openErr != nil {
		return nil, b.openErr
	}
	s := b.session()
	b.opened++
	b.sessions = append(b.sessions, s)
	return s, nil
}

func (b *fakeBrowser) allClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sessions {
		if !s.closed {
			return false
		}
	}
	return true
}

// fakeSession serves fixed markup; fields present are those listed in visible
type fakeSession struct {
	html        string
	navigateErr error
	visible     map[string]bool
	panicOnWait bool
	closed      bool
}

func (s *fakeSession) Navigate(context.Context, string, time.Duration) error {
	return s.navigateErr
}

func (s *fakeSession) WaitVisible(_ context.Context, selectors []string, _ time.Duration) error {
	if s.panicOnWait {
		panic("renderer crashed")
	}
	for _, sel := range selectors {
		if s.visible[sel] {
			return nil
		}
	}
	return errors.New("timed out")
}

func (s *fakeSession) HTML(context.Context) (string, error) {
	return s.html, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// stubScraper returns a fixed result and counts calls
type stubScraper struct {
	mu       sync.Mutex
	platform model.Platform
	product  *model.ScrapedProduct
	err      error
	calls    int
}

func (s *stubScraper) Platform() model.Platform { return s.platform }

func (s *stubScraper) Scrape(_ context.Context, url string) (*model.ScrapedProduct, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p := *s.product
	p.URL = url
	return &p, nil
}
