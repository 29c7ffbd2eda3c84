package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sjsage522/pricepeek/logger"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodBrowser drives a headless Chromium; every session gets its own incognito context
type RodBrowser struct {
	bin string

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRodBrowser creates a browser that is launched lazily on first use.
// An empty bin lets rod find or download a Chromium build.
func NewRodBrowser(bin string) *RodBrowser {
	return &RodBrowser{bin: bin}
}

// connect launches the browser process once
func (b *RodBrowser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)
	if b.bin != "" {
		l = l.Bin(b.bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chromium: %w", err)
	}

	logger.Info("Chromium started at %s", controlURL)
	b.launcher = l
	b.browser = browser
	return browser, nil
}

// NewSession opens an incognito context with one page using userAgent and a fixed viewport
func (b *RodBrowser) NewSession(ctx context.Context, userAgent string) (Session, error) {
	browser, err := b.connect()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("create incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		incognito.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	s := &rodSession{context: incognito, page: page}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		s.Close()
		return nil, fmt.Errorf("set user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             ViewportWidth,
		Height:            ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		s.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	return s, nil
}

// Close shuts the browser process down
func (b *RodBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Kill()
	b.browser = nil
	b.launcher = nil
	return err
}

type rodSession struct {
	context *rod.Browser
	page    *rod.Page
	once    sync.Once
}

func (s *rodSession) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	page := s.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()

	return page.GetContext().Err()
}

func (s *rodSession) WaitVisible(ctx context.Context, selectors []string, timeout time.Duration) error {
	if len(selectors) == 0 {
		return fmt.Errorf("no selectors to wait for")
	}
	page := s.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	_, err := page.Element(strings.Join(selectors, ", "))
	return err
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *rodSession) Close() error {
	var err error
	s.once.Do(func() {
		if perr := s.page.Close(); perr != nil {
			err = perr
		}
		// Disposes the incognito browser context
		if cerr := s.context.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}
