package scraper

import (
	"context"
	"time"

	"sjsage522/pricepeek/helpers"
	"sjsage522/pricepeek/internal/model"
)

// Bounds on every suspension point of a scrape
const (
	NavigationTimeout = 30 * time.Second
	FieldTimeout      = 10 * time.Second
	ViewportWidth     = 1920
	ViewportHeight    = 1080
)

// Scraper reads one product page of a single platform
type Scraper interface {
	// Platform returns the platform this scraper handles
	Platform() model.Platform

	// Scrape returns the product on the page or an *errors.AppError; it never panics
	Scrape(ctx context.Context, url string) (*model.ScrapedProduct, error)
}

// Browser hands out isolated sessions, one per scrape
type Browser interface {
	NewSession(ctx context.Context, userAgent string) (Session, error)
}

// Session is an isolated browsing context holding a single page
type Session interface {
	// Navigate loads url and waits for the DOM to be ready, bounded by timeout
	Navigate(ctx context.Context, url string, timeout time.Duration) error

	// WaitVisible waits until any of the selectors is present, bounded by timeout
	WaitVisible(ctx context.Context, selectors []string, timeout time.Duration) error

	// HTML returns the current document markup
	HTML(ctx context.Context) (string, error)

	// Close releases the session; it is safe to call more than once
	Close() error
}

// DelayFunc is a think-time pause
type DelayFunc func(ctx context.Context) error

// RandomDelayFunc returns a DelayFunc sleeping uniformly within [min, max]
func RandomDelayFunc(min, max time.Duration) DelayFunc {
	return func(ctx context.Context) error {
		return helpers.RandomDelay(ctx, min, max)
	}
}

// NoDelay skips think time entirely
func NoDelay(context.Context) error { return nil }

// Selectors holds, per field, CSS selectors tried in order; the first non-empty match wins
type Selectors struct {
	Title         []string
	Price         []string
	OriginalPrice []string
	Discount      []string
	Rating        []string
	Image         []string
}

// PlatformConfig describes how to recognise and read one platform
type PlatformConfig struct {
	Platform       model.Platform
	DomainFragment string
	Selectors      Selectors
	// BlockedMarkers are page fragments that mean we were served a bot wall instead of the product
	BlockedMarkers []string
}
