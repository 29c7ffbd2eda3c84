package product

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/pricepeek/internal/model"
	"sjsage522/pricepeek/internal/store"
	"sjsage522/pricepeek/logger"
	apperrors "sjsage522/pricepeek/pkg/errors"
	"sjsage522/pricepeek/services/publisher"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a snapshot is served before the page is scraped again
const DefaultTTL = 2 * time.Hour

// sharedRefreshTimeout bounds a collapsed scrape, which outlives the caller that started it
const sharedRefreshTimeout = 2 * time.Minute

// Fetcher scrapes a product page; *scraper.Dispatcher is the production implementation
type Fetcher interface {
	Scrape(ctx context.Context, url string) (*model.ScrapedProduct, error)
}

// Cache is a read-through cache of product snapshots backed by a Store.
// Every miss that scrapes successfully appends a snapshot and a history record.
type Cache struct {
	store     store.Store
	fetcher   Fetcher
	publisher publisher.Publisher
	ttl       time.Duration
	now       func() time.Time
	group     *singleflight.Group
	log       *logger.Logger
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithClock replaces time.Now
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithSingleFlight collapses concurrent misses for the same URL into one scrape.
// The shared scrape runs detached from every caller's context under sharedRefreshTimeout,
// so a caller that gives up returns early without failing the others.
func WithSingleFlight() CacheOption {
	return func(c *Cache) { c.group = &singleflight.Group{} }
}

// WithPublisher publishes every freshly scraped snapshot
func WithPublisher(p publisher.Publisher) CacheOption {
	return func(c *Cache) { c.publisher = p }
}

// NewCache creates a cache; a non-positive ttl means DefaultTTL
func NewCache(st store.Store, fetcher Fetcher, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		store:   st,
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		log:     logger.ForCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the latest snapshot for url if it is younger than the TTL, otherwise scrapes a new one.
// A failed scrape leaves the store untouched.
func (c *Cache) Get(ctx context.Context, url string) (*model.Snapshot, error) {
	canonical := model.CanonicalURL(url)
	if canonical == "" {
		return nil, apperrors.NewValidation("cache", "URL is required")
	}
	hash := model.HashURL(canonical)

	latest, err := c.store.FindLatestSnapshot(ctx, hash)
	if err != nil {
		return nil, persistence("find latest snapshot", err)
	}
	if latest != nil && c.now().Sub(latest.CapturedAt) < c.ttl {
		c.log.Debug().Str("url_hash", hash).Msg("Cache hit")
		return latest, nil
	}

	if c.group == nil {
		return c.refresh(ctx, canonical)
	}

	ch := c.group.DoChan(hash, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedRefreshTimeout)
		defer cancel()
		return c.refresh(rctx, canonical)
	})

	select {
	case <-ctx.Done():
		return nil, apperrors.NewScrape("cache", "gave up waiting for scrape", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.log.Debug().Str("url_hash", hash).Msg("Joined in-flight scrape")
		}
		snapshot := *res.Val.(*model.Snapshot)
		return &snapshot, nil
	}
}

// refresh scrapes url and persists the result: snapshot first, then the history record referencing it
func (c *Cache) refresh(ctx context.Context, url string) (*model.Snapshot, error) {
	product, err := c.fetcher.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}
	product.URL = url

	snapshot := model.NewSnapshot(*product, c.now())

	id, err := c.store.InsertSnapshot(ctx, snapshot)
	if err != nil {
		return nil, persistence("insert snapshot", err)
	}
	snapshot.ID = id

	if err := c.store.InsertHistoryRecord(ctx, model.NewHistoryRecord(snapshot)); err != nil {
		return nil, persistence("insert history record", err)
	}

	c.log.Info().
		Str("url_hash", snapshot.URLHash).
		Str("platform", string(snapshot.Platform)).
		Float64("price", snapshot.Price).
		Msg("Stored new snapshot")

	c.publish(snapshot)
	return snapshot, nil
}

// publish is best effort; the snapshot is already stored
func (c *Cache) publish(snapshot *model.Snapshot) {
	if c.publisher == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to encode snapshot event")
		return
	}
	if err := c.publisher.Publish(string(snapshot.Platform), data); err != nil {
		c.log.Warn().Err(err).Str("url_hash", snapshot.URLHash).Msg("Failed to publish snapshot event")
	}
}

func persistence(message string, err error) error {
	if apperrors.TypeOf(err) != "" {
		return err
	}
	return apperrors.NewPersistence(message, err)
}
