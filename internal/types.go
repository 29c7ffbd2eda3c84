package internal

import (
	"context"

	"sjsage522/pricepeek/config"
	"sjsage522/pricepeek/internal/product"
	"sjsage522/pricepeek/internal/scraper"
	"sjsage522/pricepeek/internal/store"
	"sjsage522/pricepeek/logger"
	"sjsage522/pricepeek/services/cache"
	"sjsage522/pricepeek/services/publisher"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Store     store.Store
	BlockList cache.CacheService
	Publisher publisher.Publisher
	Browser   scraper.Browser

	closers []func() error
}

// Pipeline is the scrape, cache and rank chain built on top of the dependencies
type Pipeline struct {
	Dispatcher *scraper.Dispatcher
	Cache      *product.Cache
	Comparator *product.Comparator
	History    *product.HistoryService
}

// NewDependencies connects every backing service named in cfg.
// Memcache and Redis are optional: when unreachable the block list falls back to memory and events are not published.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}

	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		deps.Store = pg
	} else {
		logger.Warn("DATABASE_URL is not set, snapshots are kept in memory only")
		deps.Store = store.NewMemoryStore()
	}
	deps.closers = append(deps.closers, deps.Store.Close)

	memcache := cache.NewMemcacheService(cfg.MemcacheAddr, "pricepeek:")
	if err := memcache.Ping(); err != nil {
		logger.Warn("Memcache at %s is not available (%v), using in-memory block list", cfg.MemcacheAddr, err)
		deps.BlockList = cache.NewMemoryService()
	} else {
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
		deps.BlockList = memcache
	}

	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	if err := redisPublisher.Ping(); err != nil {
		logger.Warn("Redis at %s is not available (%v), snapshot events are disabled", cfg.RedisAddr, err)
		redisPublisher.Close()
	} else {
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
		deps.Publisher = redisPublisher
		deps.closers = append(deps.closers, redisPublisher.Close)
	}

	switch cfg.BrowserMode {
	case config.BrowserModeHTTP:
		deps.Browser = scraper.NewHTTPBrowser()
	default:
		rod := scraper.NewRodBrowser(cfg.ChromeBin)
		deps.Browser = rod
		deps.closers = append(deps.closers, rod.Close)
	}

	return deps, nil
}

// Pipeline assembles the dispatcher, cache, comparator and history service
func (d *Dependencies) Pipeline(cfg *config.Config) *Pipeline {
	delay := scraper.RandomDelayFunc(cfg.DelayMin, cfg.DelayMax)
	dispatcher := scraper.NewDispatcher(
		scraper.NewEngines(d.Browser, delay),
		d.BlockList,
		cfg.BlockTime,
		delay,
	)

	var opts []product.CacheOption
	if cfg.CacheSingleFlight {
		opts = append(opts, product.WithSingleFlight())
	}
	if d.Publisher != nil {
		opts = append(opts, product.WithPublisher(d.Publisher))
	}
	productCache := product.NewCache(d.Store, dispatcher, cfg.CacheTTL, opts...)

	return &Pipeline{
		Dispatcher: dispatcher,
		Cache:      productCache,
		Comparator: product.NewComparator(productCache),
		History:    product.NewHistoryService(d.Store),
	}
}

// Cleanup closes the services in reverse order of creation
func (d *Dependencies) Cleanup() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.Warn("cleanup: %v", err)
		}
	}
}
