package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sjsage522/pricepeek/internal/model"
	"sjsage522/pricepeek/logger"
	apperrors "sjsage522/pricepeek/pkg/errors"
	"sjsage522/pricepeek/services/cache"

	"golang.org/x/net/idna"
)

// DefaultBlockTime is how long a platform is left alone after it rate limits us
const DefaultBlockTime = 300 * time.Second

// DetectPlatform maps a product URL to its platform by host name. It never panics.
func DetectPlatform(rawURL string) (model.Platform, bool) {
	host := hostOf(rawURL)
	if host == "" {
		return "", false
	}
	for _, cfg := range DefaultPlatforms() {
		if strings.Contains(host, cfg.DomainFragment) {
			return cfg.Platform, true
		}
	}
	return "", false
}

func hostOf(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	var host string
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	} else {
		// Bad escapes or control characters in the path still leave a usable authority
		host = cutHost(rawURL)
	}
	host = strings.ToLower(host)
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// cutHost extracts the host from the authority of rawURL without parsing the rest
func cutHost(rawURL string) string {
	_, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return ""
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}
	if strings.HasPrefix(rest, "[") {
		if i := strings.Index(rest, "]"); i >= 0 {
			return rest[1:i]
		}
		return ""
	}
	if i := strings.Index(rest, ":"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// Dispatcher routes a URL to the scraper of its platform
type Dispatcher struct {
	scrapers  map[model.Platform]Scraper
	blockList cache.CacheService
	blockTime time.Duration
	delay     DelayFunc
	log       *logger.Logger
}

// NewDispatcher creates a dispatcher over scrapers. blockList may be nil, which disables cooldowns.
// delay runs once before every delegated scrape.
func NewDispatcher(scrapers []Scraper, blockList cache.CacheService, blockTime time.Duration, delay DelayFunc) *Dispatcher {
	if blockTime <= 0 {
		blockTime = DefaultBlockTime
	}
	if delay == nil {
		delay = NoDelay
	}
	byPlatform := make(map[model.Platform]Scraper, len(scrapers))
	for _, s := range scrapers {
		byPlatform[s.Platform()] = s
	}
	return &Dispatcher{
		scrapers:  byPlatform,
		blockList: blockList,
		blockTime: blockTime,
		delay:     delay,
		log:       logger.ForDispatcher(),
	}
}

// Scrape detects the platform of rawURL and delegates to its scraper.
// Unsupported URLs fail with a validation error before any network I/O.
func (d *Dispatcher) Scrape(ctx context.Context, rawURL string) (*model.ScrapedProduct, error) {
	platform, ok := DetectPlatform(rawURL)
	if !ok {
		return nil, apperrors.NewValidation("dispatcher", "Unsupported platform")
	}
	scraper, ok := d.scrapers[platform]
	if !ok {
		return nil, apperrors.NewValidation("dispatcher", fmt.Sprintf("no scraper registered for %s", platform))
	}

	if d.isBlocked(platform) {
		d.log.Debug().Str("platform", string(platform)).Msg("Platform is cooling down, skipping")
		return nil, apperrors.NewRateLimit(string(platform), d.blockTime)
	}

	if err := d.delay(ctx); err != nil {
		return nil, apperrors.NewScrape(string(platform), "interrupted during think time", err)
	}

	product, err := scraper.Scrape(ctx, rawURL)
	if err != nil && apperrors.IsRateLimit(err) {
		d.block(platform)
	}
	return product, err
}

func blockKey(platform model.Platform) string {
	return string(platform) + "_rate_limited"
}

func (d *Dispatcher) isBlocked(platform model.Platform) bool {
	if d.blockList == nil {
		return false
	}
	_, err := d.blockList.Get(blockKey(platform))
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		d.log.Warn().Err(err).Str("platform", string(platform)).Msg("Block list lookup failed")
	}
	return false
}

func (d *Dispatcher) block(platform model.Platform) {
	if d.blockList == nil {
		return
	}
	if err := d.blockList.Set(blockKey(platform), []byte("1"), d.blockTime); err != nil {
		d.log.Error().Err(err).Str("platform", string(platform)).Msg("Failed to record rate limit")
		return
	}
	d.log.Warn().
		Str("platform", string(platform)).
		Dur("block_time", d.blockTime).
		Msg("Platform rate limited us, backing off")
}
