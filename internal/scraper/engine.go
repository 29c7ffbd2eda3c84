package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sjsage522/pricepeek/helpers"
	"sjsage522/pricepeek/internal/model"
	"sjsage522/pricepeek/logger"
	apperrors "sjsage522/pricepeek/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// imageAttributes are read in order from an image element
var imageAttributes = []string{"src", "data-old-hires", "data-src"}

// Engine scrapes product pages of one platform, driven entirely by its PlatformConfig
type Engine struct {
	config            PlatformConfig
	browser           Browser
	delay             DelayFunc
	userAgent         func() string
	navigationTimeout time.Duration
	fieldTimeout      time.Duration
	log               *logger.Logger
}

// NewEngine creates a scraper for the platform described by config
func NewEngine(config PlatformConfig, browser Browser, delay DelayFunc) *Engine {
	if delay == nil {
		delay = NoDelay
	}
	return &Engine{
		config:            config,
		browser:           browser,
		delay:             delay,
		userAgent:         helpers.RandomUserAgent,
		navigationTimeout: NavigationTimeout,
		fieldTimeout:      FieldTimeout,
		log:               logger.ForScraper(string(config.Platform)),
	}
}

// NewEngines creates one engine per built-in platform, all sharing browser and delay
func NewEngines(browser Browser, delay DelayFunc) []Scraper {
	var scrapers []Scraper
	for _, cfg := range DefaultPlatforms() {
		scrapers = append(scrapers, NewEngine(cfg, browser, delay))
	}
	return scrapers
}

// Platform returns the platform this engine handles
func (e *Engine) Platform() model.Platform {
	return e.config.Platform
}

// Scrape opens an isolated session, loads the page and extracts the product
func (e *Engine) Scrape(ctx context.Context, pageURL string) (product *model.ScrapedProduct, err error) {
	provider := string(e.config.Platform)

	defer func() {
		if r := recover(); r != nil {
			product = nil
			err = apperrors.NewScrape(provider, "scraper panicked", fmt.Errorf("%v", r))
		}
		if err != nil {
			e.log.Warn().Err(err).Str("url", pageURL).Msg("Scrape failed")
		}
	}()

	e.log.Debug().Str("url", pageURL).Msg("Scraping")

	err = WithSession(ctx, e.browser, e.userAgent(), func(s Session) error {
		if err := s.Navigate(ctx, pageURL, e.navigationTimeout); err != nil {
			if errors.Is(err, helpers.ErrRateLimited) {
				return apperrors.New(apperrors.ErrorTypeRateLimit, provider, "site is throttling requests", err)
			}
			if apperrors.TypeOf(err) != "" {
				return err
			}
			return apperrors.NewScrape(provider, "navigation failed", err)
		}

		if err := e.delay(ctx); err != nil {
			return apperrors.NewScrape(provider, "interrupted during think time", err)
		}

		required := []struct {
			name      string
			selectors []string
		}{
			{"title", e.config.Selectors.Title},
			{"price", e.config.Selectors.Price},
		}
		for _, field := range required {
			if err := s.WaitVisible(ctx, field.selectors, e.fieldTimeout); err != nil {
				return e.missingField(ctx, s, field.name, err)
			}
		}

		html, err := s.HTML(ctx)
		if err != nil {
			return apperrors.NewScrape(provider, "failed to read page content", err)
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return apperrors.NewScrape(provider, "failed to parse page content", err)
		}

		product, err = e.Extract(doc, pageURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("url", pageURL).
		Float64("price", product.Price).
		Msg("Scrape successful")
	return product, nil
}

// missingField classifies a required-field timeout: a bot wall becomes a rate limit, anything else a scrape error
func (e *Engine) missingField(ctx context.Context, s Session, field string, cause error) error {
	provider := string(e.config.Platform)
	if html, err := s.HTML(ctx); err == nil && e.isBlockedPage(html) {
		return apperrors.New(apperrors.ErrorTypeRateLimit, provider, "served a bot check page", cause)
	}
	return apperrors.NewScrape(provider, fmt.Sprintf("product %s not found", field), cause)
}

func (e *Engine) isBlockedPage(html string) bool {
	for _, marker := range e.config.BlockedMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}

// Extract reads the product fields out of a parsed page
func (e *Engine) Extract(doc *goquery.Document, pageURL string) (*model.ScrapedProduct, error) {
	provider := string(e.config.Platform)
	sel := e.config.Selectors

	title := firstText(doc, sel.Title)
	if title == "" {
		return nil, apperrors.NewScrape(provider, "product title not found", nil)
	}

	priceText := firstText(doc, sel.Price)
	if priceText == "" {
		return nil, apperrors.NewScrape(provider, "price not found", nil)
	}
	price := helpers.ExtractPrice(priceText)

	product := &model.ScrapedProduct{
		URL:      model.CanonicalURL(pageURL),
		Platform: e.config.Platform,
		Title:    title,
		Price:    price,
	}

	if text := firstText(doc, sel.OriginalPrice); text != "" {
		if original := helpers.ExtractPrice(text); original > 0 {
			product.OriginalPrice = &original
		}
	}

	// Some pages only show "N% off"; recover the MRP from it
	if product.OriginalPrice == nil {
		if text := firstText(doc, sel.Discount); text != "" {
			if pct, ok := helpers.ExtractPercent(text); ok {
				if original := helpers.OriginalFromDiscount(price, pct); original > 0 {
					product.OriginalPrice = &original
				}
			}
		}
	}

	if product.OriginalPrice != nil && *product.OriginalPrice > price {
		discount := helpers.CalculateDiscount(*product.OriginalPrice, price)
		product.Discount = &discount
	}

	if text := firstText(doc, sel.Rating); text != "" {
		rating := helpers.ExtractRating(text)
		product.Rating = &rating
	}

	if src := firstAttr(doc, sel.Image, imageAttributes); src != "" {
		image := resolveURL(pageURL, src)
		product.ImageURL = &image
	}

	return product, nil
}

// firstText returns the trimmed text of the first selector that yields any
func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// firstAttr returns the first non-empty attribute value across selectors, then attributes
func firstAttr(doc *goquery.Document, selectors []string, attrs []string) string {
	for _, selector := range selectors {
		node := doc.Find(selector).First()
		if node.Length() == 0 {
			continue
		}
		for _, attr := range attrs {
			if value, ok := node.Attr(attr); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

// resolveURL makes href absolute relative to the page it came from
func resolveURL(pageURL, href string) string {
	if strings.HasPrefix(href, "data:") {
		return href
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
