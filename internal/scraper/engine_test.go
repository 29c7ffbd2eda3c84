package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sjsage522/pricepeek/helpers"
	"sjsage522/pricepeek/internal/model"
	apperrors "sjsage522/pricepeek/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amazonPage = `<html><body>
	<span id="productTitle">  Echo Dot (5th Gen)  </span>
	<span class="a-price"><span class="a-offscreen">₹4,499.00</span><span class="a-price-whole">4,499.</span></span>
	<span class="a-price a-text-price"><span class="a-offscreen">₹5,499.00</span></span>
	<span class="a-icon-alt">4.3 out of 5 stars</span>
	<img id="landingImage" src="/images/echo.jpg">
</body></html>`

const flipkartPage = `<html><body>
	<span class="VU-ZEz">Redmi Note 13</span>
	<div class="Nx9bqj">₹17,999</div>
	<div class="UkUFwK"><span>10% off</span></div>
	<div class="XQDdHH">4.2</div>
</body></html>`

func platformConfig(t *testing.T, p model.Platform) PlatformConfig {
	t.Helper()
	for _, cfg := range DefaultPlatforms() {
		if cfg.Platform == p {
			return cfg
		}
	}
	t.Fatalf("no config for %s", p)
	return PlatformConfig{}
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEngineScrapeAmazon(t *testing.T) {
	server := serve(t, http.StatusOK, amazonPage)
	engine := NewEngine(platformConfig(t, model.PlatformAmazon), NewHTTPBrowser(), NoDelay)

	product, err := engine.Scrape(context.Background(), server.URL+"/dp/B09B8V1LZ3")
	require.NoError(t, err)

	assert.Equal(t, model.PlatformAmazon, product.Platform)
	assert.Equal(t, "Echo Dot (5th Gen)", product.Title)
	assert.Equal(t, 4499.0, product.Price)
	require.NotNil(t, product.OriginalPrice)
	assert.Equal(t, 5499.0, *product.OriginalPrice)
	require.NotNil(t, product.Discount)
	assert.Equal(t, 18.0, *product.Discount)
	require.NotNil(t, product.Rating)
	assert.Equal(t, 4.3, *product.Rating)
	require.NotNil(t, product.ImageURL)
	assert.Equal(t, server.URL+"/images/echo.jpg", *product.ImageURL)
}

func TestEngineScrapeFlipkartDiscountOnly(t *testing.T) {
	server := serve(t, http.StatusOK, flipkartPage)
	engine := NewEngine(platformConfig(t, model.PlatformFlipkart), NewHTTPBrowser(), NoDelay)

	product, err := engine.Scrape(context.Background(), server.URL+"/redmi-note-13/p/itm1")
	require.NoError(t, err)

	assert.Equal(t, 17999.0, product.Price)
	require.NotNil(t, product.OriginalPrice)
	assert.Equal(t, 19999.0, *product.OriginalPrice)
	require.NotNil(t, product.Discount)
	assert.Equal(t, 10.0, *product.Discount)
	require.NotNil(t, product.Rating)
	assert.Equal(t, 4.2, *product.Rating)
	assert.Nil(t, product.ImageURL)
}

func TestEngineScrapeMissingPrice(t *testing.T) {
	server := serve(t, http.StatusOK, `<html><body><span id="productTitle">Echo Dot</span></body></html>`)
	engine := NewEngine(platformConfig(t, model.PlatformAmazon), NewHTTPBrowser(), NoDelay)

	product, err := engine.Scrape(context.Background(), server.URL+"/dp/X")
	assert.Nil(t, product)
	require.Error(t, err)
	assert.True(t, apperrors.IsScrape(err))
	assert.False(t, apperrors.IsRateLimit(err))
	assert.Contains(t, err.Error(), "product price not found")
}

func TestEngineScrapeBotWall(t *testing.T) {
	server := serve(t, http.StatusOK, `<html><body><p>Type the characters you see in this image</p></body></html>`)
	engine := NewEngine(platformConfig(t, model.PlatformAmazon), NewHTTPBrowser(), NoDelay)

	_, err := engine.Scrape(context.Background(), server.URL+"/dp/X")
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimit(err))
}

func TestEngineScrapeThrottled(t *testing.T) {
	server := serve(t, http.StatusTooManyRequests, "slow down")
	engine := NewEngine(platformConfig(t, model.PlatformMeesho), NewHTTPBrowser(), NoDelay)

	_, err := engine.Scrape(context.Background(), server.URL+"/p/1")
	require.Error(t, err)
	assert.True(t, apperrors.IsRateLimit(err))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "meesho", appErr.Provider)
	assert.ErrorIs(t, err, helpers.ErrRateLimited)
}

func TestEngineScrapeServerError(t *testing.T) {
	server := serve(t, http.StatusInternalServerError, "boom")
	engine := NewEngine(platformConfig(t, model.PlatformMeesho), NewHTTPBrowser(), NoDelay)

	_, err := engine.Scrape(context.Background(), server.URL+"/p/1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeScrape, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "navigation failed")
}

func TestEngineClosesSessionOnEveryPath(t *testing.T) {
	cfg := platformConfig(t, model.PlatformAmazon)

	tests := []struct {
		name    string
		session *fakeSession
		wantErr bool
	}{
		{
			name:    "success",
			session: &fakeSession{html: amazonPage, visible: map[string]bool{"#productTitle": true, ".a-price-whole": true}},
		},
		{
			name:    "navigation failure",
			session: &fakeSession{navigateErr: errors.New("net::ERR_NAME_NOT_RESOLVED")},
			wantErr: true,
		},
		{
			name:    "missing title",
			session: &fakeSession{html: "<html></html>", visible: map[string]bool{}},
			wantErr: true,
		},
		{
			name:    "panic",
			session: &fakeSession{panicOnWait: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := &fakeBrowser{session: func() *fakeSession { return tt.session }}
			engine := NewEngine(cfg, browser, NoDelay)

			product, err := engine.Scrape(context.Background(), "https://www.amazon.in/dp/X")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, product)
				assert.True(t, apperrors.IsScrape(err))
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, product)
			}
			assert.Equal(t, 1, browser.opened)
			assert.True(t, browser.allClosed())
		})
	}
}

func TestEngineBrowserLaunchFailure(t *testing.T) {
	browser := &fakeBrowser{openErr: errors.New("chromium not found")}
	engine := NewEngine(platformConfig(t, model.PlatformAmazon), browser, NoDelay)

	_, err := engine.Scrape(context.Background(), "https://www.amazon.in/dp/X")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeScrape, apperrors.TypeOf(err))
}

func TestEngineDelayCancelled(t *testing.T) {
	browser := &fakeBrowser{session: func() *fakeSession { return &fakeSession{html: amazonPage} }}
	delay := func(ctx context.Context) error { return context.Canceled }
	engine := NewEngine(platformConfig(t, model.PlatformAmazon), browser, delay)

	_, err := engine.Scrape(context.Background(), "https://www.amazon.in/dp/X")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, browser.allClosed())
}

func TestExtractOriginalNotAboveCurrent(t *testing.T) {
	engine := NewEngine(platformConfig(t, model.PlatformMeesho), &fakeBrowser{}, NoDelay)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<h1>Kurti</h1><span class="price">₹399</span><s>₹399</s>`))
	require.NoError(t, err)

	product, err := engine.Extract(doc, "https://www.meesho.com/kurti/p/1")
	require.NoError(t, err)
	assert.Equal(t, 399.0, product.Price)
	require.NotNil(t, product.OriginalPrice)
	assert.Nil(t, product.Discount)
	assert.Nil(t, product.Rating)
}

func TestExtractUnparseablePrice(t *testing.T) {
	engine := NewEngine(platformConfig(t, model.PlatformMeesho), &fakeBrowser{}, NoDelay)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<h1>Kurti</h1><span class="price">Currently unavailable</span>`))
	require.NoError(t, err)

	product, err := engine.Extract(doc, "https://www.meesho.com/kurti/p/1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, product.Price)
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "https://www.amazon.in/images/a.jpg", resolveURL("https://www.amazon.in/dp/X", "/images/a.jpg"))
	assert.Equal(t, "https://m.media-amazon.com/a.jpg", resolveURL("https://www.amazon.in/dp/X", "https://m.media-amazon.com/a.jpg"))
	assert.Equal(t, "data:image/png;base64,AA", resolveURL("https://www.amazon.in/dp/X", "data:image/png;base64,AA"))
}
