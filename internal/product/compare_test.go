package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"sjsage522/pricepeek/internal/model"
	"sjsage522/pricepeek/internal/store"
	apperrors "sjsage522/pricepeek/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBestValueScore(t *testing.T) {
	assert.Equal(t, 59.0, CalculateBestValueScore(500, float(4), 1000))
	assert.Equal(t, 30.0, CalculateBestValueScore(1000, float(5), 1000))
	assert.Equal(t, 35.0, CalculateBestValueScore(500, nil, 1000))
	assert.Equal(t, 24.0, CalculateBestValueScore(0, float(4), 0))
	assert.Equal(t, 17.7, CalculateBestValueScore(100, float(1), 120))
}

func TestComparePartialFailure(t *testing.T) {
	getter := &stubGetter{
		snapshots: map[string]*model.Snapshot{
			"a": snapshot("https://www.amazon.in/dp/A", model.PlatformAmazon, "A", 1000, float(4)),
			"c": snapshot("https://www.meesho.com/p/C", model.PlatformMeesho, "C", 500, float(4)),
		},
		errs: map[string]error{
			"b": apperrors.NewScrape("flipkart", "price not found", nil),
		},
	}
	now := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	comparator := NewComparator(getter)
	comparator.now = func() time.Time { return now }

	result, err := comparator.Compare(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, result.Products, 2)
	assert.Equal(t, 3, getter.calls)

	assert.Equal(t, "C", result.Products[0].Title)
	assert.Equal(t, 59.0, result.Products[0].BestValueScore)
	assert.Equal(t, "A", result.Products[1].Title)
	assert.Equal(t, 24.0, result.Products[1].BestValueScore)

	require.NotNil(t, result.BestDeal)
	assert.Equal(t, model.BestDeal{
		Platform:       model.PlatformMeesho,
		Price:          500,
		Title:          "C",
		URL:            "https://www.meesho.com/p/C",
		BestValueScore: 59.0,
	}, *result.BestDeal)
	require.NotNil(t, result.LowestPrice)
	assert.Equal(t, 500.0, *result.LowestPrice)
	require.NotNil(t, result.ComparedAt)
	assert.True(t, result.ComparedAt.Equal(now))
}

func TestCompareBestDealIsNotAlwaysCheapest(t *testing.T) {
	getter := &stubGetter{snapshots: map[string]*model.Snapshot{
		"cheap": snapshot("https://www.amazon.in/dp/1", model.PlatformAmazon, "cheap", 100, float(1)),
		"good":  snapshot("https://www.flipkart.com/p/2", model.PlatformFlipkart, "good", 120, float(5)),
	}}

	result, err := NewComparator(getter).Compare(context.Background(), []string{"cheap", "good"})
	require.NoError(t, err)

	assert.Equal(t, "good", result.BestDeal.Title)
	assert.Equal(t, 30.0, result.BestDeal.BestValueScore)
	assert.Equal(t, 100.0, *result.LowestPrice)
}

func TestCompareTiesKeepInputOrder(t *testing.T) {
	getter := &stubGetter{snapshots: map[string]*model.Snapshot{}}
	var urls []string
	for i := 0; i < MaxCompareURLs; i++ {
		url := fmt.Sprintf("u%d", i)
		urls = append(urls, url)
		getter.snapshots[url] = snapshot("https://www.amazon.in/dp/"+url, model.PlatformAmazon, url, 250, float(3.5))
	}

	result, err := NewComparator(getter).Compare(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, result.Products, MaxCompareURLs)
	for i, p := range result.Products {
		assert.Equal(t, urls[i], p.Title)
	}
	assert.Equal(t, "u0", result.BestDeal.Title)
}

func TestCompareAllFail(t *testing.T) {
	getter := &stubGetter{errs: map[string]error{
		"a": apperrors.NewScrape("amazon", "navigation failed", errors.New("timeout")),
	}}

	result, err := NewComparator(getter).Compare(context.Background(), []string{"a", "https://www.ebay.com/itm/1"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to scrape any products", result.Message)
	assert.NotNil(t, result.Products)
	assert.Empty(t, result.Products)
	assert.Nil(t, result.BestDeal)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Failed to scrape any products","products":[]}`, string(data))
}

func TestCompareRejectsBadInput(t *testing.T) {
	getter := &stubGetter{}
	comparator := NewComparator(getter)

	_, err := comparator.Compare(context.Background(), nil)
	assert.True(t, apperrors.IsValidation(err))

	urls := make([]string, MaxCompareURLs+1)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://www.amazon.in/dp/%d", i)
	}
	_, err = comparator.Compare(context.Background(), urls)
	assert.True(t, apperrors.IsValidation(err))

	assert.Equal(t, 0, getter.calls)
}

func TestComparePersistenceAborts(t *testing.T) {
	getter := &stubGetter{
		snapshots: map[string]*model.Snapshot{
			"a": snapshot("https://www.amazon.in/dp/A", model.PlatformAmazon, "A", 1000, float(4)),
		},
		errs: map[string]error{
			"b": apperrors.NewPersistence("insert snapshot", errors.New("connection refused")),
		},
	}

	result, err := NewComparator(getter).Compare(context.Background(), []string{"a", "b"})
	assert.Nil(t, result)
	assert.True(t, apperrors.IsPersistence(err))
	assert.Equal(t, 2, getter.calls)
}

func TestCompareThroughCache(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.products["https://www.amazon.in/dp/A"] = &model.ScrapedProduct{
		Platform: model.PlatformAmazon, Title: "Echo Dot", Price: 4499, Rating: float(4.3),
	}
	fetcher.products["https://www.flipkart.com/p/B"] = &model.ScrapedProduct{
		Platform: model.PlatformFlipkart, Title: "Echo Dot", Price: 4299, Rating: float(4.4),
	}
	cache := NewCache(store.NewMemoryStore(), fetcher, time.Hour)

	result, err := NewComparator(cache).Compare(context.Background(), []string{
		"https://www.amazon.in/dp/A",
		"https://www.flipkart.com/p/B",
		"https://www.meesho.com/p/missing",
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, model.PlatformFlipkart, result.BestDeal.Platform)
	assert.Equal(t, "https://www.flipkart.com/p/B", result.BestDeal.URL)
	for _, p := range result.Products {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, model.HashURL(p.URL), p.URLHash)
	}
}
