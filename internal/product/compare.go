package product

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sjsage522/pricepeek/helpers"
	"sjsage522/pricepeek/internal/model"
	"sjsage522/pricepeek/logger"
	apperrors "sjsage522/pricepeek/pkg/errors"

	"golang.org/x/sync/errgroup"
)

// MaxCompareURLs bounds a single comparison
const MaxCompareURLs = 10

// Score weights
const (
	priceWeight  = 0.7
	ratingWeight = 0.3
)

// Getter returns a snapshot for a URL; *Cache is the production implementation
type Getter interface {
	Get(ctx context.Context, url string) (*model.Snapshot, error)
}

// Comparator ranks a set of products by best value
type Comparator struct {
	cache Getter
	now   func() time.Time
	log   *logger.Logger
}

// NewComparator creates a comparator reading products through cache
func NewComparator(cache Getter) *Comparator {
	return &Comparator{
		cache: cache,
		now:   time.Now,
		log:   logger.ForComparator(),
	}
}

// CalculateBestValueScore weighs how much cheaper a product is than the most expensive one (70%)
// against its rating (30%), rounded to one decimal
func CalculateBestValueScore(price float64, rating *float64, maxPrice float64) float64 {
	priceScore := 0.0
	if maxPrice != 0 {
		priceScore = (maxPrice - price) / maxPrice * 100
	}
	ratingScore := 0.0
	if rating != nil {
		ratingScore = *rating / 5 * 100
	}
	return helpers.RoundTo(priceScore*priceWeight+ratingScore*ratingWeight, 1)
}

// Compare looks up every URL concurrently and ranks the ones that could be read.
// Individual scrape failures are dropped; a persistence failure aborts the whole comparison.
func (c *Comparator) Compare(ctx context.Context, urls []string) (*model.ComparisonResult, error) {
	if len(urls) == 0 {
		return nil, apperrors.NewValidation("comparator", "at least one URL is required")
	}
	if len(urls) > MaxCompareURLs {
		return nil, apperrors.NewValidation("comparator", fmt.Sprintf("at most %d URLs can be compared", MaxCompareURLs))
	}

	// Siblings are never cancelled; each slot is written by exactly one goroutine
	slots := make([]*model.Snapshot, len(urls))
	var g errgroup.Group
	for i, url := range urls {
		g.Go(func() error {
			snapshot, err := c.cache.Get(ctx, url)
			if err != nil {
				if apperrors.IsPersistence(err) {
					return err
				}
				c.log.Warn().Err(err).Str("url", url).Msg("Dropping product from comparison")
				return nil
			}
			slots[i] = snapshot
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var survivors []*model.Snapshot
	for _, s := range slots {
		if s != nil {
			survivors = append(survivors, s)
		}
	}
	if len(survivors) == 0 {
		return &model.ComparisonResult{
			Success:  false,
			Message:  "Failed to scrape any products",
			Products: []model.ScoredSnapshot{},
		}, nil
	}

	maxPrice, lowestPrice := survivors[0].Price, survivors[0].Price
	for _, s := range survivors[1:] {
		maxPrice = max(maxPrice, s.Price)
		lowestPrice = min(lowestPrice, s.Price)
	}

	products := make([]model.ScoredSnapshot, 0, len(survivors))
	for _, s := range survivors {
		products = append(products, model.ScoredSnapshot{
			Snapshot:       *s,
			BestValueScore: CalculateBestValueScore(s.Price, s.Rating, maxPrice),
		})
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].BestValueScore > products[j].BestValueScore
	})

	best := products[0]
	comparedAt := c.now()

	c.log.Info().
		Int("requested", len(urls)).
		Int("compared", len(products)).
		Str("best_platform", string(best.Platform)).
		Float64("best_score", best.BestValueScore).
		Msg("Comparison complete")

	return &model.ComparisonResult{
		Success:  true,
		Products: products,
		BestDeal: &model.BestDeal{
			Platform:       best.Platform,
			Price:          best.Price,
			Title:          best.Title,
			URL:            best.URL,
			BestValueScore: best.BestValueScore,
		},
		LowestPrice: &lowestPrice,
		ComparedAt:  &comparedAt,
	}, nil
}
