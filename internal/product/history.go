package product

import (
	"context"
	"strconv"
	"strings"
	"time"

	"sjsage522/pricepeek/internal/model"
	"sjsage522/pricepeek/internal/store"
)

// History window bounds in days
const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 90
)

// ClampDays bounds a history window to [1, MaxHistoryDays]; 0 means unspecified
func ClampDays(days int) int {
	switch {
	case days == 0:
		return DefaultHistoryDays
	case days < 1:
		return 1
	case days > MaxHistoryDays:
		return MaxHistoryDays
	}
	return days
}

// ParseDays reads a window from user input; anything non-numeric means the default
func ParseDays(raw string) int {
	days, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultHistoryDays
	}
	return ClampDays(days)
}

// HistoryService answers price history queries
type HistoryService struct {
	store store.Store
	now   func() time.Time
}

// NewHistoryService creates a history service over st
func NewHistoryService(st store.Store) *HistoryService {
	return &HistoryService{store: st, now: time.Now}
}

// History returns the price records of the product that snapshot productID belongs to,
// covering the last days days, oldest first. An unknown product yields no summary and no records.
func (h *HistoryService) History(ctx context.Context, productID string, days int) (*model.HistoryResult, error) {
	days = ClampDays(days)
	since := h.now().Add(-time.Duration(days) * 24 * time.Hour)

	result := &model.HistoryResult{Success: true, History: []model.HistoryPoint{}}

	snapshot, err := h.store.FindSnapshotByID(ctx, productID)
	if err != nil {
		return nil, persistence("find snapshot", err)
	}
	if snapshot == nil {
		return result, nil
	}

	current, err := h.store.FindLatestSnapshot(ctx, snapshot.URLHash)
	if err != nil {
		return nil, persistence("find latest snapshot", err)
	}
	if current == nil {
		current = snapshot
	}
	result.Product = &model.ProductSummary{
		Title:        current.Title,
		Platform:     current.Platform,
		CurrentPrice: current.Price,
	}

	records, err := h.store.QueryHistory(ctx, productID, since)
	if err != nil {
		return nil, persistence("query history", err)
	}
	for _, r := range records {
		result.History = append(result.History, model.HistoryPoint{
			Price:         r.Price,
			OriginalPrice: r.OriginalPrice,
			Discount:      r.Discount,
			Date:          r.RecordedAt,
		})
	}
	return result, nil
}
