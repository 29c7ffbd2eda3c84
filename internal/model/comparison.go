package model

import "time"

// ScoredSnapshot is a snapshot annotated with its best-value score
type ScoredSnapshot struct {
	Snapshot
	BestValueScore float64 `json:"bestValueScore"`
}

// BestDeal summarises the top-ranked product of a comparison
type BestDeal struct {
	Platform       Platform `json:"platform"`
	Price          float64  `json:"price"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	BestValueScore float64  `json:"bestValueScore"`
}

// ComparisonResult is the transient outcome of comparing a set of product URLs
type ComparisonResult struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message,omitempty"`
	Products    []ScoredSnapshot `json:"products"`
	BestDeal    *BestDeal        `json:"bestDeal,omitempty"`
	LowestPrice *float64         `json:"lowestPrice,omitempty"`
	ComparedAt  *time.Time       `json:"comparedAt,omitempty"`
}

// ProductSummary is the context returned alongside a price history
type ProductSummary struct {
	Title        string   `json:"title"`
	Platform     Platform `json:"platform"`
	CurrentPrice float64  `json:"currentPrice"`
}

// HistoryPoint is one entry of a price history response
type HistoryPoint struct {
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Discount      *float64  `json:"discount,omitempty"`
	Date          time.Time `json:"date"`
}

// HistoryResult is the response of a history query
type HistoryResult struct {
	Success bool            `json:"success"`
	Product *ProductSummary `json:"product"`
	History []HistoryPoint  `json:"history"`
}
