package model

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Platform identifies a supported e-commerce site
type Platform string

// Supported platforms
const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformMeesho   Platform = "meesho"
)

// Platforms lists every supported platform in detection order
var Platforms = []Platform{PlatformAmazon, PlatformFlipkart, PlatformMeesho}

// Valid reports whether p is a supported platform
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// ScrapedProduct is what a platform scraper reads off a product page
type ScrapedProduct struct {
	URL           string   `json:"url"`
	Platform      Platform `json:"platform"`
	Title         string   `json:"title"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
}

// Snapshot is one immutable captured reading of a product.
// A newer scrape produces a new Snapshot; existing ones are never edited.
type Snapshot struct {
	ID string `json:"id"`
	ScrapedProduct
	CapturedAt time.Time `json:"capturedAt"`
	URLHash    string    `json:"urlHash"`
}

// NewSnapshot stamps a scraped product with its capture time and cache key
func NewSnapshot(p ScrapedProduct, capturedAt time.Time) *Snapshot {
	p.URL = CanonicalURL(p.URL)
	return &Snapshot{
		ScrapedProduct: p,
		CapturedAt:     capturedAt,
		URLHash:        HashURL(p.URL),
	}
}

// PriceHistoryRecord is an append-only price observation tied to the snapshot that produced it
type PriceHistoryRecord struct {
	ID            int64     `json:"id,omitempty"`
	SnapshotID    string    `json:"snapshotId"`
	URL           string    `json:"url"`
	URLHash       string    `json:"urlHash"`
	Platform      Platform  `json:"platform"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Discount      *float64  `json:"discount,omitempty"`
	RecordedAt    time.Time `json:"recordedAt"`
}

// NewHistoryRecord builds the history entry for a persisted snapshot
func NewHistoryRecord(s *Snapshot) *PriceHistoryRecord {
	return &PriceHistoryRecord{
		SnapshotID:    s.ID,
		URL:           s.URL,
		URLHash:       s.URLHash,
		Platform:      s.Platform,
		Price:         s.Price,
		OriginalPrice: s.OriginalPrice,
		Discount:      s.Discount,
		RecordedAt:    s.CapturedAt,
	}
}

// CanonicalURL is the form of a URL that is hashed and stored
func CanonicalURL(url string) string {
	return strings.TrimSpace(url)
}

// HashURL returns the cache key for a URL: hex MD5 of its canonical form
func HashURL(url string) string {
	sum := md5.Sum([]byte(CanonicalURL(url)))
	return hex.EncodeToString(sum[:])
}
