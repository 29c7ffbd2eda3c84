package store

import (
	"context"
	"time"

	"sjsage522/pricepeek/internal/model"
)

// Store persists snapshots and their price history.
// Every error it returns is a persistence error.
type Store interface {
	// InsertSnapshot stores a new snapshot and returns its generated ID. Existing snapshots are never touched.
	InsertSnapshot(ctx context.Context, s *model.Snapshot) (string, error)

	// FindLatestSnapshot returns the most recently captured snapshot for urlHash, or nil if there is none
	FindLatestSnapshot(ctx context.Context, urlHash string) (*model.Snapshot, error)

	// FindSnapshotByID returns the snapshot with id, or nil if there is none
	FindSnapshotByID(ctx context.Context, id string) (*model.Snapshot, error)

	// InsertHistoryRecord appends a history record; its SnapshotID must reference a stored snapshot
	InsertHistoryRecord(ctx context.Context, r *model.PriceHistoryRecord) error

	// QueryHistory returns the records recorded at or after since for the product that snapshot
	// productID belongs to, oldest first. A product is every snapshot sharing a URL hash.
	QueryHistory(ctx context.Context, productID string, since time.Time) ([]model.PriceHistoryRecord, error)

	// Close releases the underlying resources
	Close() error
}
