package store

import (
	"context"
	"errors"
	"time"

	"sjsage522/pricepeek/internal/model"
	"sjsage522/pricepeek/logger"
	apperrors "sjsage522/pricepeek/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS product_snapshots (
    id             UUID PRIMARY KEY,
    url            TEXT NOT NULL,
    url_hash       TEXT NOT NULL,
    platform       TEXT NOT NULL,
    title          TEXT NOT NULL,
    price          NUMERIC NOT NULL CHECK (price >= 0),
    original_price NUMERIC,
    discount       NUMERIC(5,2),
    rating         NUMERIC(3,2),
    image_url      TEXT,
    captured_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS product_snapshots_hash_captured_idx
    ON product_snapshots (url_hash, captured_at DESC);

CREATE TABLE IF NOT EXISTS price_history (
    id             BIGSERIAL PRIMARY KEY,
    snapshot_id    UUID NOT NULL REFERENCES product_snapshots (id),
    url            TEXT NOT NULL,
    url_hash       TEXT NOT NULL,
    platform       TEXT NOT NULL,
    price          NUMERIC NOT NULL,
    original_price NUMERIC,
    discount       NUMERIC(5,2),
    recorded_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS price_history_hash_recorded_idx
    ON price_history (url_hash, recorded_at);

-- widens price columns of tables created with NUMERIC(12,2)
ALTER TABLE product_snapshots
    ALTER COLUMN price TYPE NUMERIC,
    ALTER COLUMN original_price TYPE NUMERIC;
ALTER TABLE price_history
    ALTER COLUMN price TYPE NUMERIC,
    ALTER COLUMN original_price TYPE NUMERIC;
`

const snapshotColumns = `id::text, url, url_hash, platform, title,
       (price::double precision), (original_price::double precision),
       (discount::double precision), (rating::double precision),
       image_url, captured_at`

// PostgresStore implements Store on a pgx connection pool
type PostgresStore struct {
	db  *pgxpool.Pool
	log *logger.Logger
}

// NewPostgresStore connects to databaseURL, checks the connection and applies the schema
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, apperrors.NewPersistence("create pgx pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.NewPersistence("ping database", err)
	}

	s := NewPostgresStoreFromPool(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s.log.Info().Msg("Connected to postgres")
	return s, nil
}

// NewPostgresStoreFromPool wraps an existing pool
func NewPostgresStoreFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool, log: logger.ForStore()}
}

// EnsureSchema creates the tables if they do not exist
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return apperrors.NewPersistence("apply schema", err)
	}
	return nil
}

func (p *PostgresStore) InsertSnapshot(ctx context.Context, s *model.Snapshot) (string, error) {
	if s == nil {
		return "", apperrors.NewPersistence("insert snapshot", errNilValue)
	}

	id := uuid.New()
	_, err := p.db.Exec(ctx, `
INSERT INTO product_snapshots
    (id, url, url_hash, platform, title, price, original_price, discount, rating, image_url, captured_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, s.URL, s.URLHash, string(s.Platform), s.Title, s.Price,
		s.OriginalPrice, s.Discount, s.Rating, s.ImageURL, s.CapturedAt)
	if err != nil {
		return "", apperrors.NewPersistence("insert snapshot", err)
	}
	return id.String(), nil
}

func (p *PostgresStore) FindLatestSnapshot(ctx context.Context, urlHash string) (*model.Snapshot, error) {
	row := p.db.QueryRow(ctx, `
SELECT `+snapshotColumns+`
FROM product_snapshots
WHERE url_hash = $1
ORDER BY captured_at DESC
LIMIT 1`, urlHash)

	s, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewPersistence("find latest snapshot", err)
	}
	return s, nil
}

func (p *PostgresStore) FindSnapshotByID(ctx context.Context, id string) (*model.Snapshot, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	row := p.db.QueryRow(ctx, `
SELECT `+snapshotColumns+`
FROM product_snapshots
WHERE id = $1`, parsed)

	s, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewPersistence("find snapshot", err)
	}
	return s, nil
}

func (p *PostgresStore) InsertHistoryRecord(ctx context.Context, r *model.PriceHistoryRecord) error {
	if r == nil {
		return apperrors.NewPersistence("insert history record", errNilValue)
	}
	snapshotID, err := uuid.Parse(r.SnapshotID)
	if err != nil {
		return apperrors.NewPersistence("insert history record", errUnknownSnapshot)
	}

	err = p.db.QueryRow(ctx, `
INSERT INTO price_history
    (snapshot_id, url, url_hash, platform, price, original_price, discount, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`,
		snapshotID, r.URL, r.URLHash, string(r.Platform), r.Price,
		r.OriginalPrice, r.Discount, r.RecordedAt).Scan(&r.ID)
	if err != nil {
		return apperrors.NewPersistence("insert history record", err)
	}
	return nil
}

func (p *PostgresStore) QueryHistory(ctx context.Context, productID string, since time.Time) ([]model.PriceHistoryRecord, error) {
	records := []model.PriceHistoryRecord{}

	parsed, err := uuid.Parse(productID)
	if err != nil {
		return records, nil
	}

	rows, err := p.db.Query(ctx, `
SELECT h.id, h.snapshot_id::text, h.url, h.url_hash, h.platform,
       (h.price::double precision), (h.original_price::double precision),
       (h.discount::double precision), h.recorded_at
FROM price_history h
JOIN product_snapshots s ON s.url_hash = h.url_hash
WHERE s.id = $1 AND h.recorded_at >= $2
ORDER BY h.recorded_at ASC, h.id ASC`, parsed, since)
	if err != nil {
		return nil, apperrors.NewPersistence("query history", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.PriceHistoryRecord
		var platform string
		if err := rows.Scan(&r.ID, &r.SnapshotID, &r.URL, &r.URLHash, &platform,
			&r.Price, &r.OriginalPrice, &r.Discount, &r.RecordedAt); err != nil {
			return nil, apperrors.NewPersistence("scan history record", err)
		}
		r.Platform = model.Platform(platform)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistence("query history", err)
	}
	return records, nil
}

func (p *PostgresStore) Close() error {
	p.db.Close()
	return nil
}

func scanSnapshot(row pgx.Row) (*model.Snapshot, error) {
	var s model.Snapshot
	var platform string
	if err := row.Scan(&s.ID, &s.URL, &s.URLHash, &platform, &s.Title,
		&s.Price, &s.OriginalPrice, &s.Discount, &s.Rating,
		&s.ImageURL, &s.CapturedAt); err != nil {
		return nil, err
	}
	s.Platform = model.Platform(platform)
	return &s, nil
}
