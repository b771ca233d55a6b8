package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
	"github.com/AlsakaSoftware/Ijar-sub000/internal/pkg/geospatial"
)

// PropertyRepo implements ports.PropertyRepository with pgx.
type PropertyRepo struct {
	db *DB
}

// NewPropertyRepo creates a new PropertyRepo.
func NewPropertyRepo(db *DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

const propertyColumns = `
	id, title, address, COALESCE(postcode, ''), monthly_rent, currency,
	bedrooms, bathrooms, furnished, lat, lon, COALESCE(lister, ''),
	COALESCE(image_urls, '{}'), COALESCE(metadata, '{}'), available_at, created_at`

func scanProperty(row pgx.Row) (domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID, &p.Title, &p.Address, &p.Postcode, &p.MonthlyRent, &p.Currency,
		&p.Bedrooms, &p.Bathrooms, &p.Furnished, &p.Location.Lat, &p.Location.Lon,
		&p.Lister, &p.ImageURLs, &p.Metadata, &p.AvailableAt, &p.CreatedAt,
	)
	return p, err
}

// Upsert inserts or updates a single listing.
func (r *PropertyRepo) Upsert(ctx context.Context, p *domain.Property) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO properties (id, title, address, postcode, monthly_rent, currency,
		                        bedrooms, bathrooms, furnished, lat, lon, lister,
		                        image_urls, metadata, available_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, address = EXCLUDED.address,
		    postcode = EXCLUDED.postcode, monthly_rent = EXCLUDED.monthly_rent,
		    bedrooms = EXCLUDED.bedrooms, bathrooms = EXCLUDED.bathrooms,
		    furnished = EXCLUDED.furnished, lat = EXCLUDED.lat, lon = EXCLUDED.lon,
		    image_urls = EXCLUDED.image_urls, metadata = EXCLUDED.metadata,
		    available_at = EXCLUDED.available_at
	`, p.ID, p.Title, p.Address, p.Postcode, p.MonthlyRent, p.Currency,
		p.Bedrooms, p.Bathrooms, p.Furnished, p.Location.Lat, p.Location.Lon,
		p.Lister, p.ImageURLs, p.Metadata, p.AvailableAt)
	return err
}

// UpsertBatch inserts many listings using pgx.Batch.
func (r *PropertyRepo) UpsertBatch(ctx context.Context, properties []domain.Property) error {
	batch := &pgx.Batch{}
	for _, p := range properties {
		batch.Queue(`
			INSERT INTO properties (id, title, address, postcode, monthly_rent, currency,
			                        bedrooms, bathrooms, furnished, lat, lon, lister,
			                        image_urls, metadata, available_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title, monthly_rent = EXCLUDED.monthly_rent,
			    lat = EXCLUDED.lat, lon = EXCLUDED.lon
		`, p.ID, p.Title, p.Address, p.Postcode, p.MonthlyRent, p.Currency,
			p.Bedrooms, p.Bathrooms, p.Furnished, p.Location.Lat, p.Location.Lon,
			p.Lister, p.ImageURLs, p.Metadata, p.AvailableAt)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range properties {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a listing by ID.
func (r *PropertyRepo) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	p, err := scanProperty(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns a page of listings, newest first, plus the total count.
func (r *PropertyRepo) List(ctx context.Context, offset, limit int) ([]domain.Property, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM properties`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		properties = append(properties, p)
	}
	return properties, total, rows.Err()
}

// Search performs fuzzy search on titles, addresses, and postcodes.
func (r *PropertyRepo) Search(ctx context.Context, query string, limit int) ([]domain.Property, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+propertyColumns+`, similarity(title || ' ' || address, $1) AS sim
		 FROM properties
		 WHERE title % $1 OR address % $1 OR postcode = $1
		 ORDER BY sim DESC
		 LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		var p domain.Property
		var sim float64
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Address, &p.Postcode, &p.MonthlyRent, &p.Currency,
			&p.Bedrooms, &p.Bathrooms, &p.Furnished, &p.Location.Lat, &p.Location.Lon,
			&p.Lister, &p.ImageURLs, &p.Metadata, &p.AvailableAt, &p.CreatedAt,
			&sim,
		); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// FindNearby returns listings within radiusMeters of a point, nearest
// first. A bounding box narrows the SQL scan; exact distances come from
// the haversine formula.
func (r *PropertyRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Property, error) {
	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(lat, lon, radiusMeters)

	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+propertyColumns+`
		 FROM properties
		 WHERE lat BETWEEN $1 AND $3 AND lon BETWEEN $2 AND $4`,
		minLat, minLon, maxLat, maxLon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		dist := geospatial.Haversine(lat, lon, p.Location.Lat, p.Location.Lon)
		if dist > radiusMeters {
			continue
		}
		p.Distance = &dist
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(properties, func(i, j int) bool {
		return *properties[i].Distance < *properties[j].Distance
	})
	if len(properties) > limit {
		properties = properties[:limit]
	}
	return properties, nil
}
