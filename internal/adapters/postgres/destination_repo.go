package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// DestinationRepo implements ports.DestinationRepository with pgx.
type DestinationRepo struct {
	db *DB
}

// NewDestinationRepo creates a new DestinationRepo.
func NewDestinationRepo(db *DB) *DestinationRepo {
	return &DestinationRepo{db: db}
}

// Create inserts a saved destination. lat/lon stay NULL until the
// coordinate is explicitly persisted via SaveCoordinate.
func (r *DestinationRepo) Create(ctx context.Context, d *domain.Destination) error {
	var lat, lon *float64
	if d.Location != nil {
		lat, lon = &d.Location.Lat, &d.Location.Lon
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO destinations (id, user_id, display_name, postcode, lat, lon, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.ID, d.UserID, d.DisplayName, d.Postcode, lat, lon, d.Position)
	return err
}

// ListByUser returns the user's destinations in saved order.
func (r *DestinationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Destination, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, display_name, COALESCE(postcode, ''), lat, lon, position, created_at
		FROM destinations
		WHERE user_id = $1
		ORDER BY position, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dests []domain.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		dests = append(dests, d)
	}
	return dests, rows.Err()
}

// GetByID returns a destination by ID.
func (r *DestinationRepo) GetByID(ctx context.Context, id string) (*domain.Destination, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, display_name, COALESCE(postcode, ''), lat, lon, position, created_at
		FROM destinations WHERE id = $1
	`, id)
	d, err := scanDestination(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// SaveCoordinate persists coordinate enrichment for a destination.
func (r *DestinationRepo) SaveCoordinate(ctx context.Context, id string, loc domain.Coordinate) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE destinations SET lat = $2, lon = $3 WHERE id = $1`,
		id, loc.Lat, loc.Lon)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearCoordinate removes a persisted coordinate.
func (r *DestinationRepo) ClearCoordinate(ctx context.Context, id string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE destinations SET lat = NULL, lon = NULL WHERE id = $1`, id)
	return err
}

// Reorder applies a new ordering of the user's destinations.
func (r *DestinationRepo) Reorder(ctx context.Context, userID string, orderedIDs []string) error {
	batch := &pgx.Batch{}
	for pos, id := range orderedIDs {
		batch.Queue(
			`UPDATE destinations SET position = $3 WHERE id = $1 AND user_id = $2`,
			id, userID, pos)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range orderedIDs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// Delete removes a destination.
func (r *DestinationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM destinations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanDestination(row pgx.Row) (domain.Destination, error) {
	var d domain.Destination
	var lat, lon *float64
	err := row.Scan(&d.ID, &d.UserID, &d.DisplayName, &d.Postcode, &lat, &lon, &d.Position, &d.CreatedAt)
	if err != nil {
		return d, err
	}
	if lat != nil && lon != nil {
		d.Location = &domain.Coordinate{Lat: *lat, Lon: *lon}
	}
	return d, nil
}
