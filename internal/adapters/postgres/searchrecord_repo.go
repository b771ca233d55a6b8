package postgres

import (
	"context"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// SearchRecordRepo implements ports.SearchRecordRepository with pgx.
type SearchRecordRepo struct {
	db *DB
}

// NewSearchRecordRepo creates a new SearchRecordRepo.
func NewSearchRecordRepo(db *DB) *SearchRecordRepo {
	return &SearchRecordRepo{db: db}
}

// Insert stores one settled search.
func (r *SearchRecordRepo) Insert(ctx context.Context, rec *domain.SearchRecord) error {
	var lat, lon *float64
	if rec.Location != nil {
		lat, lon = &rec.Location.Lat, &rec.Location.Lon
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO search_records (id, user_id, query, outcome, lat, lon)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.ID, rec.UserID, rec.Query, rec.Outcome, lat, lon)
	return err
}

// RecentByUser returns the user's latest searches, newest first.
func (r *SearchRecordRepo) RecentByUser(ctx context.Context, userID string, limit int) ([]domain.SearchRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, query, outcome, lat, lon, created_at
		FROM search_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.SearchRecord
	for rows.Next() {
		var rec domain.SearchRecord
		var lat, lon *float64
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Query, &rec.Outcome, &lat, &lon, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			rec.Location = &domain.Coordinate{Lat: *lat, Lon: *lon}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
