package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/jmoiron/sqlx"
)

var ErrShelterNotFound = errors.New("shelter not found")

type PostgresShelterRepo struct {
	db    *sqlx.DB
	table string
}

func NewPostgresShelterRepo(db *sqlx.DB, table string) *PostgresShelterRepo {
	if table == "" {
		table = "shelters"
	}
	repo := &PostgresShelterRepo{db: db, table: table}
	_ = repo.ensureSchema(context.Background())
	return repo
}

// Upsert writes the full row keyed by shelter_id; saveShelter semantics
// are create-or-replace.
func (r *PostgresShelterRepo) Upsert(ctx context.Context, s *model.Shelter) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (shelter_id, name, lat, lng, is_active, updated_at, updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (shelter_id) DO UPDATE SET
			name = EXCLUDED.name,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`, r.table)
	_, err := r.db.ExecContext(ctx, query,
		s.ShelterID, s.Name, s.Lat, s.Lng, s.IsActive, s.UpdatedAt, s.UpdatedBy)
	return err
}

func (r *PostgresShelterRepo) Get(ctx context.Context, shelterID string) (*model.Shelter, error) {
	var s model.Shelter
	query := fmt.Sprintf(`SELECT shelter_id, name, lat, lng, is_active, updated_at, updated_by FROM %s WHERE shelter_id = $1 LIMIT 1`, r.table)
	if err := r.db.GetContext(ctx, &s, query, shelterID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShelterNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *PostgresShelterRepo) List(ctx context.Context) ([]model.Shelter, error) {
	query := fmt.Sprintf(`SELECT shelter_id, name, lat, lng, is_active, updated_at, updated_by FROM %s ORDER BY name`, r.table)
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.Shelter, 0)
	for rows.Next() {
		var s model.Shelter
		if err := rows.StructScan(&s); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *PostgresShelterRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			shelter_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TEXT NOT NULL,
			updated_by TEXT NOT NULL
		)
	`, r.table))
	return err
}
