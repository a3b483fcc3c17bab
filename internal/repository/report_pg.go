package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/jmoiron/sqlx"
)

var ErrReportNotFound = errors.New("report not found")

// PostgresReportRepo is the durable report store. Two composite indexes
// back the planner's index paths: (status, created_at) and
// (category, created_at). created_at is a fixed-width ISO-8601 string,
// so the index order is chronological.
type PostgresReportRepo struct {
	db    *sqlx.DB
	table string
}

func NewPostgresReportRepo(db *sqlx.DB, table string) *PostgresReportRepo {
	if table == "" {
		table = "reports"
	}
	repo := &PostgresReportRepo{db: db, table: table}
	_ = repo.ensureSchema(context.Background())
	return repo
}

// reportDB handles the JSONB photo_keys column.
type reportDB struct {
	ReportID      string  `db:"report_id"`
	CreatedAt     string  `db:"created_at"`
	Category      string  `db:"category"`
	Status        string  `db:"status"`
	Lat           float64 `db:"lat"`
	Lng           float64 `db:"lng"`
	Description   string  `db:"description"`
	ContactPhone  string  `db:"contact_phone"`
	PhotoKeysJSON []byte  `db:"photo_keys"`
	ReporterID    string  `db:"reporter_id"`
}

func (r *PostgresReportRepo) toDomain(rd *reportDB) (*model.Report, error) {
	rep := &model.Report{
		ReportID:     rd.ReportID,
		CreatedAt:    rd.CreatedAt,
		Category:     rd.Category,
		Status:       rd.Status,
		Lat:          rd.Lat,
		Lng:          rd.Lng,
		Description:  rd.Description,
		ContactPhone: rd.ContactPhone,
		ReporterID:   rd.ReporterID,
		PhotoKeys:    []string{},
	}
	if len(rd.PhotoKeysJSON) > 0 {
		if err := json.Unmarshal(rd.PhotoKeysJSON, &rep.PhotoKeys); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

const reportColumns = `report_id, created_at, category, status, lat, lng, description, contact_phone, photo_keys, reporter_id`

func (r *PostgresReportRepo) Insert(ctx context.Context, rep *model.Report) error {
	keys, _ := json.Marshal(rep.PhotoKeys)
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`, r.table, reportColumns)
	_, err := r.db.ExecContext(ctx, query,
		rep.ReportID, rep.CreatedAt, rep.Category, rep.Status,
		rep.Lat, rep.Lng, rep.Description, rep.ContactPhone, keys, rep.ReporterID)
	return err
}

func (r *PostgresReportRepo) Get(ctx context.Context, reportID string) (*model.Report, error) {
	var rd reportDB
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE report_id = $1 LIMIT 1`, reportColumns, r.table)
	if err := r.db.GetContext(ctx, &rd, query, reportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return r.toDomain(&rd)
}

// UpdateStatus persists the new status. There is deliberately no
// expected-previous-value condition: concurrent transitions race and
// the last writer wins, while every transition still lands in history.
func (r *PostgresReportRepo) UpdateStatus(ctx context.Context, reportID, status string) error {
	query := fmt.Sprintf(`UPDATE %s SET status = $2 WHERE report_id = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query, reportID, status)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (r *PostgresReportRepo) ListByStatus(ctx context.Context, status string, asc bool) ([]model.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE status = $1 ORDER BY created_at %s`, reportColumns, r.table, direction(asc))
	return r.queryReports(ctx, query, status)
}

func (r *PostgresReportRepo) ListByCategory(ctx context.Context, category string, asc bool) ([]model.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE category = $1 ORDER BY created_at %s`, reportColumns, r.table, direction(asc))
	return r.queryReports(ctx, query, category)
}

// ScanAll retrieves every report with no ordering guarantee; the
// planner filters and sorts in application logic.
func (r *PostgresReportRepo) ScanAll(ctx context.Context) ([]model.Report, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, reportColumns, r.table)
	return r.queryReports(ctx, query)
}

func (r *PostgresReportRepo) queryReports(ctx context.Context, query string, args ...interface{}) ([]model.Report, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]model.Report, 0)
	for rows.Next() {
		var rd reportDB
		if err := rows.StructScan(&rd); err != nil {
			return nil, err
		}
		rep, err := r.toDomain(&rd)
		if err != nil {
			return nil, err
		}
		results = append(results, *rep)
	}
	return results, rows.Err()
}

func direction(asc bool) string {
	if asc {
		return "ASC"
	}
	return "DESC"
}

func (r *PostgresReportRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			report_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			category TEXT NOT NULL,
			status TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lng DOUBLE PRECISION NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			contact_phone TEXT NOT NULL DEFAULT '',
			photo_keys JSONB,
			reporter_id TEXT NOT NULL
		)
	`, r.table))
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_status_created ON %s(status, created_at)`, r.table, r.table))
	_, _ = r.db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_category_created ON %s(category, created_at)`, r.table, r.table))
	return nil
}
