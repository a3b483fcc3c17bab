package repository

import (
	"context"
	"fmt"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/jmoiron/sqlx"
)

// PostgresHistoryRepo is the append-only per-report change ledger.
// Entries are never updated or deleted; seq breaks ties between entries
// written in the same millisecond.
type PostgresHistoryRepo struct {
	db    *sqlx.DB
	table string
}

func NewPostgresHistoryRepo(db *sqlx.DB, table string) *PostgresHistoryRepo {
	if table == "" {
		table = "report_history"
	}
	repo := &PostgresHistoryRepo{db: db, table: table}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresHistoryRepo) Append(ctx context.Context, item *model.HistoryItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (report_id, changed_at, changed_by, action, from_value, to_value, memo)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, r.table)
	_, err := r.db.ExecContext(ctx, query,
		item.ReportID, item.ChangedAt, item.ChangedBy, item.Action,
		item.FromValue, item.ToValue, item.Memo)
	return err
}

// ListByReport returns the full mutation timeline newest-first.
func (r *PostgresHistoryRepo) ListByReport(ctx context.Context, reportID string) ([]model.HistoryItem, error) {
	query := fmt.Sprintf(`
		SELECT report_id, changed_at, changed_by, action, from_value, to_value, memo
		FROM %s WHERE report_id = $1
		ORDER BY changed_at DESC, seq DESC
	`, r.table)
	rows, err := r.db.QueryxContext(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.HistoryItem, 0)
	for rows.Next() {
		var item model.HistoryItem
		if err := rows.StructScan(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PostgresHistoryRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq BIGSERIAL PRIMARY KEY,
			report_id TEXT NOT NULL,
			changed_at TEXT NOT NULL,
			changed_by TEXT NOT NULL,
			action TEXT NOT NULL,
			from_value TEXT NOT NULL DEFAULT '',
			to_value TEXT NOT NULL DEFAULT '',
			memo TEXT NOT NULL DEFAULT ''
		)
	`, r.table))
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_report ON %s(report_id, changed_at DESC)`, r.table, r.table))
	return nil
}
