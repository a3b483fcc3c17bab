package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/jmoiron/sqlx"
)

// PostgresAuditRepo is the write-only compliance sink. The service
// never reads it back; List exists for the auditdump tool.
type PostgresAuditRepo struct {
	db    *sqlx.DB
	table string
}

func NewPostgresAuditRepo(db *sqlx.DB, table string) *PostgresAuditRepo {
	if table == "" {
		table = "audit_logs"
	}
	repo := &PostgresAuditRepo{db: db, table: table}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresAuditRepo) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil {
		return nil
	}
	detailsJSON, _ := json.Marshal(entry.Details)
	query := fmt.Sprintf(`
		INSERT INTO %s (log_id, ts, actor_type, actor_id, action, report_id, details)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (log_id) DO NOTHING
	`, r.table)
	_, err := r.db.ExecContext(ctx, query,
		entry.LogID, entry.Timestamp, entry.ActorType, entry.ActorID,
		entry.Action, entry.ReportID, detailsJSON)
	return err
}

func (r *PostgresAuditRepo) List(ctx context.Context, actorID string, limit int, from, to string) ([]*model.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT log_id, ts, actor_type, actor_id, action, report_id, details FROM %s`, r.table)
	clauses := []string{}
	args := []interface{}{}
	idx := 1

	if actorID != "" {
		clauses = append(clauses, fmt.Sprintf("actor_id = $%d", idx))
		args = append(args, actorID)
		idx++
	}
	if from != "" {
		clauses = append(clauses, fmt.Sprintf("ts >= $%d", idx))
		args = append(args, from)
		idx++
	}
	if to != "" {
		clauses = append(clauses, fmt.Sprintf("ts <= $%d", idx))
		args = append(args, to)
		idx++
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY ts DESC LIMIT $%d", idx)
	args = append(args, limit)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*model.AuditLog, 0, limit)
	for rows.Next() {
		var entry model.AuditLog
		var detailsJSON []byte
		if err := rows.Scan(
			&entry.LogID,
			&entry.Timestamp,
			&entry.ActorType,
			&entry.ActorID,
			&entry.Action,
			&entry.ReportID,
			&detailsJSON,
		); err != nil {
			return nil, err
		}
		if len(detailsJSON) > 0 {
			_ = json.Unmarshal(detailsJSON, &entry.Details)
		}
		records = append(records, &entry)
	}
	return records, rows.Err()
}

func (r *PostgresAuditRepo) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan).Format("2006-01-02T15:04:05.000Z07:00")
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE ts < $1`, r.table), cutoff)
	return err
}

func (r *PostgresAuditRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			log_id TEXT PRIMARY KEY,
			ts TEXT NOT NULL,
			actor_type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			action TEXT NOT NULL,
			report_id TEXT NOT NULL DEFAULT '',
			details JSONB
		)
	`, r.table))
	if err != nil {
		return err
	}
	_, _ = r.db.ExecContext(ctx, fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_ts ON %s(ts DESC)`, r.table, r.table))
	return nil
}
