package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tgmarketer/audit-bot/internal/model"
)

// PostgresAuditRepository stores requests in a Postgres table with the
// same positional contract as the file store: records ordered by
// insertion, removal by zero-based position among the remaining rows.
type PostgresAuditRepository struct {
	db *sql.DB
}

func NewPostgresAuditRepository(connStr string) (*PostgresAuditRepository, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, err
	}
	r := &PostgresAuditRepository{db: db}
	if err := r.init(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *PostgresAuditRepository) init() error {
	_, err := r.db.Exec(`
        CREATE TABLE IF NOT EXISTS audit_requests (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT,
            username TEXT,
            audit_type TEXT,
            goal TEXT,
            link TEXT,
            created_at TEXT
        )`)
	return err
}

func (r *PostgresAuditRepository) Append(ctx context.Context, req *model.AuditRequest) error {
	ts := req.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO audit_requests (user_id, username, audit_type, goal, link, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`,
		req.UserID, req.Username, req.AuditType, req.Goal, req.Link, ts)
	return err
}

func (r *PostgresAuditRepository) LoadAll(ctx context.Context) ([]*model.AuditRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_id, username, audit_type, goal, link, created_at
        FROM audit_requests ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []*model.AuditRequest{}
	for rows.Next() {
		var req model.AuditRequest
		if err := rows.Scan(&req.UserID, &req.Username, &req.AuditType, &req.Goal, &req.Link, &req.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, &req)
	}
	return result, rows.Err()
}

func (r *PostgresAuditRepository) RemoveAt(ctx context.Context, index int) error {
	if index < 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
        DELETE FROM audit_requests
        WHERE id = (SELECT id FROM audit_requests ORDER BY id LIMIT 1 OFFSET $1)`, index)
	return err
}
