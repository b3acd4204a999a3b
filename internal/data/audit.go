package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// auditRepo implements the message audit repository on sqlite.
type auditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new message audit repository.
func NewAuditRepo(db *sql.DB) (repo.AuditRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS audits (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			message_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			listings INTEGER NOT NULL DEFAULT 0,
			requirements INTEGER NOT NULL DEFAULT 0,
			detail TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create audits table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_audits_tenant ON audits(tenant_id, created_at)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create audits index: %w", err)
	}
	return &auditRepo{db: db}, nil
}

// Save appends an audit row.
func (r *auditRepo) Save(ctx context.Context, a *domain.MessageAudit) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO audits (id, tenant_id, message_id, status, listings, requirements, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID, a.TenantID, a.MessageID, string(a.Status),
		a.Listings, a.Requirements, a.Detail, a.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit row: %w", err)
	}
	return nil
}

// List returns recent audit rows for the visible tenant set.
func (r *auditRepo) List(ctx context.Context, visibleTenants []string, limit int) ([]*domain.MessageAudit, error) {
	if len(visibleTenants) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	ph, args := placeholders(visibleTenants)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tenant_id, message_id, status, listings, requirements, detail, created_at
		FROM audits WHERE tenant_id IN (`+ph+`)
		ORDER BY created_at DESC LIMIT ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit rows: %w", err)
	}
	defer rows.Close()

	var out []*domain.MessageAudit
	for rows.Next() {
		var a domain.MessageAudit
		var status string
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.TenantID, &a.MessageID, &status,
			&a.Listings, &a.Requirements, &a.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		a.Status = domain.AuditStatus(status)
		a.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, &a)
	}
	return out, rows.Err()
}
