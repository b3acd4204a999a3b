package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// alertRepo implements the alert subscription repository on sqlite.
type alertRepo struct {
	db *sql.DB
}

// NewAlertRepo creates a new alert subscription repository.
func NewAlertRepo(db *sql.DB) (repo.AlertRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			reference TEXT NOT NULL,
			variant TEXT NOT NULL DEFAULT '',
			min_price REAL,
			max_price REAL,
			currency TEXT NOT NULL DEFAULT '',
			destination TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			triggered_count INTEGER NOT NULL DEFAULT 0,
			last_triggered INTEGER,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create alerts table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_alerts_tenant ON alerts(tenant_id, active)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create alerts index: %w", err)
	}
	return &alertRepo{db: db}, nil
}

const alertColumns = `id, tenant_id, reference, variant, min_price, max_price,
	currency, destination, active, triggered_count, last_triggered, created_at`

func scanAlert(rows *sql.Rows) (*domain.AlertSubscription, error) {
	var sub domain.AlertSubscription
	var minPrice, maxPrice sql.NullFloat64
	var lastTriggered sql.NullInt64
	var active int
	var createdAt int64
	err := rows.Scan(
		&sub.ID, &sub.TenantID, &sub.Reference, &sub.Variant, &minPrice, &maxPrice,
		&sub.Currency, &sub.Destination, &active, &sub.TriggeredCount,
		&lastTriggered, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if minPrice.Valid {
		sub.MinPrice = &minPrice.Float64
	}
	if maxPrice.Valid {
		sub.MaxPrice = &maxPrice.Float64
	}
	if lastTriggered.Valid {
		t := time.Unix(lastTriggered.Int64, 0)
		sub.LastTriggered = &t
	}
	sub.Active = active != 0
	sub.CreatedAt = time.Unix(createdAt, 0)
	return &sub, nil
}

func (r *alertRepo) queryAlerts(ctx context.Context, query string, args ...any) ([]*domain.AlertSubscription, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*domain.AlertSubscription
	for rows.Next() {
		sub, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// ListActive returns the tenant's active subscriptions.
func (r *alertRepo) ListActive(ctx context.Context, tenantID string) ([]*domain.AlertSubscription, error) {
	return r.queryAlerts(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE tenant_id = ? AND active = 1`, tenantID)
}

// List returns all subscriptions for the visible tenant set.
func (r *alertRepo) List(ctx context.Context, visibleTenants []string) ([]*domain.AlertSubscription, error) {
	if len(visibleTenants) == 0 {
		return nil, nil
	}
	ph, args := placeholders(visibleTenants)
	return r.queryAlerts(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE tenant_id IN (`+ph+`) ORDER BY created_at DESC`,
		args...)
}

// Get fetches one subscription owned by the tenant.
func (r *alertRepo) Get(ctx context.Context, tenantID, id string) (*domain.AlertSubscription, error) {
	subs, err := r.queryAlerts(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	return subs[0], nil
}

// Save upserts a subscription.
func (r *alertRepo) Save(ctx context.Context, sub *domain.AlertSubscription) error {
	var minPrice, maxPrice any
	if sub.MinPrice != nil {
		minPrice = *sub.MinPrice
	}
	if sub.MaxPrice != nil {
		maxPrice = *sub.MaxPrice
	}
	var lastTriggered any
	if sub.LastTriggered != nil {
		lastTriggered = sub.LastTriggered.Unix()
	}
	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sub.ID, sub.TenantID, sub.Reference, sub.Variant, minPrice, maxPrice,
		sub.Currency, sub.Destination, boolInt(sub.Active), sub.TriggeredCount,
		lastTriggered, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// Delete removes a subscription owned by the tenant.
func (r *alertRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM alerts WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// MarkTriggered increments the trigger counter and records the time.
func (r *alertRepo) MarkTriggered(ctx context.Context, tenantID, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET triggered_count = triggered_count + 1, last_triggered = ?
		WHERE tenant_id = ? AND id = ?
	`, at.Unix(), tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to mark subscription triggered: %w", err)
	}
	return nil
}
