package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// tenantRepo implements the tenant repository on sqlite.
type tenantRepo struct {
	db *sql.DB
}

// NewTenantRepo creates a new tenant repository.
func NewTenantRepo(db *sql.DB) (repo.TenantRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tenants (
			id TEXT PRIMARY KEY,
			admin INTEGER NOT NULL DEFAULT 0,
			owner_id TEXT NOT NULL DEFAULT '',
			whitelist TEXT NOT NULL DEFAULT '[]',
			instance_id TEXT NOT NULL UNIQUE,
			api_token TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenants table: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_tenants_owner ON tenants(owner_id)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenants index: %w", err)
	}
	return &tenantRepo{db: db}, nil
}

const tenantColumns = `id, admin, owner_id, whitelist, instance_id, api_token, active, created_at`

func scanTenant(row interface{ Scan(...any) error }) (*domain.Tenant, error) {
	var t domain.Tenant
	var admin, active int
	var whitelist string
	var createdAt int64
	err := row.Scan(&t.ID, &admin, &t.OwnerID, &whitelist, &t.InstanceID, &t.APIToken, &active, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Admin = admin != 0
	t.Active = active != 0
	t.CreatedAt = time.Unix(createdAt, 0)
	if err := json.Unmarshal([]byte(whitelist), &t.ChannelWhitelist); err != nil {
		return nil, fmt.Errorf("failed to decode whitelist: %w", err)
	}
	return &t, nil
}

// GetByInstance looks up the tenant owning a gateway instance id.
func (r *tenantRepo) GetByInstance(ctx context.Context, instanceID string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE instance_id = ?`, instanceID)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant: %w", err)
	}
	return t, nil
}

// GetByID fetches a tenant by id.
func (r *tenantRepo) GetByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, tenantID)
	t, err := scanTenant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tenant: %w", err)
	}
	return t, nil
}

// ListByOwner lists tenants linked to a workspace owner.
func (r *tenantRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var out []*domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save upserts a tenant row.
func (r *tenantRepo) Save(ctx context.Context, t *domain.Tenant) error {
	whitelist, err := json.Marshal(t.ChannelWhitelist)
	if err != nil {
		return fmt.Errorf("failed to encode whitelist: %w", err)
	}
	if t.ChannelWhitelist == nil {
		whitelist = []byte("[]")
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tenants (`+tenantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, boolInt(t.Admin), t.OwnerID, string(whitelist),
		t.InstanceID, t.APIToken, boolInt(t.Active), createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save tenant: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
