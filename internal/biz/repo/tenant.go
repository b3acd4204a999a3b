package repo

import (
	"context"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// TenantRepo is the tenant repository interface.
type TenantRepo interface {
	// GetByInstance looks up the tenant owning a gateway instance id.
	// Returns nil when no mapping exists.
	GetByInstance(ctx context.Context, instanceID string) (*domain.Tenant, error)

	// GetByID fetches a tenant by id. Returns nil when absent.
	GetByID(ctx context.Context, tenantID string) (*domain.Tenant, error)

	// ListByOwner lists tenants linked to a workspace owner.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Tenant, error)

	// Save upserts a tenant row.
	Save(ctx context.Context, t *domain.Tenant) error
}
