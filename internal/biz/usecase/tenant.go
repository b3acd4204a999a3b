package usecase

import (
	"context"
	"fmt"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// TenantResolver maps an opaque gateway instance identifier to its owning
// tenant. Resolution failure is a hard authorization failure, never a soft
// skip: an unmapped instance must not default to "no tenant" or
// "all tenants".
type TenantResolver struct {
	tenantRepo repo.TenantRepo
}

// NewTenantResolver creates a new tenant resolver.
func NewTenantResolver(tenantRepo repo.TenantRepo) *TenantResolver {
	return &TenantResolver{tenantRepo: tenantRepo}
}

// Resolve returns the active tenant owning instanceID.
func (r *TenantResolver) Resolve(ctx context.Context, instanceID string) (*domain.Tenant, error) {
	if instanceID == "" {
		return nil, domain.ErrTenantNotAuthorized
	}
	tenant, err := r.tenantRepo.GetByInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("lookup tenant for instance %s: %w", instanceID, err)
	}
	if tenant == nil || !tenant.Active {
		return nil, domain.ErrTenantNotAuthorized
	}
	return tenant, nil
}
