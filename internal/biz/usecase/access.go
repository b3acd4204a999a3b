package usecase

import (
	"context"
	"fmt"

	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// AccessControl computes the visible-tenant set for a requesting identity.
// Every downstream read must intersect with this set; an empty set is a
// filter that matches nothing, never an unfiltered query.
type AccessControl struct {
	tenantRepo repo.TenantRepo
}

// NewAccessControl creates an access control layer.
func NewAccessControl(tenantRepo repo.TenantRepo) *AccessControl {
	return &AccessControl{tenantRepo: tenantRepo}
}

// VisibleTenants returns the tenant ids the requester may read: always
// itself; for admins, additionally the tenants linked to them through the
// workspace-owner pointer; for linked members, the owner and all siblings
// under the same owner. An unknown requester sees nothing.
func (a *AccessControl) VisibleTenants(ctx context.Context, requesterID string) ([]string, error) {
	requester, err := a.tenantRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load requester %s: %w", requesterID, err)
	}
	if requester == nil {
		return nil, nil
	}

	visible := map[string]bool{requester.ID: true}

	if requester.Admin {
		linked, err := a.tenantRepo.ListByOwner(ctx, requester.ID)
		if err != nil {
			return nil, fmt.Errorf("list linked tenants: %w", err)
		}
		for _, t := range linked {
			visible[t.ID] = true
		}
	}

	if requester.OwnerID != "" {
		visible[requester.OwnerID] = true
		siblings, err := a.tenantRepo.ListByOwner(ctx, requester.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("list siblings: %w", err)
		}
		for _, t := range siblings {
			visible[t.ID] = true
		}
	}

	out := make([]string, 0, len(visible))
	for id := range visible {
		out = append(out, id)
	}
	return out, nil
}

// TradeFilterFor builds the mandatory trade query filter for a requester.
// Inventory-flagged records stay scoped to the requester even inside a
// shared workspace; the repository enforces that with RequesterID.
func (a *AccessControl) TradeFilterFor(ctx context.Context, requesterID string) (repo.TradeFilter, error) {
	visible, err := a.VisibleTenants(ctx, requesterID)
	if err != nil {
		return repo.TradeFilter{}, err
	}
	return repo.TradeFilter{
		VisibleTenants: visible,
		RequesterID:    requesterID,
	}, nil
}

// CanRead reports whether the requester may read rows owned by tenantID.
func (a *AccessControl) CanRead(ctx context.Context, requesterID, tenantID string) (bool, error) {
	visible, err := a.VisibleTenants(ctx, requesterID)
	if err != nil {
		return false, err
	}
	for _, id := range visible {
		if id == tenantID {
			return true, nil
		}
	}
	return false, nil
}
