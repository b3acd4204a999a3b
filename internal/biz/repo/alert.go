package repo

import (
	"context"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// AlertRepo is the alert subscription repository interface.
type AlertRepo interface {
	// ListActive returns the tenant's active subscriptions.
	ListActive(ctx context.Context, tenantID string) ([]*domain.AlertSubscription, error)

	// List returns all subscriptions for the visible tenant set.
	List(ctx context.Context, visibleTenants []string) ([]*domain.AlertSubscription, error)

	// Get fetches one subscription, nil when absent.
	Get(ctx context.Context, tenantID, id string) (*domain.AlertSubscription, error)

	// Save upserts a subscription.
	Save(ctx context.Context, sub *domain.AlertSubscription) error

	// Delete removes a subscription owned by the tenant.
	Delete(ctx context.Context, tenantID, id string) error

	// MarkTriggered increments the trigger counter and records the time.
	MarkTriggered(ctx context.Context, tenantID, id string, at time.Time) error
}
