package repo

import (
	"context"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// AuditRepo is the message audit repository interface.
type AuditRepo interface {
	// Save appends an audit row for an inbound event.
	Save(ctx context.Context, a *domain.MessageAudit) error

	// List returns recent audit rows for the visible tenant set.
	List(ctx context.Context, visibleTenants []string, limit int) ([]*domain.MessageAudit, error)
}
