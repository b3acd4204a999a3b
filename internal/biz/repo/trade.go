package repo

import (
	"context"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// TradeFilter narrows trade listing queries. VisibleTenants is mandatory:
// an empty set must match nothing, never everything.
type TradeFilter struct {
	VisibleTenants []string

	// RequesterID scopes inventory-flagged records, which are visible
	// only to their owning tenant even inside a shared workspace.
	RequesterID string

	Reference string
	Kind      domain.TradeKind
	ChannelID string
	Limit     int
}

// TradeRepo is the trade record repository interface.
type TradeRepo interface {
	// Save persists a new trade record.
	Save(ctx context.Context, rec *domain.TradeRecord) error

	// List returns records matching the filter, newest first.
	List(ctx context.Context, f TradeFilter) ([]*domain.TradeRecord, error)

	// BackfillSenderPhone sets the phone on prior records of the same
	// tenant that share the display name and still lack one. Returns the
	// number of rows updated.
	BackfillSenderPhone(ctx context.Context, tenantID, displayName, phone string) (int64, error)

	// BackfillChannelName fills the channel name on prior records of the
	// same tenant and channel that still carry a placeholder.
	BackfillChannelName(ctx context.Context, tenantID, channelID, name string) (int64, error)
}
