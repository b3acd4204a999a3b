package repo

import (
	"context"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// ContactRepo is the tenant contact directory interface.
type ContactRepo interface {
	// ListByTenant returns all contacts uploaded by the tenant.
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Contact, error)

	// Save upserts a contact.
	Save(ctx context.Context, c *domain.Contact) error

	// SetChannel backfills the channel a contact was observed in.
	SetChannel(ctx context.Context, tenantID, contactID, channelID string) error
}

// ChannelRepo is the persisted channel directory interface.
type ChannelRepo interface {
	// Get fetches a channel by id, nil when unknown.
	Get(ctx context.Context, tenantID, channelID string) (*domain.Channel, error)

	// Upsert stores or refreshes a channel row.
	Upsert(ctx context.Context, ch *domain.Channel) error

	// ListByTenant returns channels for the visible tenant set.
	ListByTenant(ctx context.Context, visibleTenants []string) ([]*domain.Channel, error)
}
