package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
	"github.com/tradewatch/trade-bridge/internal/cache"
)

// DirectorySync applies "list changed" events from the gateway's
// contact/channel directory. It only updates caches and performs
// backfills; it never creates trade data.
type DirectorySync struct {
	contactRepo repo.ContactRepo
	channelRepo repo.ChannelRepo
	tradeRepo   repo.TradeRepo
	nameCache   *cache.Cache[string]
}

// NewDirectorySync creates a directory sync applier. nameCache is the
// channel-name cache shared with the channel resolver.
func NewDirectorySync(
	contactRepo repo.ContactRepo,
	channelRepo repo.ChannelRepo,
	tradeRepo repo.TradeRepo,
	nameCache *cache.Cache[string],
) *DirectorySync {
	return &DirectorySync{
		contactRepo: contactRepo,
		channelRepo: channelRepo,
		tradeRepo:   tradeRepo,
		nameCache:   nameCache,
	}
}

// Apply upserts the given directory entries for one tenant. Contact
// entries carry the address as id; their phone number is derived from it
// when the address is a direct one. Channel entries refresh the persisted
// directory, the name cache and the historical channel-name display.
func (s *DirectorySync) Apply(ctx context.Context, tenantID string, entries []domain.DirectoryEntry) error {
	now := time.Now()
	for _, e := range entries {
		switch e.Kind {
		case "channel":
			if err := s.channelRepo.Upsert(ctx, &domain.Channel{
				TenantID: tenantID,
				ID:       e.ID,
				Name:     e.Name,
				LastSeen: now,
			}); err != nil {
				return fmt.Errorf("upsert channel %s: %w", e.ID, err)
			}
			s.nameCache.Set(channelKey(tenantID, e.ID), e.Name)
			if n, err := s.tradeRepo.BackfillChannelName(ctx, tenantID, e.ID, e.Name); err != nil {
				log.Printf("[DirectorySync] channel-name backfill failed for tenant %s: %v", tenantID, err)
			} else if n > 0 {
				log.Printf("[DirectorySync] refreshed channel name on %d records for tenant %s", n, tenantID)
			}
		case "contact":
			if err := s.contactRepo.Save(ctx, &domain.Contact{
				ID:        e.ID,
				TenantID:  tenantID,
				Name:      e.Name,
				Phone:     domain.PhoneFromDirectAddress(e.ID),
				CreatedAt: now,
				UpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("upsert contact %s: %w", e.ID, err)
			}
		default:
			log.Printf("[DirectorySync] skipping entry %s with unknown kind %q", e.ID, e.Kind)
		}
	}
	return nil
}
