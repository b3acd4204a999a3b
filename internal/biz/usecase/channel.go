package usecase

import (
	"context"
	"log"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
	"github.com/tradewatch/trade-bridge/internal/cache"
)

// ChannelResolver resolves opaque channel ids to display names through
// three tiers: per-tenant cache, persisted channel directory, then an
// on-demand gateway fetch that repopulates the first two. A blocked or
// non-JSON gateway response degrades to a placeholder name; the pipeline
// never fails on name resolution.
type ChannelResolver struct {
	cache       *cache.Cache[string]
	channelRepo repo.ChannelRepo
	gateway     repo.GatewayClient
}

// NewChannelResolver creates a channel resolver.
func NewChannelResolver(
	nameCache *cache.Cache[string],
	channelRepo repo.ChannelRepo,
	gateway repo.GatewayClient,
) *ChannelResolver {
	return &ChannelResolver{
		cache:       nameCache,
		channelRepo: channelRepo,
		gateway:     gateway,
	}
}

func channelKey(tenantID, channelID string) string {
	return tenantID + "|" + channelID
}

// Resolve returns the display name for a channel. First hit wins across
// the tiers; tier 3 upserts both the cache and the directory on success.
// A later successful fetch silently improves historical display through
// the directory upsert rather than a retroactive correction pass.
func (r *ChannelResolver) Resolve(ctx context.Context, tenant *domain.Tenant, channelID string) string {
	key := channelKey(tenant.ID, channelID)
	if name, ok := r.cache.Get(key); ok {
		return name
	}

	if ch, err := r.channelRepo.Get(ctx, tenant.ID, channelID); err == nil && ch != nil && ch.Name != "" {
		r.cache.Set(key, ch.Name)
		return ch.Name
	}

	if name := r.fetchFromGateway(ctx, tenant, channelID); name != "" {
		return name
	}
	return domain.PlaceholderChannelName(channelID)
}

// fetchFromGateway performs the tier-3 listing call. The whole channel
// list is cached and persisted, not just the channel asked for, since a
// listing is one request either way.
func (r *ChannelResolver) fetchFromGateway(ctx context.Context, tenant *domain.Tenant, channelID string) string {
	channels, err := r.gateway.ListChannels(ctx, tenant.Credentials())
	if err != nil {
		log.Printf("[ChannelResolver] gateway listing failed for tenant %s: %v", tenant.ID, err)
		return ""
	}

	resolved := ""
	now := time.Now()
	for _, info := range channels {
		if info.Name == "" {
			continue
		}
		r.cache.Set(channelKey(tenant.ID, info.ID), info.Name)
		if err := r.channelRepo.Upsert(ctx, &domain.Channel{
			TenantID:         tenant.ID,
			ID:               info.ID,
			Name:             info.Name,
			ParticipantCount: info.ParticipantCount,
			LastSeen:         now,
		}); err != nil {
			log.Printf("[ChannelResolver] channel upsert failed for tenant %s: %v", tenant.ID, err)
		}
		if info.ID == channelID {
			resolved = info.Name
		}
	}
	return resolved
}
