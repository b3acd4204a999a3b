package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
	"github.com/tradewatch/trade-bridge/internal/cache"
)

// NameMatcher is the pluggable fuzzy-match strategy used to resolve a
// pseudonymous display name against a tenant's contact directory. The
// exact rule is a policy choice, so it is injected rather than fixed.
type NameMatcher interface {
	// Match returns the indices of candidates whose name matches query,
	// best first. An empty result means no match.
	Match(query string, candidates []*domain.Contact) []int
}

// TokenPrefixMatcher is the default strategy: a candidate matches when the
// query equals the candidate name, or every query token is a prefix of
// some candidate name token, case-folded. "John" matches "John Smith";
// "Jon" does not.
type TokenPrefixMatcher struct{}

func (TokenPrefixMatcher) Match(query string, candidates []*domain.Contact) []int {
	qTokens := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(qTokens) == 0 {
		return nil
	}
	var out []int
	for i, c := range candidates {
		if matchesTokens(qTokens, strings.Fields(strings.ToLower(c.Name))) {
			out = append(out, i)
		}
	}
	return out
}

func matchesTokens(query, name []string) bool {
	for _, q := range query {
		found := false
		for _, n := range name {
			if strings.HasPrefix(n, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SenderResolver resolves raw sender addresses to contact identities.
// Directly-addressed senders reveal their phone by construction; for
// pseudonymous senders the per-tenant cache is consulted first, then the
// tenant's contact directory via the fuzzy matcher. It never fabricates a
// phone number: an unresolved identity carries an explicitly empty phone.
type SenderResolver struct {
	cache       *cache.Cache[domain.SenderIdentity]
	contactRepo repo.ContactRepo
	tradeRepo   repo.TradeRepo
	matcher     NameMatcher
}

// NewSenderResolver creates a sender resolver. A nil matcher falls back to
// the default token-prefix strategy.
func NewSenderResolver(
	idCache *cache.Cache[domain.SenderIdentity],
	contactRepo repo.ContactRepo,
	tradeRepo repo.TradeRepo,
	matcher NameMatcher,
) *SenderResolver {
	if matcher == nil {
		matcher = TokenPrefixMatcher{}
	}
	return &SenderResolver{
		cache:       idCache,
		contactRepo: contactRepo,
		tradeRepo:   tradeRepo,
		matcher:     matcher,
	}
}

// identityKey partitions cache entries strictly by tenant. A cross-tenant
// read or write through this cache is a critical defect, so the tenant id
// is baked into every key.
func identityKey(tenantID, rawAddress string) string {
	return tenantID + "|" + rawAddress
}

// Resolve returns the sender identity for a raw address, with the given
// display name as reported by the gateway. channelID carries the channel
// the message arrived in, used to prefer same-channel directory matches.
func (r *SenderResolver) Resolve(ctx context.Context, tenantID, rawAddress, displayName, channelID string) (domain.SenderIdentity, error) {
	if domain.SenderAddressKind(rawAddress) == domain.AddressDirect {
		return domain.SenderIdentity{
			Phone:       domain.PhoneFromDirectAddress(rawAddress),
			DisplayName: displayName,
			Kind:        domain.AddressDirect,
		}, nil
	}

	key := identityKey(tenantID, rawAddress)
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	identity := domain.SenderIdentity{
		DisplayName: displayName,
		Kind:        domain.AddressPseudonymous,
	}

	contact, err := r.lookupContact(ctx, tenantID, displayName, channelID)
	if err != nil {
		// Directory trouble is transient; the pseudonymous identity is
		// still a valid outcome.
		log.Printf("[SenderResolver] directory lookup failed for tenant %s: %v", tenantID, err)
		return identity, nil
	}
	if contact == nil {
		// Negative results are not cached: the directory may learn the
		// name at any time.
		return identity, nil
	}

	identity.Phone = contact.Phone
	if contact.Name != "" {
		identity.DisplayName = contact.Name
	}
	r.cache.Set(key, identity)
	r.backfill(ctx, tenantID, displayName, contact, channelID)
	return identity, nil
}

// lookupContact fuzzy-matches the display name against the tenant's
// directory, preferring a contact previously associated with the same
// channel.
func (r *SenderResolver) lookupContact(ctx context.Context, tenantID, displayName, channelID string) (*domain.Contact, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, nil
	}
	contacts, err := r.contactRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	matches := r.matcher.Match(displayName, contacts)
	if len(matches) == 0 {
		return nil, nil
	}
	for _, i := range matches {
		if contacts[i].ChannelID == channelID && channelID != "" {
			return contacts[i], nil
		}
	}
	return contacts[matches[0]], nil
}

// backfill propagates a newly learned mapping: prior trade records that
// share the display name but lack a phone get one, and the contact's
// channel attribution is recorded. Both writes are best-effort.
func (r *SenderResolver) backfill(ctx context.Context, tenantID, displayName string, contact *domain.Contact, channelID string) {
	if contact.Phone != "" {
		if n, err := r.tradeRepo.BackfillSenderPhone(ctx, tenantID, displayName, contact.Phone); err != nil {
			log.Printf("[SenderResolver] phone backfill failed for tenant %s: %v", tenantID, err)
		} else if n > 0 {
			log.Printf("[SenderResolver] backfilled phone on %d records for tenant %s", n, tenantID)
		}
	}
	if channelID != "" && contact.ChannelID != channelID {
		if err := r.contactRepo.SetChannel(ctx, tenantID, contact.ID, channelID); err != nil {
			log.Printf("[SenderResolver] channel attribution failed for tenant %s: %v", tenantID, err)
		}
	}
}
