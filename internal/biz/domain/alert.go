package domain

import (
	"strings"
	"time"
)

// AlertSubscription is a standing alert a tenant keeps against new trade
// records. Mutated by the tenant through CRUD and by the matcher for the
// trigger counters only.
type AlertSubscription struct {
	ID       string
	TenantID string

	Reference string
	Variant   string // optional filter, "" matches any

	// Price bounds are inclusive; a nil bound is open.
	MinPrice *float64
	MaxPrice *float64
	Currency string // optional, "" matches any

	Destination string
	Active      bool

	TriggeredCount int
	LastTriggered  *time.Time
	CreatedAt      time.Time
}

// Matches reports whether a trade record satisfies this subscription.
// Reference comparison is case-insensitive; price bounds are inclusive on
// both sides. Records without a price never match a priced bound.
func (s *AlertSubscription) Matches(rec *TradeRecord) bool {
	if !s.Active {
		return false
	}
	if s.TenantID != rec.TenantID {
		return false
	}
	if !strings.EqualFold(s.Reference, rec.Reference) {
		return false
	}
	if s.Variant != "" && !strings.EqualFold(s.Variant, rec.Variant) {
		return false
	}
	if s.Currency != "" && !strings.EqualFold(s.Currency, rec.Currency) {
		return false
	}
	if s.MinPrice != nil || s.MaxPrice != nil {
		if !rec.HasPrice() {
			return false
		}
		if s.MinPrice != nil && rec.Price < *s.MinPrice {
			return false
		}
		if s.MaxPrice != nil && rec.Price > *s.MaxPrice {
			return false
		}
	}
	return true
}
