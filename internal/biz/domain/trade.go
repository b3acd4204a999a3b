package domain

import "time"

// TradeKind distinguishes the two record variants extracted from messages.
type TradeKind string

const (
	TradeListing     TradeKind = "listing"     // offer to sell
	TradeRequirement TradeKind = "requirement" // want to buy
)

// Condition is the controlled vocabulary for item condition.
type Condition string

const (
	ConditionNew    Condition = "new"
	ConditionUnworn Condition = "unworn"
	ConditionUsed   Condition = "used"
	ConditionMint   Condition = "mint"
)

// TradeRecord is a structured trade extracted from a single message line.
// Immutable once created, except for a one-time sender-phone and
// channel-name backfill when the identity resolvers learn more later.
type TradeRecord struct {
	ID       string
	TenantID string
	Kind     TradeKind

	Reference string
	Brand     string
	Family    string
	Year      int
	Variant   string
	Condition Condition

	// Price is absent when zero-valued together with Currency == "".
	Price    float64
	Currency string

	MonthCode string

	SenderDisplay string
	SenderPhone   string // optional, "" means unresolved

	ChannelID   string
	ChannelName string

	RawLine   string
	MessageID string

	// Inventory flags dealer stock records, which stay private to the
	// owning tenant even inside a shared workspace.
	Inventory bool

	CreatedAt time.Time
}

// HasPrice reports whether the record carries an extracted price.
func (r *TradeRecord) HasPrice() bool {
	return r.Currency != "" || r.Price > 0
}

// ParsedLine is the parser's output for one extractable message line,
// before tenant and sender context is attached.
type ParsedLine struct {
	Reference string
	Brand     string
	Family    string
	Year      int
	Variant   string
	Condition Condition
	Price     float64
	Currency  string
	MonthCode string
	RawLine   string
}
