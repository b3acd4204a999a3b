package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/cache"
)

// Deduper rejects redelivered gateway events and repeated human postings
// inside a bounded retention window. False negatives after eviction are
// acceptable; false positives are guarded against by always hashing the
// content, so a reused message id with different text is still fresh.
type Deduper struct {
	seen *cache.Cache[struct{}]
}

// NewDeduper creates a deduper backed by the given bounded TTL cache.
func NewDeduper(seen *cache.Cache[struct{}]) *Deduper {
	return &Deduper{seen: seen}
}

// Check records the message and reports whether it is the first occurrence
// of its key within the retention window. The underlying add-if-absent is
// atomic, so concurrent redeliveries see exactly one true.
//
// A gateway redelivery carries the same id and the same content, and a
// human repost carries a fresh id but the same content, so the content key
// catches both. The message id deliberately does not shortcut the check:
// gateways have been seen reusing ids across distinct messages.
func (d *Deduper) Check(tenantID string, msg *domain.CanonicalMessage) bool {
	return d.seen.Add(contentKey(tenantID, msg), struct{}{})
}

// contentKey fingerprints channel, sender and normalized text, partitioned
// by tenant. Reposted duplicates with fresh message ids hash identically.
func contentKey(tenantID string, msg *domain.CanonicalMessage) string {
	h := sha256.New()
	h.Write([]byte(msg.ChannelID))
	h.Write([]byte{0})
	h.Write([]byte(msg.SenderAddress))
	h.Write([]byte{0})
	h.Write([]byte(normalizeText(msg.Text)))
	return tenantID + "|c|" + hex.EncodeToString(h.Sum(nil))[:16]
}

// normalizeText lowercases and collapses whitespace so trivially reposted
// duplicates hash identically.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
