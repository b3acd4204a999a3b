package usecase

import (
	"testing"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/cache"
)

func newTestDeduper() *Deduper {
	return NewDeduper(cache.New[struct{}](1000, time.Hour))
}

func testMsg(id, channel, sender, text string) *domain.CanonicalMessage {
	return &domain.CanonicalMessage{
		ID:            id,
		ChannelID:     channel,
		SenderAddress: sender,
		Text:          text,
	}
}

func TestDeduper_RedeliveryRejected(t *testing.T) {
	d := newTestDeduper()
	msg := testMsg("m1", "chan@g.gateway.net", "a@s.gateway.net", "126234 blue")

	if !d.Check("t1", msg) {
		t.Fatal("Expected first delivery to be fresh")
	}
	if d.Check("t1", msg) {
		t.Error("Expected identical redelivery to be a duplicate")
	}
}

func TestDeduper_RepostWithFreshIDRejected(t *testing.T) {
	d := newTestDeduper()

	if !d.Check("t1", testMsg("m1", "c", "s", "126234 blue")) {
		t.Fatal("Expected first posting to be fresh")
	}
	// Same human content reposted under a new gateway message id.
	if d.Check("t1", testMsg("m2", "c", "s", "126234 blue")) {
		t.Error("Expected content repost to be a duplicate")
	}
}

func TestDeduper_ReusedIDWithNewContentIsFresh(t *testing.T) {
	d := newTestDeduper()

	if !d.Check("t1", testMsg("m1", "c", "s", "126234 blue")) {
		t.Fatal("Expected first message to be fresh")
	}
	// Gateways have been seen reusing ids; distinct content must pass.
	if !d.Check("t1", testMsg("m1", "c", "s", "5711A green")) {
		t.Error("Expected distinct content under a reused id to be fresh")
	}
}

func TestDeduper_TextNormalization(t *testing.T) {
	d := newTestDeduper()

	d.Check("t1", testMsg("m1", "c", "s", "126234  Blue   $10500"))
	if d.Check("t1", testMsg("m2", "c", "s", "126234 blue $10500")) {
		t.Error("Expected whitespace and case variations to hash identically")
	}
}

func TestDeduper_TenantIsolation(t *testing.T) {
	d := newTestDeduper()
	msg := testMsg("m1", "c", "s", "126234 blue")

	if !d.Check("t1", msg) {
		t.Fatal("Expected fresh for tenant t1")
	}
	if !d.Check("t2", msg) {
		t.Error("Expected the same message to be fresh for a different tenant")
	}
}

func TestDeduper_DifferentSenderOrChannelIsFresh(t *testing.T) {
	d := newTestDeduper()

	d.Check("t1", testMsg("m1", "c1", "s1", "126234 blue"))
	if !d.Check("t1", testMsg("m2", "c2", "s1", "126234 blue")) {
		t.Error("Expected same text in another channel to be fresh")
	}
	if !d.Check("t1", testMsg("m3", "c1", "s2", "126234 blue")) {
		t.Error("Expected same text from another sender to be fresh")
	}
}

func TestDeduper_WindowExpiry(t *testing.T) {
	seen := cache.New[struct{}](1000, 10*time.Millisecond)
	d := NewDeduper(seen)
	msg := testMsg("m1", "c", "s", "126234 blue")

	d.Check("t1", msg)
	time.Sleep(20 * time.Millisecond)
	if !d.Check("t1", msg) {
		t.Error("Expected message to be fresh again after the retention window")
	}
}
