package usecase

import (
	"testing"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

func newTestClassifier() *Classifier {
	return NewClassifier(
		[]string{"joined using this group's invite link", "this message was deleted"},
		[]string{"looking for", "wtb", "iso"},
	)
}

func groupMsg(text string) *domain.CanonicalMessage {
	return &domain.CanonicalMessage{
		ID:        "m1",
		ChannelID: "chan-1@g.gateway.net",
		Text:      text,
		IsGroup:   true,
		MediaKind: domain.MediaText,
	}
}

func TestClassify_OfferByDefault(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{ID: "t1", Active: true}

	class, reason := c.Classify(tenant, groupMsg("126234 blue $10500"))
	if class != domain.ClassOffer {
		t.Errorf("Expected offer, got %s (%s)", class, reason)
	}
}

func TestClassify_RequestCue(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{ID: "t1", Active: true}

	for _, text := range []string{
		"looking for 126610LN",
		"WTB 5711A any condition",
		"ISO 15202ST",
	} {
		class, _ := c.Classify(tenant, groupMsg(text))
		if class != domain.ClassRequest {
			t.Errorf("Expected request for %q, got %s", text, class)
		}
	}
}

func TestClassify_CueMatchesWholeWordsOnly(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{ID: "t1", Active: true}

	// "iso" inside "comparison" must not classify as a request.
	class, _ := c.Classify(tenant, groupMsg("126234 comparison shot $10500"))
	if class != domain.ClassOffer {
		t.Errorf("Expected offer for embedded cue text, got %s", class)
	}
}

func TestClassify_DirectMessageIgnored(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{ID: "t1", Active: true}

	msg := groupMsg("126234 blue")
	msg.IsGroup = false
	class, reason := c.Classify(tenant, msg)
	if class != domain.ClassIgnored || reason != domain.ReasonNotGroup {
		t.Errorf("Expected ignored/not_group, got %s/%s", class, reason)
	}
}

func TestClassify_StatusBroadcastIgnored(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{ID: "t1", Active: true}

	msg := groupMsg("126234 blue")
	msg.IsStatusBroadcast = true
	class, reason := c.Classify(tenant, msg)
	if class != domain.ClassIgnored || reason != domain.ReasonStatusBroadcast {
		t.Errorf("Expected ignored/status_broadcast, got %s/%s", class, reason)
	}
}

func TestClassify_NoiseIgnored(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{ID: "t1", Active: true}

	class, reason := c.Classify(tenant, groupMsg("John joined using this group's invite link"))
	if class != domain.ClassIgnored || reason != domain.ReasonNoise {
		t.Errorf("Expected ignored/noise, got %s/%s", class, reason)
	}
}

func TestClassify_NonTextIgnored(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{ID: "t1", Active: true}

	msg := groupMsg("")
	class, reason := c.Classify(tenant, msg)
	if class != domain.ClassIgnored || reason != domain.ReasonNonText {
		t.Errorf("Expected ignored/non_text for empty text, got %s/%s", class, reason)
	}

	img := groupMsg("a caption")
	img.MediaKind = domain.MediaImage
	class, reason = c.Classify(tenant, img)
	if class != domain.ClassIgnored || reason != domain.ReasonNonText {
		t.Errorf("Expected ignored/non_text for image, got %s/%s", class, reason)
	}
}

func TestClassify_WhitelistByChannelID(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{
		ID:               "t1",
		Active:           true,
		ChannelWhitelist: []string{"allowed@g.gateway.net"},
	}

	allowed := groupMsg("126234 blue")
	allowed.ChannelID = "allowed@g.gateway.net"
	if class, _ := c.Classify(tenant, allowed); class != domain.ClassOffer {
		t.Errorf("Expected whitelisted channel to pass, got %s", class)
	}

	blocked := groupMsg("126234 blue")
	blocked.ChannelID = "other@g.gateway.net"
	class, reason := c.Classify(tenant, blocked)
	if class != domain.ClassIgnored || reason != domain.ReasonNotWhitelisted {
		t.Errorf("Expected ignored/not_whitelisted, got %s/%s", class, reason)
	}
}

func TestClassify_EmptyWhitelistAllowsAll(t *testing.T) {
	c := newTestClassifier()
	tenant := &domain.Tenant{ID: "t1", Active: true}

	msg := groupMsg("126234 blue")
	msg.ChannelID = "anything@g.gateway.net"
	if class, _ := c.Classify(tenant, msg); class != domain.ClassOffer {
		t.Errorf("Expected empty whitelist to allow all channels, got %s", class)
	}
}
