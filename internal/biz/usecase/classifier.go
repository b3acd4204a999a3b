package usecase

import (
	"strings"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// Classifier filters noise and labels surviving text as offer or request.
// Every step produces a terminal classification; none of them raises.
type Classifier struct {
	noiseLines  []string
	requestCues []string
}

// NewClassifier creates a classifier from the configured lexicons. Both
// lists are matched case-insensitively as substrings.
func NewClassifier(noiseLines, requestCues []string) *Classifier {
	c := &Classifier{
		noiseLines:  make([]string, 0, len(noiseLines)),
		requestCues: make([]string, 0, len(requestCues)),
	}
	for _, n := range noiseLines {
		c.noiseLines = append(c.noiseLines, strings.ToLower(n))
	}
	for _, cue := range requestCues {
		c.requestCues = append(c.requestCues, strings.ToLower(cue))
	}
	return c
}

// Classify runs the filter chain in order: non-group traffic, known-noise
// signatures, the tenant's channel whitelist, then the request-cue check.
// The whitelist is applied against the opaque channel id only, never the
// display name; an empty whitelist allows all channels.
func (c *Classifier) Classify(tenant *domain.Tenant, msg *domain.CanonicalMessage) (domain.Classification, string) {
	if msg.IsStatusBroadcast {
		return domain.ClassIgnored, domain.ReasonStatusBroadcast
	}
	if !msg.IsGroup {
		return domain.ClassIgnored, domain.ReasonNotGroup
	}
	if msg.MediaKind != domain.MediaText || strings.TrimSpace(msg.Text) == "" {
		return domain.ClassIgnored, domain.ReasonNonText
	}
	if c.isNoise(msg.Text) {
		return domain.ClassIgnored, domain.ReasonNoise
	}
	if !tenant.WhitelistAllows(msg.ChannelID) {
		return domain.ClassIgnored, domain.ReasonNotWhitelisted
	}
	if c.isRequest(msg.Text) {
		return domain.ClassRequest, ""
	}
	// Absence of request cues defaults to offer.
	return domain.ClassOffer, ""
}

func (c *Classifier) isNoise(text string) bool {
	lower := strings.ToLower(text)
	for _, sig := range c.noiseLines {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

func (c *Classifier) isRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, cue := range c.requestCues {
		if containsWord(lower, cue) {
			return true
		}
	}
	return false
}

// containsWord matches cue as a whole word so "iso" does not fire inside
// "comparison".
func containsWord(text, cue string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], cue)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(cue)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
