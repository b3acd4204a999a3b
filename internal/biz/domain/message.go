package domain

import "strings"

// EnvelopeKind identifies which wire shape an inbound event arrived in.
type EnvelopeKind string

const (
	EnvelopeFlat    EnvelopeKind = "flat"    // flat event envelope
	EnvelopeNested  EnvelopeKind = "nested"  // nested-data envelope
	EnvelopeLegacy  EnvelopeKind = "legacy"  // legacy message envelope
	EnvelopeUnknown EnvelopeKind = "unknown" // unrecognized shape, ignorable
)

// MediaKind is the normalized media type of an inbound message.
type MediaKind string

const (
	MediaText  MediaKind = "text"
	MediaImage MediaKind = "image"
	MediaOther MediaKind = "other"
)

// CanonicalMessage is the single normalized shape all wire envelopes are
// converted into. It lives for one request and is never persisted verbatim;
// only records derived from it are stored.
type CanonicalMessage struct {
	ID            string
	ChannelID     string
	SenderAddress string

	// SenderDisplay is the push name the gateway reports for the sender,
	// "" when the envelope does not carry one.
	SenderDisplay string

	Text string

	// TimestampSeconds is the protocol timestamp. Gateways misreport it
	// often enough that TimestampReliable tracks whether it came from the
	// wire or was substituted locally.
	TimestampSeconds  int64
	TimestampReliable bool

	IsGroup           bool
	IsStatusBroadcast bool
	MediaKind         MediaKind
}

// Address suffixes used by the gateway. Direct addresses embed a phone
// number in the local part; pseudonymous addresses carry an opaque
// per-channel participant id.
const (
	directAddressSuffix    = "@s.gateway.net"
	channelAddressSuffix   = "@g.gateway.net"
	statusBroadcastAddress = "status@broadcast"
)

// AddressKind classifies a sender address.
type AddressKind string

const (
	AddressDirect       AddressKind = "phone"
	AddressPseudonymous AddressKind = "pseudonymous"
)

// SenderAddressKind classifies a raw sender address. Anything that is not a
// direct phone-bearing address is treated as pseudonymous.
func SenderAddressKind(addr string) AddressKind {
	if strings.HasSuffix(addr, directAddressSuffix) {
		return AddressDirect
	}
	return AddressPseudonymous
}

// PhoneFromDirectAddress extracts the normalized international phone number
// from a directly-addressed sender. Returns "" when the address is not a
// direct address; it never fabricates a number.
func PhoneFromDirectAddress(addr string) string {
	local, ok := strings.CutSuffix(addr, directAddressSuffix)
	if !ok {
		return ""
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, local)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// IsChannelAddress reports whether the id refers to a multi-party channel.
func IsChannelAddress(id string) bool {
	return strings.HasSuffix(id, channelAddressSuffix)
}

// IsStatusBroadcastAddress reports whether the id is the gateway's status
// broadcast pseudo-channel.
func IsStatusBroadcastAddress(id string) bool {
	return id == statusBroadcastAddress
}
