package domain

import "time"

// SenderIdentity is the resolved identity of a message sender. Cached per
// tenant; created lazily, updated when a mapping is learned, never
// implicitly deleted.
type SenderIdentity struct {
	// Phone is "" when the sender is pseudonymous and no mapping exists.
	// An unresolved phone is explicitly absent, never a guessed value.
	Phone       string
	DisplayName string
	Kind        AddressKind
}

// Resolved reports whether a real phone number is known for the sender.
func (s *SenderIdentity) Resolved() bool {
	return s.Phone != ""
}

// Contact is an entry in a tenant's uploaded contact directory.
type Contact struct {
	ID       string
	TenantID string
	Name     string
	Phone    string

	// ChannelID records which channel the contact was last associated
	// with; used to prefer same-channel candidates during fuzzy lookup.
	ChannelID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Channel is a known multi-party messaging group, upserted on every
// successful name resolution.
type Channel struct {
	TenantID         string
	ID               string
	Name             string
	ParticipantCount int
	LastSeen         time.Time
}

// PlaceholderChannelName derives a display name from an opaque channel id
// when the gateway cannot be asked. A later successful fetch silently
// replaces it.
func PlaceholderChannelName(channelID string) string {
	const max = 12
	name := channelID
	if i := len(name); i > max {
		name = name[:max]
	}
	return name + "…"
}

// DirectoryEntry is one element of a "list changed" sync event from the
// gateway's contact/channel directory.
type DirectoryEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"` // "contact" or "channel"
}
