package domain

import "time"

// Tenant represents an isolated customer workspace.
// Every persisted record carries exactly one owning tenant id.
type Tenant struct {
	ID string

	// Admin marks a workspace administrator. Admins additionally see
	// tenants whose OwnerID points at them.
	Admin bool

	// OwnerID links a shared member to its workspace owner. Empty for
	// standalone tenants and owners themselves.
	OwnerID string

	// ChannelWhitelist holds opaque channel ids allowed for ingestion.
	// Empty means allow-all.
	ChannelWhitelist []string

	// Gateway credentials for this tenant's channel-gateway instance.
	InstanceID string
	APIToken   string

	Active    bool
	CreatedAt time.Time
}

// WhitelistAllows reports whether the given channel id passes the tenant's
// whitelist. The check is strictly by opaque channel id, never by the
// mutable display name.
func (t *Tenant) WhitelistAllows(channelID string) bool {
	if len(t.ChannelWhitelist) == 0 {
		return true
	}
	for _, id := range t.ChannelWhitelist {
		if id == channelID {
			return true
		}
	}
	return false
}

// GatewayCredentials identify a tenant's gateway instance for API calls.
type GatewayCredentials struct {
	InstanceID string
	APIToken   string
}

// Credentials returns the tenant's gateway credentials.
func (t *Tenant) Credentials() GatewayCredentials {
	return GatewayCredentials{InstanceID: t.InstanceID, APIToken: t.APIToken}
}
