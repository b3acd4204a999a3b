package repo

import (
	"context"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

// ChannelInfo is a channel as reported by the gateway's listing API.
type ChannelInfo struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ParticipantCount int    `json:"participants"`
}

// GatewayClient is the outbound interface to the chat gateway.
// Both calls are bounded by short timeouts and must be treated as
// best-effort by callers.
type GatewayClient interface {
	// ListChannels fetches the channel directory for a tenant instance.
	ListChannels(ctx context.Context, creds domain.GatewayCredentials) ([]ChannelInfo, error)

	// SendText delivers a text message to a destination address.
	SendText(ctx context.Context, creds domain.GatewayCredentials, destination, text string) error
}

// Notifier dispatches alert notifications. Treated as an opaque
// collaborator; retries are its own policy, independent of ingestion.
type Notifier interface {
	Send(ctx context.Context, destination, text string) error
}
