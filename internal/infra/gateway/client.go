// Package gateway implements the HTTP client for the chat gateway's
// management API: channel listing and outbound text delivery.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
	"github.com/tradewatch/trade-bridge/internal/biz/repo"
)

// Client is the gateway API client. Calls carry short timeouts: nothing in
// the ingestion path may block on the gateway for long.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type listChannelsResponse struct {
	Channels []repo.ChannelInfo `json:"channels"`
}

// ListChannels fetches the channel directory for a tenant instance.
// Blocked instances answer with an HTML error page, so a non-JSON body is
// reported as an upstream error for the caller to degrade on.
func (c *Client) ListChannels(ctx context.Context, creds domain.GatewayCredentials) ([]repo.ChannelInfo, error) {
	url := fmt.Sprintf("%s/instances/%s/channels", c.baseURL, creds.InstanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "list channels", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.UpstreamError{Op: "list channels", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Op:  "list channels",
			Err: fmt.Errorf("gateway returned status %d", resp.StatusCode),
		}
	}

	var parsed listChannelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &domain.UpstreamError{
			Op:  "list channels",
			Err: fmt.Errorf("non-JSON response: %w", err),
		}
	}
	return parsed.Channels, nil
}

// SendText delivers a text message to a destination address.
func (c *Client) SendText(ctx context.Context, creds domain.GatewayCredentials, destination, text string) error {
	payload, err := json.Marshal(map[string]string{
		"to":   destination,
		"text": text,
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/instances/%s/messages", c.baseURL, creds.InstanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.UpstreamError{Op: "send text", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &domain.UpstreamError{
			Op:  "send text",
			Err: fmt.Errorf("gateway returned status %d", resp.StatusCode),
		}
	}
	return nil
}
