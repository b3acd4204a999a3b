package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewatch/trade-bridge/internal/biz/domain"
)

func testCreds() domain.GatewayCredentials {
	return domain.GatewayCredentials{InstanceID: "inst-1", APIToken: "secret"}
}

func TestClient_ListChannels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instances/inst-1/channels", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"channels": []map[string]any{
				{"id": "123@g.gateway.net", "name": "HK Dealers", "participants": 45},
				{"id": "456@g.gateway.net", "name": "SG Traders", "participants": 12},
			},
		})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	channels, err := client.ListChannels(context.Background(), testCreds())
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "123@g.gateway.net", channels[0].ID)
	assert.Equal(t, "HK Dealers", channels[0].Name)
	assert.Equal(t, 45, channels[0].ParticipantCount)
}

func TestClient_ListChannelsBlockedInstance(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>Access denied</body></html>"))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	_, err := client.ListChannels(context.Background(), testCreds())
	require.Error(t, err)

	var upstream *domain.UpstreamError
	assert.True(t, errors.As(err, &upstream))
}

func TestClient_ListChannelsErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	_, err := client.ListChannels(context.Background(), testCreds())
	require.Error(t, err)

	var upstream *domain.UpstreamError
	assert.True(t, errors.As(err, &upstream))
}

func TestClient_SendText(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/instances/inst-1/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	err := client.SendText(context.Background(), testCreds(), "+85291234567", "Offer matched: 126234")
	require.NoError(t, err)
	assert.Equal(t, "+85291234567", got["to"])
	assert.Equal(t, "Offer matched: 126234", got["text"])
}

func TestClient_SendTextRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 2*time.Second)
	err := client.SendText(context.Background(), testCreds(), "+852", "x")
	require.Error(t, err)
}
