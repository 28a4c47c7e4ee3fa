package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-token-sentinel/internal/domain"
)

func httptestHandler(hub *Hub) http.Handler {
	return http.HandlerFunc(hub.HandleWebSocket)
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
}

func TestHub_BroadcastsVerdicts(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(httptestHandler(hub))
	defer server.Close()

	conn := dial(t, server)
	waitForClients(t, hub, 1)

	hub.Publish(&domain.Verdict{
		Mint:           "So11111111111111111111111111111111111111112",
		Score:          85,
		Tier:           domain.TierSafe,
		Recommendation: domain.RecommendSafe,
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, "verdict", event.Type)
	require.NotNil(t, event.Verdict)
	assert.Equal(t, 85, event.Verdict.Score)
	assert.NotZero(t, event.Timestamp)
}

func TestHub_MintFilter(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(httptestHandler(hub))
	defer server.Close()

	conn := dial(t, server)
	waitForClients(t, hub, 1)

	// Subscribe to one specific mint.
	err := conn.WriteJSON(subscription{Mints: []string{"WantedMint"}})
	require.NoError(t, err)

	// Give the readPump time to apply the subscription.
	time.Sleep(100 * time.Millisecond)

	hub.Publish(&domain.Verdict{Mint: "OtherMint", Score: 10})
	hub.Publish(&domain.Verdict{Mint: "WantedMint", Score: 90})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(message, &event))
	assert.Equal(t, "WantedMint", event.Verdict.Mint, "filtered event should be skipped")
}

func TestHub_PublishNilIsNoop(t *testing.T) {
	hub := NewHub(nil)

	// Must not block or panic even with no Run loop.
	hub.Publish(nil)
	assert.Equal(t, int64(0), hub.TotalEvents())
}

func TestHub_RejectsUpgradeAfterShutdown(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(httptestHandler(hub))
	defer server.Close()

	cancel()

	// Wait for the run loop to close the done channel.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-hub.done:
		default:
			time.Sleep(10 * time.Millisecond)
			continue
		}
		break
	}

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	assert.Error(t, err)
	if resp != nil {
		assert.Equal(t, 503, resp.StatusCode)
	}
}
