package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"phone-order-be/internal/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, rdb *redis.Client) (*Hub, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(rdb, logger.NewNopLogger())
	h.Start(ctx)
	t.Cleanup(func() {
		cancel()
		h.Wait()
	})
	return h, cancel
}

func join(t *testing.T, h *Hub, station string) *Client {
	t.Helper()
	c := &Client{Hub: h, StationID: station, Send: make(chan []byte, 4)}
	require.True(t, h.Join(c))
	require.Eventually(t, func() bool { return h.Clients() > 0 }, time.Second, 5*time.Millisecond)
	return c
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var m Message
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestBroadcastLocal(t *testing.T) {
	h, _ := startHub(t, nil)
	c := join(t, h, "pass")

	require.NoError(t, h.Broadcast(context.Background(), "order_placed", map[string]string{"order_id": "o1"}))

	m := receive(t, c)
	assert.Equal(t, "order_placed", m.Type)
	assert.Equal(t, map[string]interface{}{"order_id": "o1"}, m.Data)
}

func TestBroadcastAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	newClient := func() *redis.Client {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		return rdb
	}

	a, _ := startHub(t, newClient())
	b, _ := startHub(t, newClient())
	onA := join(t, a, "grill")
	onB := join(t, b, "pass")

	require.NoError(t, a.Broadcast(context.Background(), "order_placed", "o2"))

	assert.Equal(t, "o2", receive(t, onA).Data)
	assert.Equal(t, "o2", receive(t, onB).Data)

	// the origin instance does not get its own message twice
	select {
	case <-onA.Send:
		t.Fatal("duplicate delivery on origin instance")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStoppedHubRefusesClients(t *testing.T) {
	h, cancel := startHub(t, nil)
	c := join(t, h, "pass")

	cancel()
	h.Wait()

	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, h.Join(&Client{Hub: h, Send: make(chan []byte, 1)}))
	h.Leave(c)
}
