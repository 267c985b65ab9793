package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"phone-order-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries kitchen messages between instances.
const ClusterChannel = "kitchen_events"

// Message is what kitchen screens receive.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterEnvelope struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

// Hub fans kitchen messages out to every connected screen, on this instance
// directly and on the others through Redis.
type Hub struct {
	instanceID string

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger

	done chan struct{}
	wg   sync.WaitGroup
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		instanceID: uuid.NewString(),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		logger:     log,
		done:       make(chan struct{}),
	}
}

// Start runs the hub until ctx ends. The Redis subscription is confirmed
// before Start returns.
func (h *Hub) Start(ctx context.Context) {
	var pubsub *redis.PubSub
	if h.rdb != nil {
		pubsub = h.rdb.Subscribe(ctx, ClusterChannel)
		if _, err := pubsub.Receive(ctx); err != nil {
			h.logger.Warn("Hub", "Redis subscribe failed, kitchen events stay local", map[string]interface{}{"error": err.Error()})
			_ = pubsub.Close()
			pubsub = nil
		}
	}

	h.wg.Add(1)
	go h.run(ctx)
	if pubsub != nil {
		h.wg.Add(1)
		go h.relay(ctx, pubsub)
	}
}

// Wait blocks until the hub goroutines have exited.
func (h *Hub) Wait() {
	h.wg.Wait()
}

// Clients returns the number of connected screens on this instance.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) run(ctx context.Context) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Kitchen screen registered", map[string]interface{}{"station": client.StationID})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Hub", "Kitchen screen unregistered", map[string]interface{}{"station": client.StationID})
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) relay(ctx context.Context, pubsub *redis.PubSub) {
	defer h.wg.Done()
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env clusterEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("Hub", "Dropping malformed cluster message", map[string]interface{}{"error": err.Error()})
				continue
			}
			if env.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(env.Message)
		}
	}
}

// Join registers a client unless the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters a client. Safe after the hub has stopped.
func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast sends a message to every kitchen screen of the cluster.
func (h *Hub) Broadcast(ctx context.Context, msgType string, data interface{}) error {
	raw, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal kitchen message: %w", err)
	}
	h.deliverLocal(raw)

	if h.rdb == nil {
		return nil
	}
	env, err := json.Marshal(clusterEnvelope{Origin: h.instanceID, Message: raw})
	if err != nil {
		return fmt.Errorf("marshal cluster envelope: %w", err)
	}
	if err := h.rdb.Publish(ctx, ClusterChannel, env).Err(); err != nil {
		return fmt.Errorf("publish kitchen message: %w", err)
	}
	return nil
}

func (h *Hub) deliverLocal(raw []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.Send <- raw:
		default:
			h.logger.Warn("Hub", "Kitchen screen buffer full, dropping message", map[string]interface{}{"station": c.StationID})
		}
	}
}
