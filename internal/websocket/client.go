package websocket

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// MessageStationReady is the first frame a screen receives after joining.
const MessageStationReady = "station_ready"

// Conn is the part of a websocket connection a kitchen screen needs.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one kitchen screen connection.
type Client struct {
	Hub       *Hub
	Conn      Conn
	StationID string

	// Send is closed by the hub when the client leaves or the hub stops.
	Send chan []byte
}

func NewClient(hub *Hub, conn Conn, stationID string) *Client {
	return &Client{Hub: hub, Conn: conn, StationID: stationID, Send: make(chan []byte, sendBuffer)}
}

// readPump only watches for the screen going away; screens never send data.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Leave(c)
		_ = c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, _, err := c.Conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			c.Hub.logger.Warn("Client", "Kitchen screen closed unexpectedly", map[string]interface{}{"station": c.StationID, "error": err.Error()})
		}
		return
	}
}

// writePump greets the screen with its station, then forwards hub messages
// until Send closes, pinging while idle.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	if err := c.write(websocket.TextMessage, c.greeting()); err != nil {
		return
	}

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Warn("Client", "Kitchen screen write failed", map[string]interface{}{"station": c.StationID, "error": err.Error()})
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}

func (c *Client) greeting() []byte {
	raw, _ := json.Marshal(Message{Type: MessageStationReady, Data: map[string]string{"station": c.StationID}})
	return raw
}
