package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	kind int
	data []byte
}

// fakeConn records written frames. ReadMessage blocks until Close.
type fakeConn struct {
	mu       sync.Mutex
	frames   []frame
	writeErr error
	closed   chan struct{}
	once     sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{closed: make(chan struct{})}
}

func (c *fakeConn) SetReadLimit(int64)                {}
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("use of closed connection")
}

func (c *fakeConn) WriteMessage(kind int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, frame{kind: kind, data: append([]byte(nil), data...)})
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) written() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame(nil), c.frames...)
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func TestWritePumpGreetsThenForwards(t *testing.T) {
	h, _ := startHub(t, nil)
	conn := newFakeConn()
	c := NewClient(h, conn, "grill")

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	c.Send <- []byte(`{"type":"order_placed","data":"o1"}`)
	close(c.Send)
	<-done

	frames := conn.written()
	require.Len(t, frames, 3)

	var hello Message
	require.Equal(t, websocket.TextMessage, frames[0].kind)
	require.NoError(t, json.Unmarshal(frames[0].data, &hello))
	assert.Equal(t, MessageStationReady, hello.Type)
	assert.Equal(t, map[string]interface{}{"station": "grill"}, hello.Data)

	assert.Equal(t, frame{kind: websocket.TextMessage, data: []byte(`{"type":"order_placed","data":"o1"}`)}, frames[1])
	assert.Equal(t, websocket.CloseMessage, frames[2].kind)
	assert.True(t, conn.isClosed())
}

func TestWritePumpStopsOnWriteError(t *testing.T) {
	h, _ := startHub(t, nil)
	conn := newFakeConn()
	conn.writeErr = errors.New("broken pipe")
	c := NewClient(h, conn, "pass")

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("write pump kept running after a failed write")
	}
	assert.True(t, conn.isClosed())
}

func TestServeWsLeavesHubWhenScreenGoes(t *testing.T) {
	h, _ := startHub(t, nil)
	conn := newFakeConn()

	served := make(chan struct{})
	go func() {
		ServeWs(h, conn, "pass")
		close(served)
	}()
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(conn.written()) == 1 }, time.Second, 5*time.Millisecond)

	_ = conn.Close()

	select {
	case <-served:
	case <-time.After(2 * time.Second):
		t.Fatal("ServeWs did not return after the connection closed")
	}
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
}
