package testutil

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// WSClient is a test WebSocket client
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	errors   chan error
	done     chan struct{}
	mu       sync.Mutex
}

// NewWSClient creates a new WebSocket test client using userAgent as its device
func NewWSClient(t *testing.T, url, userAgent string) *WSClient {
	t.Helper()

	dialer := *gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	header := http.Header{}
	if userAgent != "" {
		header.Set("User-Agent", userAgent)
	}

	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// readPump reads messages from the WebSocket connection
func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			case c.errors <- err:
			}
			return
		}

		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.errors <- err
			continue
		}

		select {
		case c.messages <- &msg:
		case <-c.done:
			return
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

// ExpectSessionEvent waits for a SESSION_EVENT message and decodes it
func (c *WSClient) ExpectSessionEvent(timeout time.Duration) *domain.SessionEvent {
	c.t.Helper()

	select {
	case msg := <-c.messages:
		if msg == nil {
			c.t.Fatalf("connection closed while waiting for session event")
		}
		if msg.Type != websocket.MessageTypeSessionEvent {
			c.t.Fatalf("expected %s, got %s", websocket.MessageTypeSessionEvent, msg.Type)
		}
		var ev domain.SessionEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			c.t.Fatalf("failed to decode session event: %v", err)
		}
		return &ev
	case err := <-c.errors:
		c.t.Fatalf("error while waiting for session event: %v", err)
	case <-time.After(timeout):
		c.t.Fatalf("timeout waiting for session event")
	}
	return nil
}

// ExpectClosed waits for the server to close the connection
func (c *WSClient) ExpectClosed(timeout time.Duration) {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg := <-c.messages:
			if msg == nil {
				return
			}
		case <-c.errors:
			return
		case <-deadline:
			c.t.Fatalf("timeout waiting for connection close")
		}
	}
}
