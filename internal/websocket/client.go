// Package websocket is the push half of the connection to the room server.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"room-client/internal/models"
	"room-client/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second

	// the server's application level keepalive frame
	keepalive = "-"
)

var (
	ErrClosed    = errors.New("websocket: connection closed")
	ErrQueueFull = errors.New("websocket: send queue full")
)

// EventHandler receives every decoded push event, on the read goroutine.
type EventHandler func(models.Event)

type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	handle EventHandler

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to url and authenticates by sending token as the first
// frame.
func Dial(ctx context.Context, url, token string, handle EventHandler) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(token)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send token: %w", err)
	}
	return NewClient(conn, handle), nil
}

func NewClient(conn *websocket.Conn, handle EventHandler) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan []byte, 256),
		handle: handle,
		done:   make(chan struct{}),
	}
}

// Run pumps the connection until it drops or ctx ends.
func (c *Client) Run(ctx context.Context) error {
	go c.WritePump()
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()
	err := c.ReadPump()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Client) ReadPump() error {
	defer c.Close()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("WebSocket error: %v", err)
				return err
			}
			return nil
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if string(message) == keepalive {
			continue
		}

		var ev models.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			logger.Warn("Dropping malformed push frame: %v", err)
			continue
		}
		c.handle(ev)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Error("Write error: %v", err)
				c.Close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Send queues a command for the write pump.
func (c *Client) Send(command models.Command, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(models.Event{Command: command, Data: raw})
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrQueueFull
	}
}

func (c *Client) SendChat(text string) error {
	return c.Send(models.CommandSendChat, text)
}

// Done is closed once the connection is shut down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}
