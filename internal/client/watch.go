package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tasklist/internal/model"
)

func (c *Client) eventsURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/api/tasks/events"
	default:
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/api/tasks/events"
	}
}

// Watch follows the server's change stream until ctx is canceled,
// reconnecting with backoff. Every reconnect after the first delivers a
// ChangeResync since changes may have been missed while disconnected.
func (c *Client) Watch(ctx context.Context, fn func(model.Change)) error {
	attempt := 0
	connectedBefore := false
	for {
		err := c.watchOnce(ctx, fn, func() {
			attempt = 0
			if connectedBefore {
				fn(model.Change{Op: model.ChangeResync, At: time.Now().UTC()})
			}
			connectedBefore = true
		})
		if ctx.Err() != nil {
			return ctx.Err()
		}
		attempt++
		c.logger.Warn("change stream disconnected", "err", err, "attempt", attempt)
		if err := c.backoff.Sleep(ctx, attempt, c.rng); err != nil {
			return err
		}
	}
}

func (c *Client) watchOnce(ctx context.Context, fn func(model.Change), connected func()) error {
	conn, _, err := c.dialer.DialContext(ctx, c.eventsURL(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	connected()

	// ReadJSON does not watch ctx; closing the connection unblocks it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		var ch model.Change
		if err := conn.ReadJSON(&ch); err != nil {
			return err
		}
		fn(ch)
	}
}
