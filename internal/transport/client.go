package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/five82/togetter/internal/state"
)

// ErrChannelUnavailable reports that a message could not be handed to the
// host because no connection is open or the write failed.
var ErrChannelUnavailable = errors.New("channel unavailable")

const (
	// DefaultAddr is where the companion host listens unless configured.
	DefaultAddr = "127.0.0.1:7488"
	// SyncPath is the websocket endpoint on the host.
	SyncPath = "/sync"

	baseBackoff  = time.Second
	maxBackoff   = 30 * time.Second
	writeTimeout = 5 * time.Second
	dialTimeout  = 5 * time.Second
)

// Client is the device end of the message channel. One websocket binary frame
// carries one message.
type Client struct {
	url    *url.URL
	dialer *websocket.Dialer
	log    *slog.Logger

	// OnConnect, when set, runs after each successful dial. The device uses
	// it to request a fresh snapshot.
	OnConnect func()
	// Link, when set, records connection state for display.
	Link *state.Store

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewClient builds a Client for the host at addr. addr may be host:port or a
// full ws/http URL.
func NewClient(addr string, logger *slog.Logger) (*Client, error) {
	u, err := parseSyncURL(addr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:    u,
		dialer: &websocket.Dialer{HandshakeTimeout: dialTimeout},
		log:    logger.With("component", "transport", "url", u.String()),
	}, nil
}

// URL returns the websocket endpoint the client dials.
func (c *Client) URL() string { return c.url.String() }

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Run dials the host and delivers every inbound binary frame until ctx is
// cancelled. Lost connections are redialed with exponential backoff.
func (c *Client) Run(ctx context.Context, deliver func([]byte)) error {
	failures := 0
	for {
		conn, _, err := c.dialer.DialContext(ctx, c.url.String(), nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := calculateBackoff(failures, baseBackoff)
			failures++
			c.Link.Failed(err)
			c.log.Warn("dial failed", "error", err, "retry_in", wait)
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}

		failures = 0
		c.log.Info("connected")
		c.setConn(conn)
		c.Link.Connected()
		if c.OnConnect != nil {
			c.OnConnect()
		}

		err = c.readLoop(ctx, conn, deliver)
		c.setConn(nil)
		c.Link.Disconnected(err)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("connection lost", "error", err)
		if !sleep(ctx, baseBackoff) {
			return ctx.Err()
		}
	}
}

// Send writes msg as a single binary frame.
func (c *Client) Send(msg []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("send: %w", ErrChannelUnavailable)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
		return fmt.Errorf("send: %w: %v", ErrChannelUnavailable, err)
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, deliver func([]byte)) error {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		mt, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		if mt != websocket.BinaryMessage {
			c.log.Debug("ignoring non-binary frame", "type", mt)
			continue
		}
		c.Link.Received()
		deliver(payload)
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func parseSyncURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = DefaultAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "ws://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse host address %q: %w", addr, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("host address %q: unsupported scheme %q", addr, u.Scheme)
	}
	u.Path = SyncPath
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
