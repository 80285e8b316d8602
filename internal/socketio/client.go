package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Pseudo events synthesized by the client so connection changes can be
// handled like any other inbound event.
const (
	EventConnectError = "connect_error"
	EventDisconnect   = "disconnect"
)

const (
	DefaultPath  = "/ws/socket.io"
	writeTimeout = 10 * time.Second
	// Used until the handshake announces the server's heartbeat settings.
	handshakeTimeout = 20 * time.Second
)

var (
	ErrNotConnected = errors.New("socketio: not connected")
	ErrClosed       = errors.New("socketio: client closed")
)

// Inbound is one event received on a namespace. Payload is the first event
// argument, verbatim.
type Inbound struct {
	Namespace string
	Event     string
	Payload   json.RawMessage
}

type Config struct {
	// URL is the server base, e.g. ws://localhost:8000 or https://host.
	URL string
	// Path is the Engine.IO mount point; DefaultPath when empty.
	Path       string
	Namespaces []string

	Reconnect   bool
	BackoffBase time.Duration
	BackoffMax  time.Duration

	Dialer *websocket.Dialer
	Header http.Header
	Logger *slog.Logger
	// Buffer is the capacity of the Events channel.
	Buffer int
}

type Client struct {
	cfg      Config
	endpoint string
	logger   *slog.Logger
	events   chan Inbound

	mu     sync.Mutex
	conn   *websocket.Conn
	joined map[string]bool

	closed    chan struct{}
	closeOnce sync.Once
}

func NewClient(cfg Config) (*Client, error) {
	endpoint, err := Endpoint(cfg.URL, cfg.Path)
	if err != nil {
		return nil, err
	}
	if len(cfg.Namespaces) == 0 {
		cfg.Namespaces = []string{"/"}
	}
	for i, ns := range cfg.Namespaces {
		cfg.Namespaces[i] = normalizeNamespace(ns)
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		}
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		cfg:      cfg,
		endpoint: endpoint,
		logger:   logger.With("component", "socketio"),
		events:   make(chan Inbound, cfg.Buffer),
		joined:   map[string]bool{},
		closed:   make(chan struct{}),
	}, nil
}

// Endpoint builds the websocket URL for a server base and mount path.
func Endpoint(base, path string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", errors.New("socketio: empty server URL")
	}
	if !strings.Contains(base, "://") {
		base = "ws://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("socketio: parse server URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("socketio: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("socketio: missing host in %q", base)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	u.Path = strings.TrimRight(strings.TrimRight(u.Path, "/")+"/"+strings.Trim(path, "/"), "/") + "/"
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	return u.String(), nil
}

// Events delivers inbound events in arrival order. It is closed when Run
// returns.
func (c *Client) Events() <-chan Inbound { return c.events }

// Connected reports whether the namespace has been joined on the current
// connection.
func (c *Client) Connected(namespace string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.joined[normalizeNamespace(namespace)]
}

// Run connects and reads until ctx is done, Close is called, or (without
// Reconnect) the first connection ends.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.events)
	bo := newBackoff(c.cfg.BackoffBase, c.cfg.BackoffMax)
	for {
		joined, err := c.session(ctx)
		if ctx.Err() != nil || c.isClosed() {
			return nil
		}
		if !c.cfg.Reconnect {
			return err
		}
		if joined {
			bo.Reset()
		}
		delay := bo.Next()
		c.logger.Info("reconnecting", "in", delay, "err", err)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-c.closed:
			t.Stop()
			return nil
		case <-t.C:
		}
	}
}

// Emit sends an event with one payload argument. Delivery is not
// acknowledged.
func (c *Client) Emit(namespace, event string, payload any) error {
	ns := normalizeNamespace(namespace)
	p, err := EventPacket(ns, event, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isClosed() {
		return ErrClosed
	}
	if c.conn == nil || !c.joined[ns] {
		return ErrNotConnected
	}
	c.logger.Debug("emit", "namespace", ns, "event", event)
	return c.writeLocked(p.Encode())
}

// Close disconnects and stops Run.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.conn != nil {
			_ = c.writeLocked(string(engineClose))
			_ = c.conn.Close()
		}
	})
	return nil
}

func (c *Client) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Client) writeLocked(text string) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// session runs one connection to completion. It reports whether any
// namespace was joined.
func (c *Client) session(ctx context.Context) (bool, error) {
	conn, _, err := c.cfg.Dialer.DialContext(ctx, c.endpoint, c.cfg.Header)
	if err != nil {
		c.publishAll(ctx, EventConnectError, StatusEnvelope("error", "Connection failed: "+err.Error()))
		return false, fmt.Errorf("dial %s: %w", c.endpoint, err)
	}
	defer conn.Close()

	hs, err := readHandshake(conn)
	if err != nil {
		c.publishAll(ctx, EventConnectError, StatusEnvelope("error", "Handshake failed: "+err.Error()))
		return false, err
	}
	c.logger.Info("connected", "sid", hs.SID, "ping_interval_ms", hs.PingInterval)

	c.mu.Lock()
	c.conn = conn
	c.joined = map[string]bool{}
	for _, ns := range c.cfg.Namespaces {
		if err := c.writeLocked(Packet{Type: PacketConnect, Namespace: ns, AckID: -1}.Encode()); err != nil {
			c.conn = nil
			c.mu.Unlock()
			return false, fmt.Errorf("join %s: %w", ns, err)
		}
	}
	c.mu.Unlock()

	// Unblock the read loop when the caller gives up.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-c.closed:
		case <-done:
			return
		}
		_ = conn.Close()
	}()

	joinedAny := false
	readErr := c.readLoop(ctx, conn, hs, &joinedAny)

	c.mu.Lock()
	lost := make([]string, 0, len(c.joined))
	for _, ns := range c.cfg.Namespaces {
		if c.joined[ns] {
			lost = append(lost, ns)
		}
	}
	c.conn = nil
	c.joined = map[string]bool{}
	c.mu.Unlock()

	if ctx.Err() == nil && !c.isClosed() {
		reason := "transport closed"
		if readErr != nil {
			reason = readErr.Error()
		}
		for _, ns := range lost {
			c.publish(ctx, Inbound{Namespace: ns, Event: EventDisconnect, Payload: StatusEnvelope("warning", "Disconnected: "+reason)})
		}
	}
	return joinedAny, readErr
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, hs handshake, joinedAny *bool) error {
	deadline := time.Duration(hs.PingInterval+hs.PingTimeout) * time.Millisecond
	if deadline <= 0 {
		deadline = handshakeTimeout
	}
	for {
		_ = conn.SetReadDeadline(time.Now().Add(deadline))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		text := string(data)
		if text == "" {
			continue
		}
		switch text[0] {
		case enginePing:
			c.mu.Lock()
			if c.conn != nil {
				err = c.writeLocked(string(enginePong) + text[1:])
			}
			c.mu.Unlock()
			if err != nil {
				return fmt.Errorf("pong: %w", err)
			}
		case engineClose:
			return errors.New("server closed the session")
		case engineMessage:
			p, err := DecodePacket(text[1:])
			if err != nil {
				c.logger.Warn("dropping packet", "err", err)
				continue
			}
			c.handlePacket(ctx, p, joinedAny)
		default:
			c.logger.Debug("ignoring engine packet", "type", string(text[0]))
		}
	}
}

func (c *Client) handlePacket(ctx context.Context, p Packet, joinedAny *bool) {
	switch p.Type {
	case PacketConnect:
		c.mu.Lock()
		c.joined[p.Namespace] = true
		c.mu.Unlock()
		*joinedAny = true
		c.logger.Info("namespace joined", "namespace", p.Namespace)
	case PacketConnectError:
		msg := connectErrorMessage(p.Data)
		c.logger.Warn("namespace refused", "namespace", p.Namespace, "reason", msg)
		c.publish(ctx, Inbound{Namespace: p.Namespace, Event: EventConnectError, Payload: StatusEnvelope("error", msg)})
	case PacketDisconnect:
		c.mu.Lock()
		delete(c.joined, p.Namespace)
		c.mu.Unlock()
		c.publish(ctx, Inbound{Namespace: p.Namespace, Event: EventDisconnect, Payload: StatusEnvelope("warning", "Disconnected by server")})
	case PacketEvent:
		name, arg, err := EventArgs(p.Data)
		if err != nil {
			c.logger.Warn("dropping event", "namespace", p.Namespace, "err", err)
			return
		}
		c.publish(ctx, Inbound{Namespace: p.Namespace, Event: name, Payload: arg})
	default:
		c.logger.Debug("ignoring packet", "type", p.Type.String(), "namespace", p.Namespace)
	}
}

func (c *Client) publishAll(ctx context.Context, event string, payload json.RawMessage) {
	for _, ns := range c.cfg.Namespaces {
		c.publish(ctx, Inbound{Namespace: ns, Event: event, Payload: payload})
	}
}

func (c *Client) publish(ctx context.Context, in Inbound) {
	select {
	case c.events <- in:
	case <-ctx.Done():
	case <-c.closed:
	}
}

func readHandshake(conn *websocket.Conn) (handshake, error) {
	var hs handshake
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return hs, fmt.Errorf("read open packet: %w", err)
	}
	if len(data) == 0 || data[0] != engineOpen {
		return hs, fmt.Errorf("%w: expected open packet, got %q", ErrMalformedPacket, data)
	}
	if err := json.Unmarshal(data[1:], &hs); err != nil {
		return hs, fmt.Errorf("%w: open payload: %v", ErrMalformedPacket, err)
	}
	return hs, nil
}

// StatusEnvelope encodes a payload in the server's {status, message} shape.
func StatusEnvelope(status, message string) json.RawMessage {
	b, _ := json.Marshal(struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}{Status: status, Message: message})
	return b
}
