package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"PowerCast/internal/domain/models"
	drepo "PowerCast/internal/domain/repository"
	"PowerCast/pkg/logger"

	"github.com/gorilla/websocket"
)

var (
	ErrHubClosed = errors.New("websocket hub closed")
	ErrHubFull   = errors.New("maximum clients reached")
)

// Options tunes the hub.
type Options struct {
	MaxClients   int
	SendBuffer   int // events queued per client before frames are dropped
	PingInterval time.Duration
	WriteWait    time.Duration
	CheckOrigin  func(r *http.Request) bool
}

func (o *Options) withDefaults() {
	if o.MaxClients <= 0 {
		o.MaxClients = 100
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.CheckOrigin == nil {
		o.CheckOrigin = func(*http.Request) bool { return true }
	}
}

// Hub pushes events to browser clients. It is an EventSink: Publish never
// blocks on a slow client, whose events are dropped instead.
type Hub struct {
	opts     Options
	upgrader websocket.Upgrader
	log      *logger.Logger

	mu       sync.RWMutex
	clients  map[*client]struct{}
	pending  int // slots reserved by upgrades in progress
	closed   bool
	snapshot func() []models.Event

	dropped atomic.Int64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) close() { c.once.Do(func() { close(c.done) }) }

func NewHub(opts Options, log *logger.Logger) *Hub {
	opts.withDefaults()
	return &Hub{
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
		log:     log.With("ws_hub"),
		clients: make(map[*client]struct{}),
	}
}

// SetSnapshot sets the events sent to a client right after it connects.
func (h *Hub) SetSnapshot(fn func() []models.Event) {
	h.mu.Lock()
	h.snapshot = fn
	h.mu.Unlock()
}

// Publish implements EventSink.
func (h *Hub) Publish(_ context.Context, ev models.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	for c := range h.clients {
		h.enqueue(c, b)
	}
	return nil
}

func (h *Hub) enqueue(c *client, b []byte) {
	select {
	case c.send <- b:
	default:
		h.dropped.Add(1)
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.reserve(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.release()
		h.log.Warn("websocket upgrade failed", logger.Error(err))
		return
	}
	c := &client{
		conn: conn,
		send: make(chan []byte, h.opts.SendBuffer),
		done: make(chan struct{}),
	}
	if !h.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(h.opts.WriteWait))
		_ = conn.Close()
		return
	}
	h.log.Debug("websocket client connected", logger.String("remote", r.RemoteAddr), logger.Int("clients", h.Clients()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(c)
	}()
	h.readLoop(c)

	c.close()
	wg.Wait()
	h.unregister(c)
	_ = conn.Close()
	h.log.Debug("websocket client disconnected", logger.String("remote", r.RemoteAddr))
}

// reserve claims a client slot before the upgrade; registered clients and
// reservations together never exceed MaxClients.
func (h *Hub) reserve() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	if len(h.clients)+h.pending >= h.opts.MaxClients {
		return ErrHubFull
	}
	h.pending++
	return nil
}

func (h *Hub) release() {
	h.mu.Lock()
	h.pending--
	h.mu.Unlock()
}

// register turns a reservation into a client and queues the current snapshot
// under the hub lock, so no published event can be queued ahead of it.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending--
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	if h.snapshot == nil {
		return true
	}
	for _, ev := range h.snapshot() {
		b, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		h.enqueue(c, b)
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// readLoop discards client messages; it only detects disconnects and pongs.
func (h *Hub) readLoop(c *client) {
	readWait := 2 * h.opts.PingInterval
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read failed", logger.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.opts.WriteWait))
			return
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.close()
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.opts.WriteWait)); err != nil {
				c.close()
				_ = c.conn.Close()
				return
			}
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many events were dropped for slow clients.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
		// unblocks the reader once the close frame is sent
		_ = c.conn.SetReadDeadline(time.Now().Add(h.opts.WriteWait))
	}
}

var _ drepo.EventSink = (*Hub)(nil)
