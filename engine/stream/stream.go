package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/world"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// hub implements the Hub interface.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	latest  []byte

	upgrader     websocket.Upgrader
	checkOrigin  func(origin string) bool
	writeTimeout time.Duration

	published uint64
	startTime time.Time

	logger zerolog.Logger
}

// Hub broadcasts world snapshots as JSON text messages to connected websocket clients.
// A newly connected client immediately receives the most recent snapshot.
type Hub interface {
	// ServeHTTP upgrades the request to a websocket and registers the client until it disconnects.
	ServeHTTP(w http.ResponseWriter, r *http.Request)

	// HandleHealth writes a JSON status document with client and publish counts.
	HandleHealth(w http.ResponseWriter, r *http.Request)

	// Handler returns a mux serving the websocket at path and the health document at /health.
	//
	// Parameters:
	//   - path: the websocket endpoint
	//
	// Returns:
	//   - http.Handler: the mux
	Handler(path string) http.Handler

	// Publish encodes the snapshot and writes it to every client.
	// Clients whose write fails are dropped.
	//
	// Parameters:
	//   - snap: the snapshot to broadcast
	//
	// Returns:
	//   - error: error if the snapshot cannot be encoded
	Publish(snap world.Snapshot) error

	// Clients returns the number of connected clients.
	//
	// Returns:
	//   - int: the client count
	Clients() int

	// Close disconnects every client.
	Close()
}

var _ Hub = &hub{}

// NewHub creates a Hub with no clients.
//
// Parameters:
//   - options: functional options to configure the hub
//
// Returns:
//   - Hub: the newly created hub
func NewHub(options ...HubBuilderOption) Hub {
	h := &hub{
		clients:      make(map[*websocket.Conn]struct{}),
		writeTimeout: 200 * time.Millisecond,
		startTime:    time.Now(),
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(h)
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool {
		if h.checkOrigin == nil {
			return true
		}
		return h.checkOrigin(r.Header.Get("Origin"))
	}}
	return h
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	latest := h.latest
	if latest == nil {
		latest, _ = json.Marshal(world.Snapshot{Rigs: []world.RigSnapshot{}})
	}
	h.write(conn, latest)
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info().Str("remote", r.RemoteAddr).Int("clients", count).Msg("stream client connected")

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := map[string]any{
		"clients":   len(h.clients),
		"published": h.published,
		"uptime_s":  time.Since(h.startTime).Seconds(),
	}
	h.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *hub) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(common.Coalesce(path, "/ws"), h)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

func (h *hub) Publish(snap world.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("stream: encode snapshot: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = b
	h.published++
	for conn := range h.clients {
		if !h.write(conn, b) {
			delete(h.clients, conn)
			conn.Close()
		}
	}
	return nil
}

func (h *hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(h.writeTimeout))
		conn.Close()
	}
	clear(h.clients)
}

// write sends one text message. The caller must hold the lock.
func (h *hub) write(conn *websocket.Conn, b []byte) bool {
	conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		h.logger.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("stream write failed")
		return false
	}
	return true
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	count := len(h.clients)
	h.mu.Unlock()
	conn.Close()
	if ok {
		h.logger.Info().Str("remote", conn.RemoteAddr().String()).Int("clients", count).Msg("stream client disconnected")
	}
}
