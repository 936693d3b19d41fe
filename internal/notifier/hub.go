package notifier

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeWait = 5 * time.Second

// Hub streams events as JSON text frames to every connected websocket client.
type Hub struct {
	clients map[*websocket.Conn]bool
	lock    sync.Mutex
	log     zerolog.Logger
	srv     *http.Server
}

// NewHub creates a hub with no clients. Call Start to listen.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		log:     log.With().Str("component", "hub").Logger(),
	}
}

// Name identifies the hub among reporters.
func (h *Hub) Name() string { return "hub" }

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	h.lock.Lock()
	h.clients[conn] = true
	h.lock.Unlock()
	h.log.Info().Str("remote", r.RemoteAddr).Msg("ws client connected")

	// Drain reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Publish broadcasts ev. Clients that fail to receive it are disconnected.
func (h *Hub) Publish(_ context.Context, ev Event) error {
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// Broadcast writes msg to all clients.
func (h *Hub) Broadcast(msg []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
}

// Start serves /ws on addr in the background.
func (h *Hub) Start(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	h.srv = &http.Server{Addr: addr, Handler: mux}
	go func() {
		h.log.Info().Str("addr", addr).Msg("telemetry hub listening")
		if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error().Err(err).Msg("telemetry hub stopped")
		}
	}()
}

// Shutdown stops the listener and disconnects all clients.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.lock.Lock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
	h.lock.Unlock()
	if h.srv == nil {
		return nil
	}
	return h.srv.Shutdown(ctx)
}
