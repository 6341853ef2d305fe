package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"memory-match-server/config"
	"memory-match-server/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub tracks the live sessions. Each connection owns one engine; nothing is shared between them.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Provider   game.ImageProvider
	Config     *config.Config

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub(cfg *config.Config, provider game.ImageProvider) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Provider:   provider,
		Config:     cfg,
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled every remaining session is torn down and Run returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, closing sessions", "tag", "hub", "clients", len(h.Clients))
			for client := range h.Clients {
				h.remove(client)
			}
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "hub", "session", client.SessionID, "clients", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				h.remove(client)
				slog.Info("client disconnected", "tag", "hub", "session", client.SessionID, "clients", len(h.Clients))
			}
		}
	}
}

// remove tears the engine down before closing Send, so no listener can write to a closed channel.
func (h *Hub) remove(client *Client) {
	delete(h.Clients, client)
	client.detach()
	if err := client.Engine.Teardown(); err != nil {
		slog.Debug("engine already closed", "tag", "hub", "session", client.SessionID, "err", err)
	}
	close(client.Send)
}

// ServeWS handles WebSocket upgrade requests and starts a session with its own engine.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tag", "hub", "err", err)
		return
	}

	client := &Client{
		Hub:       h,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		SessionID: uuid.NewString(),
		Engine:    game.NewEngine(h.Config, h.Provider),
	}

	// The request context ends when this handler returns, so the engine gets its own.
	go client.Engine.Run(context.Background())

	client.sendJSON(SessionMsg{Type: "session", SessionID: client.SessionID})
	client.attach()

	select {
	case h.Register <- client:
	case <-h.done:
		client.detach()
		client.Engine.Teardown()
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
