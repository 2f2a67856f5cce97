package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/isdelr/bookfinder-be/internal/auth"
	ws "github.com/isdelr/bookfinder-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades authenticated requests to the catalog feed.
type WebSocketHandler struct {
	hub      *ws.Hub
	now      func() time.Time
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler. allowedOrigins lists the
// browser origins allowed to connect; "*" allows any. now is the clock the
// connection's token expiry is measured against.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, now func() time.Time) *WebSocketHandler {
	if now == nil {
		now = time.Now
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &WebSocketHandler{
		hub: hub,
		now: now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Serve handles the WebSocket connection request. The route is guarded, so
// claims are always present here.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	var (
		username  string
		expiresAt time.Time
	)
	if claims != nil {
		username = claims.Username
		expiresAt = claims.ExpiresAt
	}
	client := ws.NewClient(h.hub, conn, ws.TopicCatalog, username, expiresAt, h.now)
	if !h.hub.Register(client) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		client.WritePump()
	}()
	go func() {
		defer wg.Done()
		client.ReadPump(func(c *ws.Client, message []byte) {
			log.Debug().Str("username", c.Username).Int("bytes", len(message)).Msg("Ignoring inbound websocket message")
		})
	}()

	// Cleanup on disconnect.
	go func() {
		wg.Wait()
		h.hub.Unregister(client)
	}()
}
