package handlers

import (
	"net/http"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rfox/draftroom/internal/api/middleware"
	"github.com/rfox/draftroom/internal/service"
	"github.com/rfox/draftroom/internal/websocket"
	"github.com/rs/zerolog/log"
)

type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	upgrader    ws.Upgrader
}

func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

// Handle upgrades the connection and starts the client pumps. A JWT in the
// `token` query parameter identifies a manager; captains and spectators
// connect anonymously and present their league token in JOIN_LEAGUE.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := h.authService.ValidateToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		userIDStr, ok := (*claims)["sub"].(string)
		if !ok {
			http.Error(w, "Invalid token claims", http.StatusUnauthorized)
			return
		}
		id, err := uuid.Parse(userIDStr)
		if err != nil {
			http.Error(w, "Invalid user ID", http.StatusUnauthorized)
			return
		}
		userID = &id
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, userID, middleware.ClientIP(r))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
