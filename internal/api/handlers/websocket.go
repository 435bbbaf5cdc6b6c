package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/dragomirurdov/AtrijumApi/internal/api/middleware"
	"github.com/dragomirurdov/AtrijumApi/internal/api/response"
	"github.com/dragomirurdov/AtrijumApi/internal/device"
	"github.com/dragomirurdov/AtrijumApi/internal/domain"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/dragomirurdov/AtrijumApi/internal/service"
	"github.com/dragomirurdov/AtrijumApi/internal/websocket"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub         *websocket.Hub
	authService *service.AuthService
	tr          *i18n.Translator
	upgrader    ws.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows
// any origin.
func NewWebSocketHandler(hub *websocket.Hub, authService *service.AuthService, tr *i18n.Translator, allowedOrigins []string) *WebSocketHandler {
	allowAll := slices.Contains(allowedOrigins, "*")
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		tr:          tr,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowAll || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Handle authenticates the token query parameter the same way the Auth
// middleware does for headers, then streams session events.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguage(r.Context())

	token := r.URL.Query().Get("token")
	if token == "" {
		response.Error(w, h.tr, lang, domain.ErrMissingToken)
		return
	}

	fp := device.Fingerprint(r.UserAgent())
	res, err := h.authService.Authenticate(r.Context(), service.BearerCredential{Token: token}, fp)
	if err != nil {
		response.Error(w, h.tr, lang, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", "user_id", res.User.ID, "error", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, res.User.ID, fp)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
