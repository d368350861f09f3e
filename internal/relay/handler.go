package relay

import (
	"encoding/json"
	"net/http"

	"remote-support-backend/internal/room"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type HandlerConfig struct {
	AllowedOrigins []string
	Client         ClientOptions
}

// Handler upgrades HTTP requests onto the control and screen hubs.
type Handler struct {
	control  *Hub
	screen   *Hub
	upgrader websocket.Upgrader
	opts     ClientOptions
	logger   *zap.Logger
}

func NewHandler(control, screen *Hub, cfg HandlerConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		control: control,
		screen:  screen,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		opts:   cfg.Client.withDefaults(),
		logger: logger,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func (h *Handler) Hub(ch Channel) *Hub {
	if ch == ChannelScreen {
		return h.screen
	}
	return h.control
}

// Connect upgrades the request and attaches the connection to the hub of ch.
// A non-empty allowedCode restricts which room the connection may join.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request, ch Channel, allowedCode string) {
	hub := h.Hub(ch)
	if hub == nil {
		http.Error(w, "channel not available", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("channel", string(ch)), zap.Error(err))
		return
	}

	cl := NewClient(conn, uuid.NewString(), allowedCode, h.opts, h.logger.With(zap.String("channel", string(ch))))

	select {
	case hub.Register <- cl:
	case <-hub.Done():
		conn.Close()
		return
	}
	cl.Start(hub)
}

type RoomRes struct {
	Channel Channel   `json:"channel"`
	Room    room.Room `json:"room"`
}

func (h *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	rooms := make([]RoomRes, 0)

	for _, hub := range []*Hub{h.control, h.screen} {
		if hub == nil {
			continue
		}
		for _, rm := range hub.Registry().Snapshot() {
			rooms = append(rooms, RoomRes{Channel: hub.Channel(), Room: rm})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(rooms)
}
