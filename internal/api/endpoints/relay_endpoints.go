package endpoints

import (
	"net/http"

	"remote-support-backend/internal/api/middleware"
	"remote-support-backend/internal/relay"
)

type RelayEndpoints interface {
	Control(http.ResponseWriter, *http.Request) error
	Screen(http.ResponseWriter, *http.Request) error
	Rooms(http.ResponseWriter, *http.Request) error
}

type relayEndpoints struct {
	handler *relay.Handler
}

func NewRelayEndpoints(handler *relay.Handler) RelayEndpoints {
	return &relayEndpoints{handler: handler}
}

func (h *relayEndpoints) Control(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.connect(relay.ChannelControl),
	})
}

func (h *relayEndpoints) Screen(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.connect(relay.ChannelScreen),
	})
}

func (h *relayEndpoints) Rooms(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: func(w http.ResponseWriter, r *http.Request) error {
			h.handler.GetRooms(w, r)
			return nil
		},
	})
}

// connect hands the request to the relay. When a token was verified
// upstream, the connection is limited to that token's room.
func (h *relayEndpoints) connect(ch relay.Channel) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		h.handler.Connect(w, r, ch, middleware.RoomCode(r.Context()))
		return nil
	}
}
