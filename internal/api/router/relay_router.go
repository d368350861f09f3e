package router

import (
	"net/http"

	"remote-support-backend/internal/api"
	"remote-support-backend/internal/api/endpoints"
	"remote-support-backend/internal/api/middleware"
)

// RelayRoutes mounts the two websocket channels under wsPrefix and the room
// listing under apiPrefix.
func RelayRoutes(wsPrefix, apiPrefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		relayEndpoints := endpoints.NewRelayEndpoints(s.Handler())

		var auth []middleware.Middleware
		if s.RequireToken() {
			auth = append(auth, middleware.RequireRoomToken(s.Tokens()))
		}

		mux.HandleFunc(wsPrefix+"/control", s.MakeHTTPHandleFunc(relayEndpoints.Control, auth...))
		mux.HandleFunc(wsPrefix+"/screen", s.MakeHTTPHandleFunc(relayEndpoints.Screen, auth...))
		mux.HandleFunc(apiPrefix+"/rooms", s.MakeHTTPHandleFunc(relayEndpoints.Rooms))
	}
}
