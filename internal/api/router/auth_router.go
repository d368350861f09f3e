package router

import (
	"net/http"

	"remote-support-backend/internal/api"
	"remote-support-backend/internal/api/endpoints"
)

func AuthRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(s.Auth())
		mux.HandleFunc(prefix+"/auth/register", s.MakeHTTPHandleFunc(authEndpoints.Register))
		mux.HandleFunc(prefix+"/auth/connect", s.MakeHTTPHandleFunc(authEndpoints.Connect))
	}
}
