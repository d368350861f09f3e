package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"remote-support-backend/internal/api/middleware"
	"remote-support-backend/internal/queue"

	"go.uber.org/zap"
)

type apiFunc func(http.ResponseWriter, *http.Request) error

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// MakeHTTPHandleFunc runs f on the request queue and maps returned errors to
// JSON responses. authMiddleware runs before f, inside CORS and logging.
func (s *APIServer) MakeHTTPHandleFunc(f apiFunc, authMiddleware ...middleware.Middleware) http.HandlerFunc {
	baseHandler := func(w http.ResponseWriter, r *http.Request) {
		errc := make(chan error, 1)

		job := queue.Job{
			Fn: func() error {
				return f(w, r)
			},
			Errc: errc,
		}

		if err := s.requestQueueManager.EnqueueJob(r.Context(), job); err != nil {
			s.logger.Warn("request not queued", zap.String("path", r.URL.Path), zap.Error(err))
			WriteJSON(w, http.StatusServiceUnavailable, ApiError{Error: "Server busy"})
			return
		}

		if err := <-errc; err != nil {
			s.writeError(w, r, err)
		}
	}

	middlewares := []middleware.Middleware{
		middleware.CORS(s.opts.CORS),
		middleware.Logging(s.logger),
	}

	return middleware.Chain(middleware.Chain(baseHandler, authMiddleware...), middlewares...)
}

func (s *APIServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.ErrorLog != nil {
			s.logger.Info("request failed",
				zap.String("path", r.URL.Path),
				zap.Int("status", httpErr.StatusCode),
				zap.Error(httpErr.ErrorLog))
		}
		WriteJSON(w, httpErr.StatusCode, ApiError{Error: httpErr.Message})
		return
	}

	s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	WriteJSON(w, http.StatusInternalServerError, ApiError{Error: "Internal server error"})
}
