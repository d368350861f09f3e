package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"remote-support-backend/internal/api/middleware"
	internaljwt "remote-support-backend/internal/jwt"
	"remote-support-backend/internal/queue"
	"remote-support-backend/internal/relay"
	authsvc "remote-support-backend/internal/service/auth"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type RouteRegistrar func(mux *http.ServeMux, s *APIServer)

// Options carries the services route registrars may pull from. Any of them
// may be nil when the binary does not serve the matching routes.
type Options struct {
	Logger       *zap.Logger
	CORS         middleware.CORSConfig
	Auth         *authsvc.Service
	Relay        *relay.Handler
	Tokens       *internaljwt.Issuer
	RequireToken bool
}

type APIServer struct {
	listenAddr          string
	requestQueueManager *queue.RequestQueueManager
	routeRegistrars     []RouteRegistrar
	opts                Options
	logger              *zap.Logger
	metrics             *metrics
}

func NewAPIServer(listenAddr string, rqm *queue.RequestQueueManager, opts Options, registrars ...RouteRegistrar) *APIServer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.CORS.AllowedOrigins) == 0 {
		opts.CORS = middleware.DefaultCORSConfig()
	}

	return &APIServer{
		listenAddr:          listenAddr,
		requestQueueManager: rqm,
		routeRegistrars:     registrars,
		opts:                opts,
		logger:              opts.Logger,
		metrics:             newMetrics(prometheus.DefaultRegisterer, listenAddr, rqm),
	}
}

// Routes builds the instrumented mux with every registrar applied.
func (s *APIServer) Routes() http.Handler {
	mux := http.NewServeMux()

	for _, reg := range s.routeRegistrars {
		reg(mux, s)
	}

	mux.Handle("/metrics", s.metrics.metricsHandler())
	return s.metrics.instrument(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *APIServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.listenAddr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("server shutdown", zap.Error(err))
		return err
	}
	s.logger.Info("server stopped", zap.String("addr", s.listenAddr))
	return nil
}

func (s *APIServer) Logger() *zap.Logger {
	return s.logger
}

func (s *APIServer) Auth() *authsvc.Service {
	return s.opts.Auth
}

func (s *APIServer) Handler() *relay.Handler {
	return s.opts.Relay
}

func (s *APIServer) Tokens() *internaljwt.Issuer {
	return s.opts.Tokens
}

func (s *APIServer) RequireToken() bool {
	return s.opts.RequireToken
}
