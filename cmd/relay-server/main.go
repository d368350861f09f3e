package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"remote-support-backend/internal/api"
	"remote-support-backend/internal/api/middleware"
	"remote-support-backend/internal/api/router"
	"remote-support-backend/internal/broadcast"
	"remote-support-backend/internal/config"
	internaljwt "remote-support-backend/internal/jwt"
	"remote-support-backend/internal/logger"
	"remote-support-backend/internal/queue"
	"remote-support-backend/internal/relay"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var bus broadcast.Bus
	if cfg.Redis.Enabled() {
		bus = broadcast.Dial(ctx, broadcast.NewRedisBus(cfg.RedisOptions(), log), log)
	} else {
		log.Info("redis not configured, running single process")
	}
	if bus != nil {
		defer bus.Close()
	}

	rl := relay.New(cfg.RelayOptions(), bus, log)
	rl.Start(ctx)

	var tokens *internaljwt.Issuer
	if cfg.Auth.TokenSecret != "" {
		tokens = internaljwt.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	}

	queueManager := queue.NewRequestQueueManager(cfg.Queue.Size, cfg.Queue.Workers, log)
	defer queueManager.Shutdown()

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.Relay.AllowedOrigins

	server := api.NewAPIServer(
		cfg.HTTP.RelayListenAddr,
		queueManager,
		api.Options{
			Logger:       log,
			CORS:         cors,
			Relay:        rl.Handler,
			Tokens:       tokens,
			RequireToken: cfg.Relay.RequireToken,
		},
		router.UtilsRoutes(cfg.HTTP.APIPrefix),
		router.RelayRoutes(cfg.HTTP.WSPrefix, cfg.HTTP.APIPrefix),
	)

	log.Info("relay starting",
		zap.String("host_policy", cfg.Relay.HostPolicy),
		zap.String("api_prefix", cfg.HTTP.APIPrefix),
		zap.String("ws_prefix", cfg.HTTP.WSPrefix),
		zap.Duration("sweep_interval", cfg.Relay.SweepInterval),
		zap.Duration("inactivity_threshold", cfg.Relay.InactivityThreshold),
		zap.Bool("require_token", cfg.Relay.RequireToken),
		zap.Bool("distributed", bus != nil),
	)

	if err := server.Run(ctx); err != nil {
		log.Error("relay server failed", zap.Error(err))
	}
	stop()
	rl.Wait()
}
