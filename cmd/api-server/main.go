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
	"remote-support-backend/internal/config"
	"remote-support-backend/internal/database"
	"remote-support-backend/internal/env"
	internaljwt "remote-support-backend/internal/jwt"
	"remote-support-backend/internal/logger"
	"remote-support-backend/internal/queue"
	authsvc "remote-support-backend/internal/service/auth"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateAPI()
	}
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

	db, err := database.NewDynamoDBClient(ctx, database.Options{
		Region:   cfg.Dynamo.Region,
		Endpoint: cfg.Dynamo.Endpoint,
		ID:       env.Get(env.AWSID),
		Secret:   env.Get(env.AWSSecret),
		Token:    env.Get(env.AWSToken),
	})
	if err != nil {
		log.Fatal("db init failed", zap.Error(err))
	}

	tokens := internaljwt.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	auth := authsvc.New(authsvc.NewDynamoRepository(db, cfg.Dynamo.HostsTable), tokens, nil)

	queueManager := queue.NewRequestQueueManager(cfg.Queue.Size, cfg.Queue.Workers, log)
	defer queueManager.Shutdown()

	server := api.NewAPIServer(
		cfg.HTTP.APIListenAddr,
		queueManager,
		api.Options{
			Logger: log,
			CORS:   middleware.DefaultCORSConfig(),
			Auth:   auth,
			Tokens: tokens,
		},
		router.UtilsRoutes(cfg.HTTP.APIPrefix),
		router.AuthRoutes(cfg.HTTP.APIPrefix),
	)

	if err := server.Run(ctx); err != nil {
		log.Error("api server failed", zap.Error(err))
	}
}
