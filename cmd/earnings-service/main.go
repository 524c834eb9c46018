package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"parcel-hub/internal/earnings/adapter/cache"
	"parcel-hub/internal/earnings/adapter/gateway"
	adapterrabbit "parcel-hub/internal/earnings/adapter/rabbitmq"
	"parcel-hub/internal/earnings/adapter/repository"
	"parcel-hub/internal/earnings/adapter/rest"
	adapterws "parcel-hub/internal/earnings/adapter/websocket"
	"parcel-hub/internal/earnings/domain"
	"parcel-hub/internal/earnings/engine"
	"parcel-hub/internal/earnings/service"
	"parcel-hub/pkg/auth"
	"parcel-hub/pkg/config"
	"parcel-hub/pkg/db"
	"parcel-hub/pkg/logger"
	"parcel-hub/pkg/rabbitmq"
)

func main() {
	log := logger.NewLogger("earnings-service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("config_load_failed", err)
		os.Exit(1)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret)

	// The gateway client serves deliveries always, and tiers unless the
	// rate-card table is read directly from Postgres.
	gatewayClient := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.ServiceToken, cfg.Gateway.Timeout)

	var tierSource domain.TierSource = gatewayClient
	if cfg.Engine.TierSource == "postgres" {
		pool, err := db.NewConnection(cfg, log)
		if err != nil {
			log.Error("db_unavailable", err)
			os.Exit(1)
		}
		defer pool.Close()
		tierSource = repository.NewPostgresTierRepository(pool)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	tierCache := cache.NewRedisTierCache(redisClient, cfg.Redis.TierTTL)

	earnings := service.New(
		gatewayClient,
		tierSource,
		tierCache,
		engine.DefaultFallbackPolicy(),
		cfg.Engine.BaselineMinutes,
		log,
	)

	hub := adapterws.NewHub(jwtManager, log)

	rabbitConn, err := rabbitmq.NewConnection(cfg, log)
	if err != nil {
		log.Error("rabbitmq_unavailable", err)
		os.Exit(1)
	}
	defer rabbitConn.Close()

	consumer := adapterrabbit.NewConsumer(rabbitConn, earnings, hub, log)
	if err := consumer.Start(); err != nil {
		log.Error("consumer_start_failed", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	rest.NewHandler(earnings, jwtManager, log).RegisterRoutes(mux)
	hub.RegisterRoutes(mux)

	srv := rest.NewServer(cfg.Server.Port, mux, log)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server_failed", err)
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutdown_signal", "Received "+sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown_failed", err)
	}
	log.Info("shutdown_complete", "Earnings service stopped")
}
