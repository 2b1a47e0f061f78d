package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casino_server/internal/config"
	"casino_server/internal/db"
	"casino_server/internal/game"
	httpServer "casino_server/internal/http"
	"casino_server/internal/http/middleware"
	"casino_server/internal/logger"
	"casino_server/internal/pubsub"
	"casino_server/internal/repository"
	"casino_server/internal/service"
	"casino_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")
	cfg := config.Load()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	broker := newBroker(cfg)
	defer broker.Close()

	roomRepo := repository.NewRoomRepository(dbPool)
	eventRepo := repository.NewEventRepository(dbPool)
	actionRepo := repository.NewActionLogRepository(dbPool)
	sessionRepo := repository.NewSessionRepository(dbPool)

	engine := game.NewEngine(game.NewViolations())
	rooms := service.NewRoomService(roomRepo, actionRepo, broker, engine, cfg.SnapshotInterval)
	syncSvc := service.NewSyncService(roomRepo, eventRepo, cfg.MaxVersionGap)

	tokens := service.NewTokenSigner(cfg.JWTSecret, cfg.SessionExpiry)
	sessions := service.NewSessionService(sessionRepo, roomRepo, tokens, service.SessionConfig{
		HeartbeatInterval: cfg.HeartbeatInterval,
		ExpireAfter:       cfg.SessionExpiry,
		ExpireSweep:       cfg.ExpirySweep,
		AbandonedSweep:    cfg.AbandonedSweep,
	})
	sessions.OnAbandoned = func(roomID string) {
		logger.Warn("abandoned room, notification pending", "room_id", roomID)
	}
	sessions.Start()
	defer sessions.Stop()

	hub := ws.NewHub(broker)
	defer hub.Shutdown()

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	httpServer.RegisterRoutes(r, dbPool, cfg, rooms, syncSvc, sessions, hub, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("server exited")
}

// newBroker selects the broadcast backend. A backend that cannot be
// reached degrades to the in-process broker: the game must keep committing
// even when the channel is down.
func newBroker(cfg *config.Config) pubsub.Broker {
	switch cfg.BroadcastBackend {
	case "redis":
		b, err := pubsub.NewRedisBroker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis broker unavailable, using in-process broadcast", "error", err)
			return pubsub.NewMemoryBroker()
		}
		logger.Info("broadcasting over redis", "addr", cfg.RedisAddr)
		return b
	case "nats":
		b, err := pubsub.NewNATSBroker(cfg.NATSURL)
		if err != nil {
			logger.Warn("nats broker unavailable, using in-process broadcast", "error", err)
			return pubsub.NewMemoryBroker()
		}
		logger.Info("broadcasting over nats", "url", cfg.NATSURL)
		return b
	default:
		return pubsub.NewMemoryBroker()
	}
}
