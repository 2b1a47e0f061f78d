package http

import (
	"casino_server/internal/config"
	"casino_server/internal/http/handlers"
	"casino_server/internal/http/middleware"
	"casino_server/internal/service"
	"casino_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the HTTP surface over the core services.
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, rooms *service.RoomService, syncSvc *service.SyncService, sessions *service.SessionService, hub *ws.Hub, version string) {
	h := handlers.NewHandler(rooms, syncSvc, sessions)
	health := handlers.NewHealthHandler(db, version)

	r.GET("/health", health.Liveness)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)

	api := r.Group("/api")
	{
		api.POST("/rooms", h.CreateRoom)
		api.POST("/rooms/:id/join", h.JoinRoom)
		api.POST("/rooms/:id/start", h.StartGame)
		api.POST("/rooms/:id/actions",
			middleware.RedisRateLimit(cfg.ActionRateLimit, cfg.ActionRateWindow),
			h.SubmitAction)
		api.GET("/rooms/:id/state", h.GetState)
		api.GET("/rooms/:id/sync", h.SyncCheck)
		api.GET("/rooms/:id/events", h.Events)
		api.GET("/rooms/:id/abandoned", h.RoomAbandoned)

		api.POST("/sessions", h.RegisterSession)
		api.POST("/sessions/heartbeat", h.Heartbeat)
		api.POST("/sessions/disconnect", h.DisconnectSession)
	}

	r.GET("/ws", h.WS(hub))
}
