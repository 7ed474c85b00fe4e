package http

import (
	"taskboard/internal/config"
	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	h := handlers.NewHandler(db, cfg)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Readiness)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Metrics())
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth (tighter limit than the rest of the API)
	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	v1.POST("/auth/register", authRL, h.Register)
	v1.POST("/auth/login", authRL, h.Login)

	// Tasks
	v1.GET("/tasks", middleware.JWT(), h.ListTasks)
	v1.POST("/tasks", middleware.JWT(), h.CreateTask)
	v1.PATCH("/tasks/:id", middleware.JWT(), h.UpdateTask)
	v1.DELETE("/tasks/:id", middleware.JWT(), h.DeleteTask)
	v1.POST("/tasks/:id/move", middleware.JWT(), h.MoveTask)

	// Statistics
	v1.GET("/stats", middleware.JWT(), h.GetStats)
	v1.GET("/stats/priority", middleware.JWT(), h.GetPriorityStats)
	v1.GET("/stats/productivity", middleware.JWT(), h.GetProductivity)

	// Backup
	v1.GET("/export", middleware.JWT(), h.ExportBackup)
	v1.POST("/import", middleware.JWT(), h.ImportBackup)
}
