package handlers

import (
	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/repository"
	"taskboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB    *pgxpool.Pool
	Tasks *service.TaskService
	Auth  *service.AuthService
}

func NewHandler(db *pgxpool.Pool, cfg *config.Config) *Handler {
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	stats := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.StatsCacheTTL)

	return &Handler{
		DB:    db,
		Tasks: service.NewTaskService(taskRepo, userRepo, stats, cfg.PageSizeCap, cfg.BackupVersions),
		Auth:  service.NewAuthService(userRepo, cfg.JWTSecret),
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
