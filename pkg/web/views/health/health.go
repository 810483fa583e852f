package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/labinv/internal/config"
	"github.com/scienceol/labinv/pkg/middleware/db"
	"github.com/scienceol/labinv/pkg/middleware/redis"
)

const (
	stateOK       = "ok"
	stateDown     = "unhealthy"
	stateMissing  = "not_initialized"
	stateDisabled = "disabled"
)

func Health(g *gin.Context) {
	server := config.Global().Server
	g.JSON(http.StatusOK, gin.H{
		"status":  stateOK,
		"service": server.Platform + "-" + server.Service,
		"env":     server.Env,
	})
}

func Live(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": stateOK})
}

func database(ctx context.Context) string {
	ds := db.DB()
	if ds == nil {
		return stateMissing
	}
	sqlDB, err := ds.DBIns().DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return stateDown
	}
	return stateOK
}

func cache(ctx context.Context) string {
	rc := redis.GetClient()
	switch {
	case rc != nil && rc.Ping(ctx).Err() != nil:
		return stateDown
	case rc != nil:
		return stateOK
	case config.Global().Redis.Enabled:
		return stateMissing
	default:
		return stateDisabled
	}
}

// Ready reports 503 until the database, and redis when enabled, answer.
func Ready(g *gin.Context) {
	ctx := g.Request.Context()
	checks := gin.H{
		"database": database(ctx),
		"redis":    cache(ctx),
	}

	status, msg := http.StatusOK, "ready"
	for _, state := range checks {
		if state != stateOK && state != stateDisabled {
			status, msg = http.StatusServiceUnavailable, "not_ready"
			break
		}
	}
	g.JSON(status, gin.H{"status": msg, "checks": checks})
}
