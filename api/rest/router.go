package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/weaponpaints/middleware"
	"go.uber.org/zap"
)

// RouterConfig carries the keys and limiter for NewRouter.
// Limiter may be nil to disable rate limiting.
type RouterConfig struct {
	AdminKey  string
	PluginKey string
	Limiter   *middleware.IPRateLimiter
}

// NewRouter builds the HTTP engine: health probe, the admin group and the
// game plugin group.
func NewRouter(admin *AdminHandler, game *GameHandler, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.TraceID(), middleware.AccessLog(logger, "/health"), middleware.Recovery(logger))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware())
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminG := r.Group("/api/admin")
	adminG.Use(middleware.AdminKey(cfg.AdminKey))
	adminG.GET("/players", admin.ListPlayers)
	adminG.GET("/slots/:slot", admin.Slot)
	adminG.GET("/scheduler", admin.ListSchedulerTasks)
	adminG.POST("/players/:steamid/refresh", admin.Refresh)
	adminG.POST("/players/:steamid/save", admin.Save)

	gameG := r.Group("/api/game")
	gameG.Use(middleware.PluginKey(cfg.PluginKey))
	gameG.POST("/players", game.Connect)
	gameG.DELETE("/players/:slot", game.Disconnect)
	gameG.GET("/players/:slot/loadout", game.Loadout)
	gameG.POST("/players/:slot/knife", game.SelectKnife)
	gameG.POST("/players/:slot/glove", game.SelectGlove)
	gameG.POST("/players/:slot/skin", game.SelectSkin)
	gameG.POST("/players/:slot/refresh", game.Refresh)

	return r
}
