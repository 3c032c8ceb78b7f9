package loamy

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"

	"github.com/kiosk404/loamy/internal/loamy/handler/middleware"
	v1 "github.com/kiosk404/loamy/internal/loamy/handler/v1"
	"github.com/kiosk404/loamy/internal/loamy/metrics"
)

// routerDeps holds the dependencies needed for route registration.
type routerDeps struct {
	runner          v1.ConversationRunner
	maxHistoryTurns int
	staticDir       string
	enableProfiling bool
	enableMetrics   bool
}

func initRouter(g *gin.Engine, deps *routerDeps) {
	installMiddleware(g, deps)
	installController(g, deps)
}

func installMiddleware(g *gin.Engine, deps *routerDeps) {
	g.Use(gin.Recovery())
	g.Use(middleware.RequestID())
}

func installController(g *gin.Engine, deps *routerDeps) {
	g.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if deps.enableMetrics {
		g.GET("/metrics", gin.WrapH(metrics.Handler(metrics.NewRegistry())))
	}
	if deps.enableProfiling {
		pprof.Register(g)
	}

	// Generated sanction letters.
	g.Static("/static", deps.staticDir)

	chat := v1.NewChatHandler(deps.runner, deps.maxHistoryTurns)
	tools := v1.NewToolsHandler(deps.runner)

	apiV1 := g.Group("/v1")
	{
		apiV1.POST("/chat", chat.Handle)
		apiV1.POST("/chat/stream", chat.HandleStream)
		apiV1.GET("/tools", tools.List)
	}
}
