package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"immopro/server/config"
)

// NewRouter builds the engine with middleware and every route
func NewRouter(handler *Handler, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(handler.logger))
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	router.Use(RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, handler.logger))

	SetupRoutes(router, handler, cfg)
	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	for _, origin := range origins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}

func SetupRoutes(router *gin.Engine, handler *Handler, cfg *config.Config) {
	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/defaults", handler.GetDefaults)

		api.POST("/analyze", handler.Analyze)
		api.POST("/analyze/financials", handler.AnalyzeFinancials)
		api.POST("/analyze/strategies", handler.AnalyzeStrategies)
		api.POST("/analyze/risks", handler.AnalyzeRisks)
		api.POST("/listing/apply", handler.ApplyListing)

		api.POST("/sessions", handler.CreateSession)
		api.GET("/sessions/:id", handler.GetSession)
		api.PATCH("/sessions/:id", handler.UpdateSession)
		api.PUT("/sessions/:id", handler.ReplaceSession)
		api.POST("/sessions/:id/listing", handler.ApplySessionListing)
		api.DELETE("/sessions/:id", handler.DeleteSession)
		api.GET("/sessions/:id/ws", handler.LiveSession(newUpgrader(cfg.Server.AllowedOrigins)))

		api.POST("/scenarios", handler.CreateScenarios)
		api.GET("/scenarios", handler.ListScenarios)
		api.GET("/scenarios/:id", handler.GetScenario)
		api.DELETE("/scenarios/:id", handler.DeleteScenario)
	}
}
