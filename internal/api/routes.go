package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/dcastanera/hrvision/internal/api/handlers"
	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/services"
)

// Version is the reported service version.
const Version = "1.0.0"

// SetupRoutes registers the HTTP endpoints.
func SetupRoutes(router *gin.Engine, analyzer *services.Analyzer, cfg config.ServerConfig, logger *logrus.Logger) {
	health := handlers.NewHealthHandler(Version)
	analyze := handlers.NewAnalyzeHandler(analyzer, cfg, logger)

	router.GET("/health", health.Health)
	router.POST("/upload", analyze.Upload)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", analyze.Upload)
	}
}
