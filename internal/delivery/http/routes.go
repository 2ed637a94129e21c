package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/instafinder/backend/config"
	"github.com/instafinder/backend/internal/render"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger.Named("access")))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	// Page
	router.GET("/", handler.Index)
	router.POST("/submit", handler.Submit)
	router.GET("/state", handler.State)
	router.DELETE("/session", handler.EndSession)

	router.StaticFS("/static", http.FS(render.Assets()))

	if cfg.Proxy.Enabled {
		proxy, err := NewDevProxy(cfg.Proxy.Target, logger)
		if err != nil {
			return nil, err
		}
		router.Any(ProxyPrefix+"/*path", proxy)
	}

	return router, nil
}
