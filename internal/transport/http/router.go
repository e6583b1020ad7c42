package http

import (
	"net/http"

	"github.com/astro-web3/powerbi-embed-gateway/internal/config"
	portalhandler "github.com/astro-web3/powerbi-embed-gateway/internal/transport/http/handler"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func newEngine(cfg *config.Config, serviceName string) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(recoveryMiddleware())
	if cfg.Observability.TraceEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(loggingMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return router
}

func NewGatewayRouter(handler *Handler, cfg *config.Config) *gin.Engine {
	router := newEngine(cfg, gatewayServiceName)

	router.POST("/generateEmbedToken", handler.GenerateEmbedToken)
	router.GET("/whereAmI", handler.WhereAmI)

	return router
}

func NewPortalRouter(handler *portalhandler.PortalHandler, cfg *config.Config) *gin.Engine {
	router := newEngine(cfg, portalServiceName)

	router.POST("/EmbedToken", handler.EmbedToken)

	return router
}
