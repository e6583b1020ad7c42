package http

import (
	"context"
	"fmt"
	"net/http"

	embedapp "github.com/astro-web3/powerbi-embed-gateway/internal/app/embed"
	"github.com/astro-web3/powerbi-embed-gateway/internal/config"
	authzdomain "github.com/astro-web3/powerbi-embed-gateway/internal/domain/authz"
	embeddomain "github.com/astro-web3/powerbi-embed-gateway/internal/domain/embed"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/aad"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/blobstore"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/embedapi"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/location"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/powerbi"
	portalhandler "github.com/astro-web3/powerbi-embed-gateway/internal/transport/http/handler"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/logger"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/otel"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/tracer"
	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
}

const (
	idleTimeoutMultiplier = 2
	gatewayServiceName    = "powerbi-embed-gateway"
	portalServiceName     = "powerbi-embed-portal"
)

// NewGatewayServer wires the issuance pipeline: allow-list store,
// authorization checker, credential acquirer, issuer, and the function-style
// HTTP surface.
func NewGatewayServer(cfg *config.Config) (*Server, error) {
	if err := initObservability(cfg, gatewayServiceName); err != nil {
		return nil, err
	}

	source := blobstore.NewSource(blobstore.Config{
		ConnectionString: cfg.Storage.ConnectionString,
		ServiceURL:       cfg.Storage.ServiceURL,
		Container:        cfg.Storage.Container,
		Blob:             cfg.Storage.Blob,
	})
	authorizer := authzdomain.NewService(source)

	credentials := aad.NewClient(
		cfg.AAD.AuthorityHost,
		cfg.AAD.TenantID,
		cfg.AAD.ClientID,
		cfg.AAD.ClientSecret,
	)

	reports := powerbi.NewClient(cfg.PowerBI.BaseURL)
	domainService := embeddomain.NewService(authorizer, credentials, embeddomain.NewIssuer(reports))
	appService := embedapp.NewService(domainService)

	stub := &location.Static{Location: location.Location{Code: "CH", Channel: "05"}}
	handler := NewHandler(appService, stub)
	router := NewGatewayRouter(handler, cfg)

	return newServer(router, cfg), nil
}

// NewPortalServer wires the browser-facing proxy: identity headers in,
// location resolution, and forwarding to the gateway's function endpoint.
func NewPortalServer(cfg *config.Config) (*Server, error) {
	if err := initObservability(cfg, portalServiceName); err != nil {
		return nil, err
	}

	embedClient := embedapi.NewClient(cfg.Portal.FunctionBaseURL)
	resolver := location.NewHTTPResolver(cfg.Portal.WhereAmIBaseURL)
	handler := portalhandler.NewPortalHandler(embedClient, resolver, cfg)
	router := NewPortalRouter(handler, cfg)

	return newServer(router, cfg), nil
}

func initObservability(cfg *config.Config, serviceName string) error {
	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.Format, cfg.Observability.LogSource)

	otelCfg := otel.Config{
		ServiceName:        serviceName,
		EndpointURL:        cfg.Observability.TracingEndpointURL,
		Enabled:            cfg.Observability.TraceEnabled,
		SampleRatio:        1.0,
		Insecure:           true,
		ResourceAttributes: make(map[string]string),
	}
	if err := tracer.InitTracer(serviceName, otelCfg); err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	return nil
}

func newServer(router *gin.Engine, cfg *config.Config) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.ReadTimeout * idleTimeoutMultiplier,
		},
	}
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
