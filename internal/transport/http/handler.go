package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	embedapp "github.com/astro-web3/powerbi-embed-gateway/internal/app/embed"
	embeddomain "github.com/astro-web3/powerbi-embed-gateway/internal/domain/embed"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/location"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Handler serves the function-style gateway endpoints.
type Handler struct {
	appService embedapp.Service
	stub       location.Resolver
}

func NewHandler(appService embedapp.Service, stub location.Resolver) *Handler {
	return &Handler{
		appService: appService,
		stub:       stub,
	}
}

func (h *Handler) GenerateEmbedToken(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.GenerateEmbedToken")
	defer span.End()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		span.SetAttributes(attribute.Bool("embed.empty_body", true))
		c.JSON(http.StatusBadRequest, &embeddomain.Result{Error: "Empty body"})
		return
	}

	var req embeddomain.Request
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, &embeddomain.Result{Error: "Invalid JSON"})
		return
	}

	result, outcome := h.appService.GenerateEmbedToken(ctx, &req)
	c.JSON(statusFor(outcome), result)
}

// WhereAmI is the location stub: a fixed answer until a real geo service
// replaces it.
func (h *Handler) WhereAmI(c *gin.Context) {
	c.JSON(http.StatusOK, h.stub.Resolve(c.Request.Context()))
}

func statusFor(outcome embeddomain.Outcome) int {
	switch outcome {
	case embeddomain.OutcomeSuccess:
		return http.StatusOK
	case embeddomain.OutcomeClientError:
		return http.StatusBadRequest
	case embeddomain.OutcomeDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
