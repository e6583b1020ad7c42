package handler

import (
	"net/http"
	"strings"

	"log/slog"

	"github.com/astro-web3/powerbi-embed-gateway/internal/config"
	embeddomain "github.com/astro-web3/powerbi-embed-gateway/internal/domain/embed"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/embedapi"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/location"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/logger"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// clientRequest is the browser-facing request. Username and groups never come
// from the body; the authentication layer supplies them via headers.
type clientRequest struct {
	WorkspaceID  string `json:"workspaceId"`
	ReportID     string `json:"reportId"`
	UserLocation string `json:"userLocation,omitempty"`
}

// portalResponse is the gateway envelope enriched with the resolved location
// and channel for front-end display.
type portalResponse struct {
	embeddomain.Result
	UserLocation string `json:"userLocation"`
	Channel      string `json:"channel"`
}

type PortalHandler struct {
	embedClient embedapi.Client
	resolver    location.Resolver
	headerKeys  struct {
		preferredUsername string
		email             string
		groups            string
	}
}

func NewPortalHandler(
	embedClient embedapi.Client,
	resolver location.Resolver,
	cfg *config.Config,
) *PortalHandler {
	h := &PortalHandler{
		embedClient: embedClient,
		resolver:    resolver,
	}
	h.headerKeys.preferredUsername = cfg.Portal.HeaderKeys.PreferredUsername
	h.headerKeys.email = cfg.Portal.HeaderKeys.Email
	h.headerKeys.groups = cfg.Portal.HeaderKeys.Groups
	return h
}

func (h *PortalHandler) EmbedToken(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.EmbedToken")
	defer span.End()

	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, &embeddomain.Result{Error: "Invalid JSON"})
		return
	}

	username, groups := h.identity(c)

	resolved := location.Location{
		Code:    strings.ToUpper(strings.TrimSpace(req.UserLocation)),
		Channel: location.Unknown.Channel,
	}
	if resolved.Code == "" {
		resolved = h.resolver.Resolve(ctx)
	}

	span.SetAttributes(
		attribute.String("embed.user_location", resolved.Code),
		attribute.String("embed.channel", resolved.Channel),
	)

	fwd := &embeddomain.Request{
		WorkspaceID:  req.WorkspaceID,
		ReportID:     req.ReportID,
		Username:     username,
		Groups:       groups,
		UserLocation: resolved.Code,
	}

	result, status, err := h.embedClient.GenerateEmbedToken(ctx, fwd)
	if err != nil {
		span.RecordError(err)
		logger.ErrorContext(ctx, "embed token proxy call failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, portalResponse{
			Result: embeddomain.Result{
				Error:       err.Error(),
				ReportID:    req.ReportID,
				WorkspaceID: req.WorkspaceID,
			},
			UserLocation: resolved.Code,
			Channel:      resolved.Channel,
		})
		return
	}

	c.JSON(status, portalResponse{
		Result:       *result,
		UserLocation: resolved.Code,
		Channel:      resolved.Channel,
	})
}

// identity derives the caller from the authentication layer's headers,
// preferring the UPN-style header over the email one, and deduplicates the
// group list preserving order.
func (h *PortalHandler) identity(c *gin.Context) (string, []string) {
	username := strings.TrimSpace(c.GetHeader(h.headerKeys.preferredUsername))
	if username == "" {
		username = strings.TrimSpace(c.GetHeader(h.headerKeys.email))
	}
	if username == "" {
		username = "unknown"
	}

	var groups []string
	seen := make(map[string]struct{})
	for _, g := range strings.Split(c.GetHeader(h.headerKeys.groups), ",") {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		groups = append(groups, g)
	}

	return username, groups
}
