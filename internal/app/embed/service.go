package embed

import (
	"context"

	domain "github.com/astro-web3/powerbi-embed-gateway/internal/domain/embed"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type Service interface {
	GenerateEmbedToken(ctx context.Context, req *domain.Request) (*domain.Result, domain.Outcome)
}

type service struct {
	domainService domain.Service
}

func NewService(domainService domain.Service) Service {
	return &service{
		domainService: domainService,
	}
}

func (s *service) GenerateEmbedToken(
	ctx context.Context,
	req *domain.Request,
) (*domain.Result, domain.Outcome) {
	ctx, span := tracer.Start(ctx, "app.embed.GenerateEmbedToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("embed.workspace_id", req.WorkspaceID),
		attribute.String("embed.report_id", req.ReportID),
		attribute.String("embed.user_location", req.UserLocation),
	)

	result, outcome := s.domainService.GenerateEmbedToken(ctx, req)

	span.SetAttributes(attribute.String("embed.outcome", outcome.String()))
	if result.Error != "" {
		span.SetAttributes(attribute.String("embed.error", result.Error))
	}

	return result, outcome
}
