package embed

import (
	"context"
	"strings"

	"log/slog"

	"github.com/astro-web3/powerbi-embed-gateway/internal/domain/authz"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/aad"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/logger"
)

// Service runs the issuance pipeline: validate, authorize, acquire a bearer
// token, issue. Each step gates the next; a failing step short-circuits the
// rest and maps to exactly one Outcome.
type Service interface {
	GenerateEmbedToken(ctx context.Context, req *Request) (*Result, Outcome)
}

type service struct {
	authorizer  authz.Service
	credentials aad.TokenAcquirer
	issuer      *Issuer
}

func NewService(authorizer authz.Service, credentials aad.TokenAcquirer, issuer *Issuer) Service {
	return &service{
		authorizer:  authorizer,
		credentials: credentials,
		issuer:      issuer,
	}
}

func (s *service) GenerateEmbedToken(ctx context.Context, req *Request) (*Result, Outcome) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return &Result{
			Error: "Missing required fields: " + strings.Join(missing, ", "),
		}, OutcomeClientError
	}

	if !s.authorizer.IsAuthorized(ctx, req.Username, req.UserLocation) {
		return &Result{Error: "User and location not authorized"}, OutcomeDenied
	}

	bearer, err := s.credentials.Acquire(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to acquire reporting API token",
			slog.String("error", err.Error()),
		)
		return &Result{Error: "Failed to acquire Power BI access token"}, OutcomeFailed
	}

	result := s.issuer.Issue(ctx, bearer, req.WorkspaceID, req.ReportID)
	if result.EmbedToken == "" {
		return result, OutcomeFailed
	}
	return result, OutcomeSuccess
}
