package powerbi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	httpclient "github.com/astro-web3/powerbi-embed-gateway/pkg/http"
)

// DefaultBaseURL is the public Power BI REST endpoint.
const DefaultBaseURL = "https://api.powerbi.com"

// Client is the reporting API surface the issuer depends on. Both calls carry
// the caller-supplied bearer token; the client holds no credential state.
type Client interface {
	GetReportInGroup(ctx context.Context, bearer string, workspaceID, reportID uuid.UUID) (*Report, error)
	GenerateToken(ctx context.Context, bearer string, req *GenerateTokenRequest) (*EmbedToken, error)
}

type client struct {
	baseURL string
}

func NewClient(baseURL string) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (c *client) GetReportInGroup(
	ctx context.Context,
	bearer string,
	workspaceID, reportID uuid.UUID,
) (*Report, error) {
	endpoint := fmt.Sprintf("%s/v1.0/myorg/groups/%s/reports/%s", c.baseURL, workspaceID, reportID)

	var report Report
	resp, err := httpclient.Get(ctx, endpoint,
		httpclient.WithAuthToken(bearer),
		httpclient.WithResult(&report),
	)
	if err != nil {
		return nil, fmt.Errorf("get report request failed: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf(
			"get report %s in workspace %s failed with status %d: %s",
			reportID, workspaceID, resp.StatusCode(), apiErrorMessage(resp.Body()),
		)
	}
	if report.ID == "" {
		return nil, fmt.Errorf("report %s in workspace %s: empty resolution result", reportID, workspaceID)
	}
	return &report, nil
}

func (c *client) GenerateToken(
	ctx context.Context,
	bearer string,
	req *GenerateTokenRequest,
) (*EmbedToken, error) {
	endpoint := c.baseURL + "/v1.0/myorg/GenerateToken"

	var token EmbedToken
	resp, err := httpclient.Post(ctx, endpoint,
		httpclient.WithAuthToken(bearer),
		httpclient.WithBody(req),
		httpclient.WithResult(&token),
	)
	if err != nil {
		return nil, fmt.Errorf("generate token request failed: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, fmt.Errorf(
			"generate token failed with status %d: %s",
			resp.StatusCode(), apiErrorMessage(resp.Body()),
		)
	}
	if token.Token == "" {
		return nil, fmt.Errorf("generate token returned no token")
	}
	return &token, nil
}

// apiErrorMessage extracts the service error message when the body is the
// standard error envelope, falling back to the raw body.
func apiErrorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return string(body)
}
