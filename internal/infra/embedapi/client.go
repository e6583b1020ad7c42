package embedapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/astro-web3/powerbi-embed-gateway/internal/domain/embed"
	httpclient "github.com/astro-web3/powerbi-embed-gateway/pkg/http"
)

// Client forwards embed-token requests to the gateway's function endpoint.
// The upstream status code is passed back so the proxy layer can mirror it.
type Client interface {
	GenerateEmbedToken(ctx context.Context, req *embed.Request) (*embed.Result, int, error)
}

type client struct {
	baseURL string
}

func NewClient(baseURL string) Client {
	return &client{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (c *client) GenerateEmbedToken(
	ctx context.Context,
	req *embed.Request,
) (*embed.Result, int, error) {
	var result embed.Result
	resp, err := httpclient.Post(ctx, c.baseURL+"/generateEmbedToken",
		httpclient.WithBody(req),
		httpclient.WithResult(&result),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("embed token request failed: %w", err)
	}

	status := resp.StatusCode()
	if status >= http.StatusBadRequest && result.Error == "" {
		result.Error = fmt.Sprintf("Function error: %d %s", status, strings.TrimSpace(string(resp.Body())))
	}
	return &result, status, nil
}
