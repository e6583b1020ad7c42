package aad

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "github.com/astro-web3/powerbi-embed-gateway/pkg/http"
)

// Scope is the fixed resource scope for the Power BI REST API.
const Scope = "https://analysis.windows.net/powerbi/api/.default"

// ErrNotConfigured is returned when the service-principal triple is incomplete.
// No network I/O is attempted in that case.
var ErrNotConfigured = errors.New("power bi service principal credentials not fully configured")

// TokenAcquirer exchanges service-principal secrets for a bearer token.
type TokenAcquirer interface {
	Acquire(ctx context.Context) (string, error)
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type client struct {
	authorityHost string
	tenantID      string
	clientID      string
	clientSecret  string
}

func NewClient(authorityHost, tenantID, clientID, clientSecret string) TokenAcquirer {
	authorityHost = strings.TrimSuffix(authorityHost, "/")
	return &client{
		authorityHost: authorityHost,
		tenantID:      tenantID,
		clientID:      clientID,
		clientSecret:  clientSecret,
	}
}

// Acquire performs a client-credentials grant for the Power BI scope and
// returns the bearer token verbatim. The token is never cached; every
// issuance re-acquires a fresh one.
func (c *client) Acquire(ctx context.Context) (string, error) {
	if c.tenantID == "" || c.clientID == "" || c.clientSecret == "" {
		return "", ErrNotConfigured
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", Scope)

	tokenEndpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.authorityHost, c.tenantID)

	var tokenResp tokenResponse
	resp, err := httpclient.PostForm(ctx, tokenEndpoint, form, &tokenResp)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		if tokenResp.Error != "" {
			return "", fmt.Errorf(
				"token grant failed with status %d: %s: %s",
				resp.StatusCode(), tokenResp.Error, tokenResp.ErrorDescription,
			)
		}
		return "", fmt.Errorf(
			"token grant failed with status %d: %s",
			resp.StatusCode(), string(resp.Body()),
		)
	}

	if tokenResp.AccessToken == "" {
		return "", errors.New("token grant returned no access token")
	}

	return tokenResp.AccessToken, nil
}
