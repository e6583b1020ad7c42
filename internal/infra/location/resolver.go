package location

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	httpclient "github.com/astro-web3/powerbi-embed-gateway/pkg/http"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/logger"
)

// Location is the resolver result: an ISO2 location code and an opaque
// two-digit channel code. Neither is interpreted by the pipeline.
type Location struct {
	Code    string `json:"location"`
	Channel string `json:"channel"`
}

// Unknown is returned on every resolver failure.
var Unknown = Location{Code: "UNKNOWN", Channel: "00"}

// Resolver yields the caller's location. Failures never surface as errors;
// the resolver degrades to Unknown.
type Resolver interface {
	Resolve(ctx context.Context) Location
}

// Static always answers with a fixed location. It backs the whereAmI stub
// endpoint until a real geo service exists.
type Static struct {
	Location Location
}

func (s *Static) Resolve(_ context.Context) Location {
	return s.Location
}

type httpResolver struct {
	baseURL string
}

// NewHTTPResolver resolves against a whereAmI endpoint at baseURL.
func NewHTTPResolver(baseURL string) Resolver {
	return &httpResolver{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (r *httpResolver) Resolve(ctx context.Context) Location {
	var payload Location
	resp, err := httpclient.Get(ctx, r.baseURL+"/whereAmI", httpclient.WithResult(&payload))
	if err != nil {
		logger.ErrorContext(ctx, "whereAmI call failed", slog.String("error", err.Error()))
		return Unknown
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		logger.WarnContext(ctx, "whereAmI returned non-success status",
			slog.Int("status", resp.StatusCode()),
		)
		return Unknown
	}
	return normalize(payload)
}

// normalize enforces the ISO2 location shape and a zero-padded two-digit
// channel, substituting the Unknown values where the payload does not comply.
func normalize(payload Location) Location {
	code := strings.ToUpper(strings.TrimSpace(payload.Code))
	if len(code) != 2 {
		code = Unknown.Code
	}

	channel := strings.TrimSpace(payload.Channel)
	if channel == "" || len(channel) > 2 {
		channel = Unknown.Channel
	} else if n, err := strconv.Atoi(channel); err == nil {
		channel = fmt.Sprintf("%02d", n)
	}

	return Location{Code: code, Channel: channel}
}
