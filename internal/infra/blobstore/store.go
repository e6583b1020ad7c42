package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/logger"
)

// ErrNotConfigured is returned when neither a connection string nor a service
// endpoint is available. Callers are expected to treat it as any other read
// failure rather than a distinguished infrastructure error.
var ErrNotConfigured = errors.New("allow-list storage not configured")

// Source opens the allow-list blob as a byte stream. A single pass per
// authorization check; the stream is not restartable.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

type Config struct {
	ConnectionString string
	ServiceURL       string
	Container        string
	Blob             string
}

type blobSource struct {
	cfg Config
}

func NewSource(cfg Config) Source {
	return &blobSource{cfg: cfg}
}

// Open resolves the blob with one of two strategies: a shared-key connection
// string when the configured value carries an AccountName= marker, otherwise
// the value (or the explicit service URL) is taken as a blob service endpoint
// and opened with the ambient credential chain.
func (s *blobSource) Open(ctx context.Context) (io.ReadCloser, error) {
	raw := strings.TrimSpace(s.cfg.ConnectionString)

	if raw != "" && strings.Contains(strings.ToLower(raw), "accountname=") {
		logger.DebugContext(ctx, "opening allow-list via connection string",
			slog.String("container", s.cfg.Container),
			slog.String("blob", s.cfg.Blob),
		)
		client, err := azblob.NewClientFromConnectionString(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("create blob client from connection string: %w", err)
		}
		return s.download(ctx, client)
	}

	endpoint := strings.TrimSpace(s.cfg.ServiceURL)
	if endpoint == "" {
		endpoint = raw
	}
	if endpoint == "" {
		return nil, ErrNotConfigured
	}

	u, err := url.Parse(endpoint)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("%w: invalid service endpoint %q", ErrNotConfigured, endpoint)
	}

	logger.DebugContext(ctx, "opening allow-list via ambient identity",
		slog.String("endpoint", u.String()),
		slog.String("container", s.cfg.Container),
		slog.String("blob", s.cfg.Blob),
	)

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("create ambient credential: %w", err)
	}

	client, err := azblob.NewClient(u.String(), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create blob client for %s: %w", u.String(), err)
	}
	return s.download(ctx, client)
}

func (s *blobSource) download(ctx context.Context, client *azblob.Client) (io.ReadCloser, error) {
	resp, err := client.DownloadStream(ctx, s.cfg.Container, s.cfg.Blob, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("allow-list blob %s/%s not found: %w", s.cfg.Container, s.cfg.Blob, err)
		}
		return nil, fmt.Errorf("download allow-list blob %s/%s: %w", s.cfg.Container, s.cfg.Blob, err)
	}
	return resp.Body, nil
}
