package authz

import (
	"bufio"
	"context"
	"strings"

	"log/slog"

	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/blobstore"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/logger"
)

// Service decides whether a user/location pair is present in the allow-list.
type Service interface {
	IsAuthorized(ctx context.Context, username, location string) bool
}

type service struct {
	source blobstore.Source
}

func NewService(source blobstore.Source) Service {
	return &service{source: source}
}

// IsAuthorized scans the allow-list for a line whose first two fields match
// username and location, case-insensitively. Every failure mode of the backing
// store, including a missing blob, collapses to a denial: callers cannot tell
// "not listed" from "list unreachable".
func (s *service) IsAuthorized(ctx context.Context, username, location string) bool {
	stream, err := s.source.Open(ctx)
	if err != nil {
		logger.WarnContext(ctx, "allow-list unavailable, denying",
			slog.String("error", err.Error()),
		)
		return false
	}
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	lineNumber := 0
	processed := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitRecord(line)
		if len(fields) < 2 {
			logger.DebugContext(ctx, "skipping allow-list line with insufficient columns",
				slog.Int("line", lineNumber),
			)
			continue
		}
		processed++
		if strings.EqualFold(fields[0], username) && strings.EqualFold(fields[1], location) {
			logger.InfoContext(ctx, "user and location authorized",
				slog.String("user", username),
				slog.String("location", location),
				slog.Int("line", lineNumber),
			)
			return true
		}
	}

	if scanErr := scanner.Err(); scanErr != nil {
		logger.WarnContext(ctx, "allow-list read failed, denying",
			slog.String("error", scanErr.Error()),
		)
		return false
	}

	logger.InfoContext(ctx, "no allow-list match",
		slog.String("user", username),
		slog.String("location", location),
		slog.Int("lines_processed", processed),
	)
	return false
}

// splitRecord splits a line on commas, trims each field, and drops empties.
func splitRecord(line string) []string {
	parts := strings.Split(line, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fields = append(fields, p)
	}
	return fields
}
