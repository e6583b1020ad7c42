package authz_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/astro-web3/powerbi-embed-gateway/internal/domain/authz"
)

type mockSource struct {
	content string
	openErr error
}

func (m *mockSource) Open(_ context.Context) (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	return io.NopCloser(strings.NewReader(m.content)), nil
}

func TestService_IsAuthorized_Match(t *testing.T) {
	svc := authz.NewService(&mockSource{content: "alice,US\nbob,CH\n"})

	if !svc.IsAuthorized(context.Background(), "alice", "US") {
		t.Error("expected alice/US to be authorized")
	}
	if !svc.IsAuthorized(context.Background(), "bob", "CH") {
		t.Error("expected bob/CH to be authorized")
	}
}

func TestService_IsAuthorized_CaseInsensitive(t *testing.T) {
	svc := authz.NewService(&mockSource{content: "Alice,us\n"})

	if !svc.IsAuthorized(context.Background(), "ALICE", "US") {
		t.Error("expected case-insensitive match on both fields")
	}
}

func TestService_IsAuthorized_NoMatch(t *testing.T) {
	svc := authz.NewService(&mockSource{content: "bob,US\n"})

	if svc.IsAuthorized(context.Background(), "alice", "US") {
		t.Error("expected alice/US to be denied")
	}
	if svc.IsAuthorized(context.Background(), "bob", "CH") {
		t.Error("expected bob/CH to be denied: location does not match")
	}
}

func TestService_IsAuthorized_FieldOrder(t *testing.T) {
	svc := authz.NewService(&mockSource{content: "US,alice\n"})

	if svc.IsAuthorized(context.Background(), "alice", "US") {
		t.Error("expected swapped fields not to match")
	}
}

func TestService_IsAuthorized_TrimsWhitespace(t *testing.T) {
	svc := authz.NewService(&mockSource{content: "  alice ,  US  \n"})

	if !svc.IsAuthorized(context.Background(), "alice", "US") {
		t.Error("expected surrounding whitespace to be trimmed")
	}
}

func TestService_IsAuthorized_DropsEmptyFields(t *testing.T) {
	svc := authz.NewService(&mockSource{content: "alice,,US\n"})

	if !svc.IsAuthorized(context.Background(), "alice", "US") {
		t.Error("expected empty fields to be dropped before comparison")
	}
}

func TestService_IsAuthorized_SkipsMalformedLines(t *testing.T) {
	svc := authz.NewService(&mockSource{content: "justonefield\n\n   \nalice,US\n"})

	if !svc.IsAuthorized(context.Background(), "alice", "US") {
		t.Error("expected malformed and blank lines to be skipped, not fatal")
	}
	if svc.IsAuthorized(context.Background(), "justonefield", "") {
		t.Error("expected a short line never to produce a match")
	}
}

func TestService_IsAuthorized_StoreErrorDenies(t *testing.T) {
	svc := authz.NewService(&mockSource{openErr: errors.New("blob not found")})

	if svc.IsAuthorized(context.Background(), "alice", "US") {
		t.Error("expected store failure to deny, not error")
	}
}

func TestService_IsAuthorized_EmptyList(t *testing.T) {
	svc := authz.NewService(&mockSource{content: ""})

	if svc.IsAuthorized(context.Background(), "alice", "US") {
		t.Error("expected empty allow-list to deny everyone")
	}
}
