package embed_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/astro-web3/powerbi-embed-gateway/internal/domain/embed"
	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/powerbi"
)

const (
	workspaceID = "11111111-1111-1111-1111-111111111111"
	reportID    = "22222222-2222-2222-2222-222222222222"
)

type mockAuthorizer struct {
	allow  bool
	called bool
}

func (m *mockAuthorizer) IsAuthorized(_ context.Context, _, _ string) bool {
	m.called = true
	return m.allow
}

type mockAcquirer struct {
	token  string
	err    error
	called bool
}

func (m *mockAcquirer) Acquire(_ context.Context) (string, error) {
	m.called = true
	return m.token, m.err
}

type mockReportClient struct {
	report         *powerbi.Report
	reportErr      error
	token          *powerbi.EmbedToken
	tokenErr       error
	generateCalled bool
}

func (m *mockReportClient) GetReportInGroup(
	_ context.Context, _ string, _, _ uuid.UUID,
) (*powerbi.Report, error) {
	return m.report, m.reportErr
}

func (m *mockReportClient) GenerateToken(
	_ context.Context, _ string, _ *powerbi.GenerateTokenRequest,
) (*powerbi.EmbedToken, error) {
	m.generateCalled = true
	return m.token, m.tokenErr
}

func validRequest() *embed.Request {
	return &embed.Request{
		WorkspaceID:  workspaceID,
		ReportID:     reportID,
		Username:     "alice",
		UserLocation: "US",
	}
}

func newService(auth *mockAuthorizer, acq *mockAcquirer, reports *mockReportClient) embed.Service {
	return embed.NewService(auth, acq, embed.NewIssuer(reports))
}

func TestService_MissingFields(t *testing.T) {
	auth := &mockAuthorizer{allow: true}
	svc := newService(auth, &mockAcquirer{token: "t"}, &mockReportClient{})

	result, outcome := svc.GenerateEmbedToken(context.Background(), &embed.Request{Username: "alice"})

	if outcome != embed.OutcomeClientError {
		t.Fatalf("expected client error outcome, got %v", outcome)
	}
	for _, name := range []string{"WorkspaceId", "ReportId", "UserLocation"} {
		if !strings.Contains(result.Error, name) {
			t.Errorf("expected error to list %s, got %q", name, result.Error)
		}
	}
	if strings.Contains(result.Error, "Username") {
		t.Errorf("did not expect Username in %q", result.Error)
	}
	if auth.called {
		t.Error("authorization must not run for an invalid request")
	}
}

func TestService_MissingFields_AllListed(t *testing.T) {
	svc := newService(&mockAuthorizer{}, &mockAcquirer{}, &mockReportClient{})

	result, outcome := svc.GenerateEmbedToken(context.Background(), &embed.Request{})

	if outcome != embed.OutcomeClientError {
		t.Fatalf("expected client error outcome, got %v", outcome)
	}
	want := "Missing required fields: WorkspaceId, ReportId, Username, UserLocation"
	if result.Error != want {
		t.Errorf("expected %q, got %q", want, result.Error)
	}
}

func TestService_Denied_ShortCircuits(t *testing.T) {
	acq := &mockAcquirer{token: "t"}
	reports := &mockReportClient{}
	svc := newService(&mockAuthorizer{allow: false}, acq, reports)

	result, outcome := svc.GenerateEmbedToken(context.Background(), validRequest())

	if outcome != embed.OutcomeDenied {
		t.Fatalf("expected denied outcome, got %v", outcome)
	}
	if result.Error != "User and location not authorized" {
		t.Errorf("unexpected error %q", result.Error)
	}
	if result.EmbedToken != "" {
		t.Error("expected no embed token on denial")
	}
	if acq.called {
		t.Error("credential acquisition must not run after denial")
	}
	if reports.generateCalled {
		t.Error("issuer must not run after denial")
	}
}

func TestService_CredentialFailure_ShortCircuits(t *testing.T) {
	reports := &mockReportClient{}
	svc := newService(
		&mockAuthorizer{allow: true},
		&mockAcquirer{err: errors.New("secret expired")},
		reports,
	)

	result, outcome := svc.GenerateEmbedToken(context.Background(), validRequest())

	if outcome != embed.OutcomeFailed {
		t.Fatalf("expected failed outcome, got %v", outcome)
	}
	if result.Error != "Failed to acquire Power BI access token" {
		t.Errorf("unexpected error %q", result.Error)
	}
	if reports.generateCalled {
		t.Error("issuer must not run after credential failure")
	}
}

func TestService_Success(t *testing.T) {
	exp := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	reports := &mockReportClient{
		report: &powerbi.Report{ID: reportID, DatasetID: "ds-1"},
		token:  &powerbi.EmbedToken{Token: "embed-abc", Expiration: exp},
	}
	svc := newService(&mockAuthorizer{allow: true}, &mockAcquirer{token: "bearer"}, reports)

	result, outcome := svc.GenerateEmbedToken(context.Background(), validRequest())

	if outcome != embed.OutcomeSuccess {
		t.Fatalf("expected success outcome, got %v (error %q)", outcome, result.Error)
	}
	if result.EmbedToken != "embed-abc" {
		t.Errorf("expected embed-abc, got %q", result.EmbedToken)
	}
	if result.Error != "" {
		t.Errorf("expected empty error, got %q", result.Error)
	}
	if result.ReportID != reportID || result.WorkspaceID != workspaceID {
		t.Errorf("expected identifiers echoed, got %+v", result)
	}
	if result.Expiration == nil || !result.Expiration.Equal(exp) {
		t.Errorf("expected expiration %v, got %v", exp, result.Expiration)
	}
}

func TestIssuer_InvalidIdentifier(t *testing.T) {
	reports := &mockReportClient{}
	issuer := embed.NewIssuer(reports)

	result := issuer.Issue(context.Background(), "bearer", "not-a-uuid", reportID)

	if result.EmbedToken != "" || result.Error == "" {
		t.Fatalf("expected failure result, got %+v", result)
	}
	if result.WorkspaceID != "not-a-uuid" || result.ReportID != reportID {
		t.Errorf("expected identifiers echoed on failure, got %+v", result)
	}
	if reports.generateCalled {
		t.Error("token generation must not run after a parse failure")
	}
}

func TestIssuer_ResolutionFailure_SkipsGeneration(t *testing.T) {
	reports := &mockReportClient{reportErr: errors.New("report not found")}
	issuer := embed.NewIssuer(reports)

	result := issuer.Issue(context.Background(), "bearer", workspaceID, reportID)

	if result.Error == "" {
		t.Fatal("expected failure result")
	}
	if reports.generateCalled {
		t.Error("token generation must not run when resolution fails")
	}
}

func TestIssuer_ZeroExpirationLeftUnset(t *testing.T) {
	reports := &mockReportClient{
		report: &powerbi.Report{ID: reportID, DatasetID: "ds-1"},
		token:  &powerbi.EmbedToken{Token: "embed-abc"},
	}
	issuer := embed.NewIssuer(reports)

	result := issuer.Issue(context.Background(), "bearer", workspaceID, reportID)

	if result.EmbedToken != "embed-abc" {
		t.Fatalf("expected token, got %+v", result)
	}
	if result.Expiration != nil {
		t.Errorf("expected unset expiration, got %v", result.Expiration)
	}
}
