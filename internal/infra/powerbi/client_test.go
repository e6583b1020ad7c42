package powerbi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/powerbi"
)

var (
	testWorkspaceID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testReportID    = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func TestClient_GetReportInGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/v1.0/myorg/groups/" + testWorkspaceID.String() + "/reports/" + testReportID.String()
		if r.URL.Path != wantPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer pbi-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"` + testReportID.String() + `","name":"Sales","datasetId":"ds-1"}`))
	}))
	defer srv.Close()

	c := powerbi.NewClient(srv.URL)
	report, err := c.GetReportInGroup(context.Background(), "pbi-token", testWorkspaceID, testReportID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.DatasetID != "ds-1" {
		t.Errorf("expected dataset ds-1, got %q", report.DatasetID)
	}
}

func TestClient_GetReportInGroup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"ItemNotFound","message":"Report not found"}}`))
	}))
	defer srv.Close()

	c := powerbi.NewClient(srv.URL)
	_, err := c.GetReportInGroup(context.Background(), "pbi-token", testWorkspaceID, testReportID)
	if err == nil {
		t.Fatal("expected error for missing report")
	}
}

func TestClient_GenerateToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1.0/myorg/GenerateToken" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req powerbi.GenerateTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Reports) != 1 || req.Reports[0].AllowEdit {
			t.Errorf("expected exactly one view-only report, got %+v", req.Reports)
		}
		if len(req.Datasets) != 1 || len(req.TargetWorkspaces) != 1 {
			t.Errorf("expected one dataset and one workspace, got %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"embed-abc","tokenId":"tid","expiration":"2026-09-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	c := powerbi.NewClient(srv.URL)
	token, err := c.GenerateToken(context.Background(), "pbi-token", &powerbi.GenerateTokenRequest{
		Datasets:         []powerbi.DatasetRef{{ID: "ds-1"}},
		Reports:          []powerbi.ReportRef{{ID: testReportID.String(), AllowEdit: false}},
		TargetWorkspaces: []powerbi.WorkspaceRef{{ID: testWorkspaceID.String()}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token.Token != "embed-abc" {
		t.Errorf("expected embed-abc, got %q", token.Token)
	}
	if token.Expiration.IsZero() {
		t.Error("expected expiration to be parsed")
	}
}

func TestClient_GenerateToken_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"InsufficientPrivileges","message":"denied"}}`))
	}))
	defer srv.Close()

	c := powerbi.NewClient(srv.URL)
	_, err := c.GenerateToken(context.Background(), "pbi-token", &powerbi.GenerateTokenRequest{})
	if err == nil {
		t.Fatal("expected error for rejected token generation")
	}
}
