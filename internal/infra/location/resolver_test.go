package location_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/location"
)

func serveJSON(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/whereAmI" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestHTTPResolver_Resolve(t *testing.T) {
	srv := serveJSON(t, `{"location":"CH","channel":"05"}`, http.StatusOK)
	defer srv.Close()

	got := location.NewHTTPResolver(srv.URL).Resolve(context.Background())
	if got.Code != "CH" || got.Channel != "05" {
		t.Errorf("expected CH/05, got %+v", got)
	}
}

func TestHTTPResolver_Normalization(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantCode    string
		wantChannel string
	}{
		{"lowercase code upcased", `{"location":"ch","channel":"05"}`, "CH", "05"},
		{"channel zero padded", `{"location":"US","channel":"5"}`, "US", "05"},
		{"long code rejected", `{"location":"CHE","channel":"05"}`, "UNKNOWN", "05"},
		{"empty payload", `{}`, "UNKNOWN", "00"},
		{"long channel rejected", `{"location":"US","channel":"123"}`, "US", "00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := serveJSON(t, tc.body, http.StatusOK)
			defer srv.Close()

			got := location.NewHTTPResolver(srv.URL).Resolve(context.Background())
			if got.Code != tc.wantCode || got.Channel != tc.wantChannel {
				t.Errorf("expected %s/%s, got %+v", tc.wantCode, tc.wantChannel, got)
			}
		})
	}
}

func TestHTTPResolver_FailureDegradesToUnknown(t *testing.T) {
	srv := serveJSON(t, `boom`, http.StatusInternalServerError)
	defer srv.Close()

	got := location.NewHTTPResolver(srv.URL).Resolve(context.Background())
	if got != location.Unknown {
		t.Errorf("expected Unknown, got %+v", got)
	}
}

func TestStatic_Resolve(t *testing.T) {
	s := &location.Static{Location: location.Location{Code: "CH", Channel: "05"}}
	if got := s.Resolve(context.Background()); got.Code != "CH" || got.Channel != "05" {
		t.Errorf("expected CH/05, got %+v", got)
	}
}
