package embed

import (
	"strings"
	"time"
)

// Request is the inbound embed-token request. Groups is carried through for
// the caller's benefit but plays no part in the authorization decision.
type Request struct {
	WorkspaceID  string   `json:"workspaceId"`
	ReportID     string   `json:"reportId"`
	Username     string   `json:"username"`
	Groups       []string `json:"groups,omitempty"`
	UserLocation string   `json:"userLocation"`
}

// MissingFields returns the names of every absent required field, in
// declaration order. Identifiers are not checked for UUID shape here; that
// happens at the point of use.
func (r *Request) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.WorkspaceID) == "" {
		missing = append(missing, "WorkspaceId")
	}
	if strings.TrimSpace(r.ReportID) == "" {
		missing = append(missing, "ReportId")
	}
	if strings.TrimSpace(r.Username) == "" {
		missing = append(missing, "Username")
	}
	if strings.TrimSpace(r.UserLocation) == "" {
		missing = append(missing, "UserLocation")
	}
	return missing
}

// Result is the single response envelope used on every terminal path. On
// success EmbedToken is set and Error empty; on failure the reverse. The
// fields are independently optional so one shape covers all failure points.
type Result struct {
	EmbedToken  string     `json:"embedToken,omitempty"`
	Expiration  *time.Time `json:"expiration,omitempty"`
	Error       string     `json:"error,omitempty"`
	ReportID    string     `json:"reportId,omitempty"`
	WorkspaceID string     `json:"workspaceId,omitempty"`
}

// Outcome classifies a terminal pipeline state for status mapping.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeClientError covers malformed or incomplete requests.
	OutcomeClientError
	// OutcomeDenied covers the authorization check returning false, which by
	// policy includes an unreachable or misconfigured allow-list store.
	OutcomeDenied
	// OutcomeFailed covers credential acquisition and issuance failures.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeClientError:
		return "client_error"
	case OutcomeDenied:
		return "denied"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
