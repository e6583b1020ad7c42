package powerbi

import "time"

// Report is the subset of the report resource the issuance pipeline reads.
type Report struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	DatasetID string `json:"datasetId"`
	EmbedURL  string `json:"embedUrl,omitempty"`
	WebURL    string `json:"webUrl,omitempty"`
}

// GenerateTokenRequest is the V2 multi-resource token request. The pipeline
// always scopes it to exactly one report, one dataset and one workspace.
type GenerateTokenRequest struct {
	Datasets         []DatasetRef   `json:"datasets"`
	Reports          []ReportRef    `json:"reports"`
	TargetWorkspaces []WorkspaceRef `json:"targetWorkspaces"`
}

type DatasetRef struct {
	ID string `json:"id"`
}

type ReportRef struct {
	ID        string `json:"id"`
	AllowEdit bool   `json:"allowEdit"`
}

type WorkspaceRef struct {
	ID string `json:"id"`
}

// EmbedToken is the minted embed credential. Expiration is zero when the
// service omitted it.
type EmbedToken struct {
	Token      string    `json:"token"`
	TokenID    string    `json:"tokenId,omitempty"`
	Expiration time.Time `json:"expiration,omitempty"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
