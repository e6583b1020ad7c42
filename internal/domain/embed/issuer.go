package embed

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/google/uuid"

	"github.com/astro-web3/powerbi-embed-gateway/internal/infra/powerbi"
	"github.com/astro-web3/powerbi-embed-gateway/pkg/logger"
)

// Issuer resolves a report and mints a view-only embed token scoped to that
// single report, its dataset and the target workspace.
type Issuer struct {
	reports powerbi.Client
}

func NewIssuer(reports powerbi.Client) *Issuer {
	return &Issuer{reports: reports}
}

// Issue is a single best-effort attempt: no retry, no backoff. Every failure,
// from identifier parsing through token generation, lands in the Result error
// field with the original identifiers echoed for correlation.
func (i *Issuer) Issue(ctx context.Context, bearer, workspaceID, reportID string) *Result {
	fail := func(msg string) *Result {
		return &Result{Error: msg, ReportID: reportID, WorkspaceID: workspaceID}
	}

	wsID, err := uuid.Parse(workspaceID)
	if err != nil {
		return fail(fmt.Sprintf("invalid workspace id %q: %v", workspaceID, err))
	}
	repID, err := uuid.Parse(reportID)
	if err != nil {
		return fail(fmt.Sprintf("invalid report id %q: %v", reportID, err))
	}

	// Resolution doubles as the existence check.
	report, err := i.reports.GetReportInGroup(ctx, bearer, wsID, repID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to resolve report",
			slog.String("workspace_id", workspaceID),
			slog.String("report_id", reportID),
			slog.String("error", err.Error()),
		)
		return fail(err.Error())
	}

	genReq := &powerbi.GenerateTokenRequest{
		Datasets:         []powerbi.DatasetRef{{ID: report.DatasetID}},
		Reports:          []powerbi.ReportRef{{ID: report.ID, AllowEdit: false}},
		TargetWorkspaces: []powerbi.WorkspaceRef{{ID: wsID.String()}},
	}

	token, err := i.reports.GenerateToken(ctx, bearer, genReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate embed token",
			slog.String("workspace_id", workspaceID),
			slog.String("report_id", reportID),
			slog.String("error", err.Error()),
		)
		return fail(err.Error())
	}

	result := &Result{
		EmbedToken:  token.Token,
		ReportID:    reportID,
		WorkspaceID: workspaceID,
	}
	if !token.Expiration.IsZero() {
		exp := token.Expiration.UTC()
		result.Expiration = &exp
	}
	return result
}
