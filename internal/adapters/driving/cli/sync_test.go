package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driving"
	"github.com/windlass-labs/windlass/internal/dispatch"
)

func summaryOutput(finished []dispatch.Result) string {
	buf := new(bytes.Buffer)
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	printSummary(cmd, finished)
	return buf.String()
}

func TestPrintSummary_AggregatesPages(t *testing.T) {
	job := domain.SyncJob{OrganisationID: "org-1"}
	out := summaryOutput([]dispatch.Result{
		{Job: job, Report: &driving.PageReport{Status: domain.PageOngoing, UsersUpserted: 50}},
		{Job: job.WithCursor("p2"), Report: &driving.PageReport{Status: domain.PageCompleted, UsersUpserted: 12}},
	})

	assert.Contains(t, out, "Organisation org-1: 62 user(s) across 2 page(s)")
}

func TestPrintSummary_ReportsFailures(t *testing.T) {
	job := domain.SyncJob{OrganisationID: "org-1"}
	out := summaryOutput([]dispatch.Result{
		{Job: job, Err: errors.New("gateway timeout"), Attempts: 3},
	})

	assert.Contains(t, out, "failed after 1 page(s)")
	assert.Contains(t, out, "gateway timeout")
	assert.NotContains(t, out, "connection disabled")
}

func TestPrintSummary_TerminalFailureMentionsDisconnect(t *testing.T) {
	job := domain.SyncJob{OrganisationID: "org-1"}
	out := summaryOutput([]dispatch.Result{
		{Job: job, Err: domain.Terminal("authorization rejected", domain.ErrUnauthorized), Attempts: 1},
	})

	assert.Contains(t, out, "connection disabled, reconnect to resume syncing")
}
