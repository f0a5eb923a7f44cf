package deploy

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sserrors "github.com/stateset/stateset/internal/errors"
	"github.com/stateset/stateset/internal/logger"
	"github.com/stateset/stateset/internal/remote"
	"github.com/stateset/stateset/internal/storage"
	"github.com/stateset/stateset/pkg/types"
)

type harness struct {
	orchestrator *Orchestrator
	store        *Store
	snapshots    *storage.Store
	fake         *remote.Fake
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	snapshots, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	bundle := &types.OrgExport{Version: "1.0.0", OrgID: "org-test", ExportedAt: time.Now()}
	bundle.Agents = []types.Entity{{"id": "1", "name": "support"}}
	bundle.Normalize()
	_, err = snapshots.Save("prod-v1", bundle)
	require.NoError(t, err)

	store := NewStore(filepath.Join(t.TempDir(), "deployments.json"))
	fake := remote.NewFake()
	log := logger.NewWithOutput("error", io.Discard)

	return &harness{
		orchestrator: NewOrchestrator(store, snapshots, fake, log),
		store:        store,
		snapshots:    snapshots,
		fake:         fake,
	}
}

func TestPromote_DryRunStopsAfterPreview(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.orchestrator.Promote(context.Background(), PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
		DryRun: true,
	})
	require.NoError(t, err)

	assert.NotNil(t, outcome.Preview)
	assert.Nil(t, outcome.Applied)
	require.Len(t, h.fake.ImportCalls, 1)
	assert.True(t, h.fake.ImportCalls[0].DryRun)
}

func TestPromote_RequiresConfirmation(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.orchestrator.Promote(context.Background(), PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
	})
	require.Error(t, err)
	assert.True(t, sserrors.IsType(err, sserrors.ErrorTypeValidation))
	assert.NotNil(t, outcome.Preview)
	assert.Nil(t, outcome.Applied)

	// Only the dry-run preview hit the collaborator.
	require.Len(t, h.fake.ImportCalls, 1)
	assert.True(t, h.fake.ImportCalls[0].DryRun)
}

func TestPromote_AppliesWithYes(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.orchestrator.Promote(context.Background(), PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
		Yes:    true,
	})
	require.NoError(t, err)

	assert.NotNil(t, outcome.Applied)
	require.Len(t, h.fake.ImportCalls, 2)
	assert.True(t, h.fake.ImportCalls[0].DryRun)
	assert.False(t, h.fake.ImportCalls[1].DryRun)
}

func TestPromote_StrictEscalatesFailures(t *testing.T) {
	h := newHarness(t)
	h.fake.Result = &types.ImportResult{
		Created: map[string]int{"agents": 1},
		Failures: []types.ImportFailure{
			{Collection: "rules", EntityID: "r1", Reason: "invalid condition"},
		},
	}

	_, err := h.orchestrator.Promote(context.Background(), PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
		Strict: true,
		Yes:    true,
	})
	require.Error(t, err)
	assert.True(t, sserrors.IsType(err, sserrors.ErrorTypeImportFailure))
}

func TestPromote_ToleratesFailuresWithoutStrict(t *testing.T) {
	h := newHarness(t)
	h.fake.Result = &types.ImportResult{
		Created: map[string]int{"agents": 1},
		Failures: []types.ImportFailure{
			{Collection: "rules", EntityID: "r1", Reason: "invalid condition"},
		},
	}

	outcome, err := h.orchestrator.Promote(context.Background(), PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
		Yes:    true,
	})
	require.NoError(t, err)
	assert.Len(t, outcome.Applied.Failures, 1)
}

func TestPromote_LiveAliasExportsAndCleansUp(t *testing.T) {
	h := newHarness(t)

	_, err := h.orchestrator.Promote(context.Background(), PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "current",
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.fake.ExportCalls)
}

func TestSchedule_CreatesScheduledRecord(t *testing.T) {
	h := newHarness(t)

	d, err := h.orchestrator.Schedule(PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
		Strict: true,
	}, "+2h")
	require.NoError(t, err)

	assert.Equal(t, types.StatusScheduled, d.Status)
	assert.Equal(t, types.ModeDeploy, d.Mode)
	assert.True(t, d.Strict)
	require.NotNil(t, d.ScheduledFor)
	assert.True(t, d.ScheduledFor.After(time.Now().Add(time.Hour)))
}

func TestApprove_TransitionsToApplied(t *testing.T) {
	h := newHarness(t)

	created, err := h.orchestrator.Schedule(PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
	}, "now")
	require.NoError(t, err)

	d, err := h.orchestrator.Approve(context.Background(), created.ID, types.ModeDeploy, ApproveOverrides{})
	require.NoError(t, err)

	assert.Equal(t, types.StatusApplied, d.Status)
	assert.NotNil(t, d.ApprovedAt)
	assert.NotNil(t, d.AppliedAt)
	assert.True(t, d.Yes, "approval forces confirmation")
}

func TestApprove_DryRunScheduleStillAppliesForReal(t *testing.T) {
	h := newHarness(t)

	created, err := h.orchestrator.Schedule(PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
		DryRun: true,
	}, "now")
	require.NoError(t, err)

	d, err := h.orchestrator.Approve(context.Background(), created.ID, types.ModeDeploy, ApproveOverrides{})
	require.NoError(t, err)

	assert.Equal(t, types.StatusApplied, d.Status)
	assert.False(t, d.DryRun, "approval applies for real")

	// The applied status must be backed by a non-dry-run import.
	require.Len(t, h.fake.ImportCalls, 2)
	assert.True(t, h.fake.ImportCalls[0].DryRun)
	assert.False(t, h.fake.ImportCalls[1].DryRun)
}

func TestApprove_ImportFailureLandsInFailed(t *testing.T) {
	h := newHarness(t)
	h.fake.ImportErr = errors.New("backend unavailable")

	created, err := h.orchestrator.Schedule(PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
	}, "now")
	require.NoError(t, err)

	d, err := h.orchestrator.Approve(context.Background(), created.ID, types.ModeDeploy, ApproveOverrides{})
	require.Error(t, err)

	require.NotNil(t, d)
	assert.Equal(t, types.StatusFailed, d.Status)
	assert.Contains(t, d.Error, "backend unavailable")
}

func TestApprove_RejectsAppliedWithoutMutation(t *testing.T) {
	h := newHarness(t)

	created, err := h.orchestrator.Schedule(PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
	}, "now")
	require.NoError(t, err)

	applied, err := h.orchestrator.Approve(context.Background(), created.ID, types.ModeDeploy, ApproveOverrides{})
	require.NoError(t, err)

	_, err = h.orchestrator.Approve(context.Background(), created.ID, types.ModeDeploy, ApproveOverrides{})
	require.Error(t, err)
	assert.True(t, sserrors.IsType(err, sserrors.ErrorTypeStateTransition))

	// The record is untouched by the rejected approval.
	got, err := h.store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, got.Status)
	assert.Equal(t, applied.UpdatedAt.Unix(), got.UpdatedAt.Unix())
}

func TestApprove_ModeMismatchRejected(t *testing.T) {
	h := newHarness(t)

	created, err := h.orchestrator.Schedule(PromoteOptions{
		Mode:   types.ModeRollback,
		Source: "prod-v1",
	}, "now")
	require.NoError(t, err)

	_, err = h.orchestrator.Approve(context.Background(), created.ID, types.ModeDeploy, ApproveOverrides{})
	require.Error(t, err)
	assert.True(t, sserrors.IsType(err, sserrors.ErrorTypeStateTransition))
}

func TestApprove_SourceOverrideIsPersisted(t *testing.T) {
	h := newHarness(t)

	created, err := h.orchestrator.Schedule(PromoteOptions{
		Mode: types.ModeDeploy,
	}, "now")
	require.NoError(t, err)

	d, err := h.orchestrator.Approve(context.Background(), created.ID, types.ModeDeploy,
		ApproveOverrides{Source: "prod-v1"})
	require.NoError(t, err)
	assert.Equal(t, "prod-v1", d.Source)
	assert.Equal(t, types.StatusApplied, d.Status)
}

func TestApprove_MissingSourceRejected(t *testing.T) {
	h := newHarness(t)

	created, err := h.orchestrator.Schedule(PromoteOptions{
		Mode: types.ModeDeploy,
	}, "now")
	require.NoError(t, err)

	_, err = h.orchestrator.Approve(context.Background(), created.ID, types.ModeDeploy, ApproveOverrides{})
	require.Error(t, err)
	assert.True(t, sserrors.IsType(err, sserrors.ErrorTypeValidation))
}

func TestCancel_Transitions(t *testing.T) {
	h := newHarness(t)

	created, err := h.orchestrator.Schedule(PromoteOptions{
		Mode:   types.ModeDeploy,
		Source: "prod-v1",
	}, "+1h")
	require.NoError(t, err)

	cancelled, err := h.orchestrator.Cancel(created.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCancelled, cancelled.Status)

	// Cancelling again is an illegal transition.
	_, err = h.orchestrator.Cancel(created.ID)
	require.Error(t, err)
	assert.True(t, sserrors.IsType(err, sserrors.ErrorTypeStateTransition))
}
