package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateset/stateset/internal/deploy"
	"github.com/stateset/stateset/internal/logger"
	"github.com/stateset/stateset/internal/output"
	"github.com/stateset/stateset/internal/remote"
	"github.com/stateset/stateset/internal/storage"
	"github.com/stateset/stateset/pkg/types"
)

// newDiffTestApp wires an app against a fake backend: one saved snapshot
// ("base") and a live state that differs from it.
func newDiffTestApp(t *testing.T) (*app, *remote.Fake) {
	t.Helper()

	snapshots, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	saved := &types.OrgExport{Version: "1.0.0", OrgID: "org-test", ExportedAt: time.Now()}
	saved.Agents = []types.Entity{{"id": "1", "name": "support"}}
	saved.Normalize()
	_, err = snapshots.Save("base", saved)
	require.NoError(t, err)

	fake := remote.NewFake()
	live := &types.OrgExport{Version: "1.0.0", OrgID: "org-test", ExportedAt: time.Now()}
	live.Agents = []types.Entity{{"id": "1", "name": "renamed"}}
	live.Normalize()
	fake.State = live

	deployments := deploy.NewStore(filepath.Join(t.TempDir(), "deployments.json"))
	log := logger.NewWithOutput("error", io.Discard)

	return &app{
		log:          log,
		snapshots:    snapshots,
		deployments:  deployments,
		remote:       fake,
		orchestrator: deploy.NewOrchestrator(deployments, snapshots, fake, log),
		resolver:     deploy.NewResolver(snapshots, fake),
		formatter:    output.NewFormatter(true),
		format:       "table",
	}, fake
}

func liveExportFiles(t *testing.T) map[string]bool {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(os.TempDir(), "stateset-live-*.json"))
	require.NoError(t, err)
	set := make(map[string]bool, len(matches))
	for _, path := range matches {
		set[path] = true
	}
	return set
}

func newQuietDiffInvocation(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := newDiffCommand()
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.Flags().Set("quiet", "true"))
	return cmd
}

func TestRunDiff_ChangesAgainstLiveRemovesTempExport(t *testing.T) {
	a, _ := newDiffTestApp(t)
	before := liveExportFiles(t)

	err := a.runDiff(newQuietDiffInvocation(t), []string{"base", "current"})
	require.ErrorIs(t, err, errChangesDetected)

	// The live export must be gone even though the run ends non-zero.
	for path := range liveExportFiles(t) {
		assert.True(t, before[path], "live export %s leaked", path)
	}
}

func TestRunDiff_NoChangesReturnsNil(t *testing.T) {
	a, fake := newDiffTestApp(t)
	fake.State.Agents = []types.Entity{{"id": "1", "name": "support"}}

	err := a.runDiff(newQuietDiffInvocation(t), []string{"base", "current"})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.ExportCalls)
}
