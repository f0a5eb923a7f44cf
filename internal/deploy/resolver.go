package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/stateset/stateset/internal/remote"
	"github.com/stateset/stateset/internal/storage"
	"github.com/stateset/stateset/pkg/types"
)

// Aliases for a source reference that mean "export live state right now
// and resolve against that".
func isLiveAlias(ref string) bool {
	switch ref {
	case "current", "live", "remote":
		return true
	}
	return false
}

// Resolver materializes the bundle behind a source reference. It is the
// one place that owns live-export temp files: both the promotion path and
// the diff command resolve through it, so the cleanup semantics cannot
// drift apart.
type Resolver struct {
	snapshots *storage.Store
	remote    remote.Service
}

// NewResolver creates a source resolver over the snapshot store and the
// remote collaborator.
func NewResolver(snapshots *storage.Store, svc remote.Service) *Resolver {
	return &Resolver{snapshots: snapshots, remote: svc}
}

// Resolve returns the bundle behind ref, a display label, and a cleanup
// the caller must defer. Live aliases ("current", "live", "remote")
// export remote state into a temporary file that the cleanup removes;
// "latest" and "" resolve to the newest snapshot; a directory is read as
// a directory bundle; anything else goes through snapshot resolution.
// The cleanup is safe to call unconditionally and is a no-op for
// non-live references.
func (r *Resolver) Resolve(ctx context.Context, ref string, includeSecrets bool) (*types.OrgExport, string, func(), error) {
	noop := func() {}

	if isLiveAlias(ref) {
		bundle, err := r.remote.ExportCurrentState(ctx, includeSecrets)
		if err != nil {
			return nil, "", noop, fmt.Errorf("failed to export live state: %w", err)
		}

		tempFile, err := os.CreateTemp("", "stateset-live-*.json")
		if err != nil {
			return nil, "", noop, fmt.Errorf("failed to create temp export: %w", err)
		}
		tempPath := tempFile.Name()
		tempFile.Close()
		cleanup := func() { os.Remove(tempPath) }

		if err := writeTempExport(tempPath, bundle); err != nil {
			cleanup()
			return nil, "", noop, err
		}
		return bundle, "live", cleanup, nil
	}

	if ref == "latest" {
		ref = ""
	}

	// A directory reference is a directory bundle; anything else resolves
	// through the snapshot store.
	if stat, err := os.Stat(ref); ref != "" && err == nil && stat.IsDir() {
		bundle, err := storage.ReadBundle(ref)
		if err != nil {
			return nil, "", noop, err
		}
		return bundle, ref, noop, nil
	}

	path, err := r.snapshots.Resolve(ref)
	if err != nil {
		return nil, "", noop, err
	}
	bundle, err := r.snapshots.Read(path)
	if err != nil {
		return nil, "", noop, err
	}
	return bundle, path, noop, nil
}

func writeTempExport(path string, bundle *types.OrgExport) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode temp export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp export: %w", err)
	}
	return nil
}
