package remote

import (
	"context"
	"sync"

	"github.com/stateset/stateset/pkg/types"
)

// Fake is an in-memory Service used by tests and by dry-run tooling. It
// records calls and serves a configurable bundle and import outcome.
type Fake struct {
	mu sync.Mutex

	// State is returned by ExportCurrentState.
	State *types.OrgExport
	// Result is returned by ImportState when ImportErr is nil.
	Result *types.ImportResult
	// ImportErr, when set, fails every ImportState call.
	ImportErr error
	// ExportErr, when set, fails every ExportCurrentState call.
	ExportErr error

	ExportCalls int
	ImportCalls []types.ImportOptions
	LastBundle  *types.OrgExport
}

// NewFake creates a fake with an empty organization.
func NewFake() *Fake {
	state := &types.OrgExport{Version: "1.0.0", OrgID: "org-fake"}
	state.Normalize()
	return &Fake{
		State:  state,
		Result: &types.ImportResult{Created: make(map[string]int)},
	}
}

// ExportCurrentState implements Service.
func (f *Fake) ExportCurrentState(ctx context.Context, includeSecrets bool) (*types.OrgExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExportCalls++
	if f.ExportErr != nil {
		return nil, f.ExportErr
	}
	return f.State, nil
}

// ImportState implements Service.
func (f *Fake) ImportState(ctx context.Context, bundle *types.OrgExport, opts types.ImportOptions) (*types.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ImportCalls = append(f.ImportCalls, opts)
	f.LastBundle = bundle
	if f.ImportErr != nil {
		return nil, f.ImportErr
	}
	result := *f.Result
	result.DryRun = opts.DryRun
	return &result, nil
}
