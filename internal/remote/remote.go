// Package remote defines the collaborator surface the core depends on:
// exporting live organization state and importing a bundle back into it.
package remote

import (
	"context"

	"github.com/stateset/stateset/pkg/types"
)

// Service is the seam between the snapshot/deploy core and the backend
// API. Tests inject an in-memory fake.
type Service interface {
	// ExportCurrentState serializes live remote state into the canonical
	// bundle shape.
	ExportCurrentState(ctx context.Context, includeSecrets bool) (*types.OrgExport, error)

	// ImportState applies a bundle to live state. With DryRun set it
	// previews the run without mutating anything.
	ImportState(ctx context.Context, bundle *types.OrgExport, opts types.ImportOptions) (*types.ImportResult, error)
}
