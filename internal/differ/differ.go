// Package differ compares two OrgExport bundles collection by collection
// and produces row-level added/removed/changed counts.
package differ

import (
	"github.com/stateset/stateset/internal/canonical"
	"github.com/stateset/stateset/pkg/types"
)

// Differ compares OrgExport bundles.
type Differ struct{}

// New creates a Differ.
func New() *Differ {
	return &Differ{}
}

// Compare diffs two bundles and returns one row per collection in the
// fixed collection order. Neither bundle is mutated.
//
// The comparison is symmetric: added counts in Compare(a, b) equal removed
// counts in Compare(b, a) for every collection, and comparing a bundle with
// itself yields all-zero rows.
func (d *Differ) Compare(fromRef, toRef string, before, after *types.OrgExport) *types.DiffSummary {
	summary := &types.DiffSummary{
		FromRef: fromRef,
		ToRef:   toRef,
		Rows:    make([]types.DiffRow, 0, len(types.CollectionNames())),
	}

	for _, name := range types.CollectionNames() {
		fromEntities := before.Collection(name)
		toEntities := after.Collection(name)

		fromKeys := keyEntities(name, fromEntities)
		toKeys := keyEntities(name, toEntities)

		row := types.DiffRow{
			Collection: name,
			FromCount:  len(fromEntities),
			ToCount:    len(toEntities),
		}

		for id, fromCanonical := range fromKeys {
			toCanonical, exists := toKeys[id]
			if !exists {
				row.Removed++
				continue
			}
			if fromCanonical != toCanonical {
				row.Changed++
			}
		}
		for id := range toKeys {
			if _, exists := fromKeys[id]; !exists {
				row.Added++
			}
		}

		summary.Rows = append(summary.Rows, row)
	}

	return summary
}

// keyEntities maps each entity's identity to its canonical encoding.
func keyEntities(collection string, entities []types.Entity) map[string]string {
	keyed := make(map[string]string, len(entities))
	for i, entity := range entities {
		id := EntityIdentity(collection, i, entity)
		keyed[id] = canonical.Canonicalize(map[string]any(entity))
	}
	return keyed
}
