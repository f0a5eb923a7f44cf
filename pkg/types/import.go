package types

// ImportOptions controls how a bundle is applied to live state.
type ImportOptions struct {
	DryRun bool `json:"dryRun"`
	Strict bool `json:"strict"`
}

// ImportFailure is one per-entity failure reported by the import
// collaborator. The run continues past individual failures.
type ImportFailure struct {
	Collection string `json:"collection"`
	EntityID   string `json:"entityId,omitempty"`
	Reason     string `json:"reason"`
}

// ImportResult summarizes an import run: per-collection created counts,
// skipped entities, and the failures that occurred along the way.
type ImportResult struct {
	DryRun   bool            `json:"dryRun"`
	Created  map[string]int  `json:"created"`
	Skipped  int             `json:"skipped"`
	Failures []ImportFailure `json:"failures"`
}

// TotalCreated sums created counts across all collections.
func (r *ImportResult) TotalCreated() int {
	total := 0
	for _, n := range r.Created {
		total += n
	}
	return total
}

// FailureSample returns at most n failures for display. Failures are never
// silently dropped; callers show the sample plus the total count.
func (r *ImportResult) FailureSample(n int) []ImportFailure {
	if len(r.Failures) <= n {
		return r.Failures
	}
	return r.Failures[:n]
}
