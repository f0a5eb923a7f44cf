package types

// DiffRow is the row-level delta for one collection.
type DiffRow struct {
	Collection string `json:"collection"`
	FromCount  int    `json:"fromCount"`
	ToCount    int    `json:"toCount"`
	Added      int    `json:"added"`
	Removed    int    `json:"removed"`
	Changed    int    `json:"changed"`
}

// DiffSummary covers all collections in the fixed order, even when a
// collection is empty on both sides, so two summaries are positionally
// comparable.
type DiffSummary struct {
	FromRef string    `json:"fromRef"`
	ToRef   string    `json:"toRef"`
	Rows    []DiffRow `json:"rows"`
}

// HasChanges reports whether any row carries a non-zero delta.
func (s *DiffSummary) HasChanges() bool {
	for _, row := range s.Rows {
		if row.Added != 0 || row.Removed != 0 || row.Changed != 0 {
			return true
		}
	}
	return false
}

// TotalChanges sums added, removed, and changed counts across all rows.
func (s *DiffSummary) TotalChanges() int {
	total := 0
	for _, row := range s.Rows {
		total += row.Added + row.Removed + row.Changed
	}
	return total
}
