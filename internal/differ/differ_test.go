package differ

import (
	"testing"

	"github.com/stateset/stateset/pkg/types"
)

func bundleWith(agents ...types.Entity) *types.OrgExport {
	bundle := &types.OrgExport{
		Version: "1.0.0",
		OrgID:   "org-test",
		Agents:  agents,
	}
	bundle.Normalize()
	return bundle
}

func TestCompare_IdenticalBundles(t *testing.T) {
	bundle := bundleWith(
		types.Entity{"id": "1", "name": "support-agent"},
		types.Entity{"id": "2", "name": "sales-agent"},
	)

	summary := New().Compare("a", "a", bundle, bundle)

	if len(summary.Rows) != len(types.CollectionNames()) {
		t.Fatalf("expected %d rows, got %d", len(types.CollectionNames()), len(summary.Rows))
	}
	for _, row := range summary.Rows {
		if row.Added != 0 || row.Removed != 0 || row.Changed != 0 {
			t.Errorf("collection %s: expected zero deltas, got %+v", row.Collection, row)
		}
	}
	if summary.HasChanges() {
		t.Error("identical bundles should report no changes")
	}
}

func TestCompare_AddedRemovedChanged(t *testing.T) {
	before := bundleWith(types.Entity{"id": "1", "name": "x"})
	after := bundleWith(
		types.Entity{"id": "1", "name": "y"},
		types.Entity{"id": "2", "name": "z"},
	)

	summary := New().Compare("before", "after", before, after)

	row := summary.Rows[0]
	if row.Collection != types.CollectionAgents {
		t.Fatalf("expected agents row first, got %s", row.Collection)
	}
	if row.FromCount != 1 || row.ToCount != 2 {
		t.Errorf("expected counts 1/2, got %d/%d", row.FromCount, row.ToCount)
	}
	if row.Added != 1 || row.Removed != 0 || row.Changed != 1 {
		t.Errorf("expected added=1 removed=0 changed=1, got %+v", row)
	}
}

func TestCompare_Symmetry(t *testing.T) {
	a := bundleWith(
		types.Entity{"id": "1", "name": "x"},
		types.Entity{"id": "3", "name": "kept"},
	)
	b := bundleWith(
		types.Entity{"id": "2", "name": "z"},
		types.Entity{"id": "3", "name": "kept"},
	)

	forward := New().Compare("a", "b", a, b)
	reverse := New().Compare("b", "a", b, a)

	for i := range forward.Rows {
		if forward.Rows[i].Added != reverse.Rows[i].Removed {
			t.Errorf("collection %s: forward added %d != reverse removed %d",
				forward.Rows[i].Collection, forward.Rows[i].Added, reverse.Rows[i].Removed)
		}
		if forward.Rows[i].Removed != reverse.Rows[i].Added {
			t.Errorf("collection %s: forward removed %d != reverse added %d",
				forward.Rows[i].Collection, forward.Rows[i].Removed, reverse.Rows[i].Added)
		}
		if forward.Rows[i].Changed != reverse.Rows[i].Changed {
			t.Errorf("collection %s: changed counts differ across direction",
				forward.Rows[i].Collection)
		}
	}
}

func TestCompare_KeyOrderDoesNotCount(t *testing.T) {
	before := bundleWith(types.Entity{"id": "1", "name": "x", "config": map[string]any{"a": "1", "b": "2"}})
	after := bundleWith(types.Entity{"config": map[string]any{"b": "2", "a": "1"}, "name": "x", "id": "1"})

	summary := New().Compare("before", "after", before, after)
	if summary.Rows[0].Changed != 0 {
		t.Errorf("map key order alone should not register a change, got %+v", summary.Rows[0])
	}
}

func TestCompare_FixedRowOrder(t *testing.T) {
	empty := bundleWith()
	summary := New().Compare("a", "b", empty, empty)

	for i, name := range types.CollectionNames() {
		if summary.Rows[i].Collection != name {
			t.Errorf("row %d: expected %s, got %s", i, name, summary.Rows[i].Collection)
		}
	}
}

func TestEntityIdentity_FallbackChain(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		index      int
		entity     types.Entity
		want       string
	}{
		{"id wins", "agents", 0, types.Entity{"id": "abc", "uuid": "u1", "name": "n"}, "abc"},
		{"numeric id", "agents", 0, types.Entity{"id": 42.0}, "42"},
		{"uuid next", "agents", 0, types.Entity{"uuid": "u1", "name": "n"}, "u1"},
		{"kind-specific name", "agents", 0, types.Entity{"agent_name": "helper"}, "agents:helper"},
		{"rule name", "rules", 0, types.Entity{"rule_name": "refund-policy"}, "rules:refund-policy"},
		{"generic name", "skills", 0, types.Entity{"name": "triage"}, "skills:triage"},
		{"positional fallback", "evals", 3, types.Entity{"payload": "x"}, "evals:#3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EntityIdentity(tt.collection, tt.index, tt.entity); got != tt.want {
				t.Errorf("EntityIdentity() = %q, want %q", got, tt.want)
			}
		})
	}
}
