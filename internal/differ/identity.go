package differ

import (
	"fmt"
	"strings"

	"github.com/stateset/stateset/pkg/types"
)

// EntityIdentity derives a stable comparison key for one entity. The rules
// apply in order: an "id" field, a "uuid" field, a kind-specific name field
// (agent_name for agents, rule_name for rules, and so on) or a generic
// "name" field prefixed by the collection, and finally the positional
// index. Entities matched by name that are renamed between snapshots show
// up as one added plus one removed row; that is an accepted limitation of
// name-based identity, not something the engine papers over.
func EntityIdentity(collection string, index int, entity types.Entity) string {
	if id := scalarField(entity, "id"); id != "" {
		return id
	}
	if id := scalarField(entity, "uuid"); id != "" {
		return id
	}

	singular := strings.TrimSuffix(collection, "s")
	for _, field := range []string{singular + "_name", "name"} {
		if name := scalarField(entity, field); name != "" {
			return collection + ":" + name
		}
	}

	return fmt.Sprintf("%s:#%d", collection, index)
}

// scalarField returns the string form of a scalar field, or "" when the
// field is absent, empty, or not a scalar.
func scalarField(entity types.Entity, field string) string {
	value, ok := entity[field]
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	case bool:
		return ""
	default:
		return ""
	}
}
