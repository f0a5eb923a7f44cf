package types

import (
	"errors"
	"strings"
	"time"
)

// Entity is one record inside a collection. Records are schemaless on the
// wire; identity extraction and canonicalization operate structurally.
type Entity map[string]any

// Collection names in their fixed presentation order. Diff summaries and
// directory bundles always follow this order.
const (
	CollectionAgents        = "agents"
	CollectionRules         = "rules"
	CollectionSkills        = "skills"
	CollectionAttributes    = "attributes"
	CollectionFunctions     = "functions"
	CollectionExamples      = "examples"
	CollectionEvals         = "evals"
	CollectionDatasets      = "datasets"
	CollectionAgentSettings = "agentSettings"
)

// CollectionNames returns the fixed collection order shared by the diff
// engine, the bundle reader/writer, and all formatters.
func CollectionNames() []string {
	return []string{
		CollectionAgents,
		CollectionRules,
		CollectionSkills,
		CollectionAttributes,
		CollectionFunctions,
		CollectionExamples,
		CollectionEvals,
		CollectionDatasets,
		CollectionAgentSettings,
	}
}

// OrgExport is the canonical bundle: a point-in-time capture of every
// tracked collection for one organization.
type OrgExport struct {
	Version       string    `json:"version"`
	OrgID         string    `json:"orgId"`
	ExportedAt    time.Time `json:"exportedAt"`
	Agents        []Entity  `json:"agents"`
	Rules         []Entity  `json:"rules"`
	Skills        []Entity  `json:"skills"`
	Attributes    []Entity  `json:"attributes"`
	Functions     []Entity  `json:"functions"`
	Examples      []Entity  `json:"examples"`
	Evals         []Entity  `json:"evals"`
	Datasets      []Entity  `json:"datasets"`
	AgentSettings []Entity  `json:"agentSettings"`
}

// Validate checks the structural requirements of a bundle.
func (e *OrgExport) Validate() error {
	if strings.TrimSpace(e.Version) == "" {
		return errors.New("bundle version is required")
	}
	if strings.TrimSpace(e.OrgID) == "" {
		return errors.New("bundle orgId is required")
	}
	return nil
}

// Normalize ensures every collection is a non-nil slice. Bundles read from
// disk may omit collections; downstream code relies on them being present.
func (e *OrgExport) Normalize() {
	for _, name := range CollectionNames() {
		if e.Collection(name) == nil {
			e.SetCollection(name, []Entity{})
		}
	}
}

// Collection returns the named collection, or nil for an unknown name.
func (e *OrgExport) Collection(name string) []Entity {
	switch name {
	case CollectionAgents:
		return e.Agents
	case CollectionRules:
		return e.Rules
	case CollectionSkills:
		return e.Skills
	case CollectionAttributes:
		return e.Attributes
	case CollectionFunctions:
		return e.Functions
	case CollectionExamples:
		return e.Examples
	case CollectionEvals:
		return e.Evals
	case CollectionDatasets:
		return e.Datasets
	case CollectionAgentSettings:
		return e.AgentSettings
	}
	return nil
}

// SetCollection replaces the named collection. Unknown names are ignored.
func (e *OrgExport) SetCollection(name string, entities []Entity) {
	switch name {
	case CollectionAgents:
		e.Agents = entities
	case CollectionRules:
		e.Rules = entities
	case CollectionSkills:
		e.Skills = entities
	case CollectionAttributes:
		e.Attributes = entities
	case CollectionFunctions:
		e.Functions = entities
	case CollectionExamples:
		e.Examples = entities
	case CollectionEvals:
		e.Evals = entities
	case CollectionDatasets:
		e.Datasets = entities
	case CollectionAgentSettings:
		e.AgentSettings = entities
	}
}

// EntityCount returns the total number of entities across all collections.
func (e *OrgExport) EntityCount() int {
	total := 0
	for _, name := range CollectionNames() {
		total += len(e.Collection(name))
	}
	return total
}
