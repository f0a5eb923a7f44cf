package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sserrors "github.com/stateset/stateset/internal/errors"
	"github.com/stateset/stateset/pkg/types"
)

// Manifest is the optional config.json descriptor inside a directory
// bundle.
type Manifest struct {
	Version     string         `json:"version"`
	OrgID       string         `json:"orgId"`
	ExportedAt  time.Time      `json:"exportedAt"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Resources   map[string]int `json:"resources"`
}

// collectionFileNames maps collection names to their on-disk file names
// inside a directory bundle.
var collectionFileNames = map[string]string{
	types.CollectionAgents:        "agents.json",
	types.CollectionRules:         "rules.json",
	types.CollectionSkills:        "skills.json",
	types.CollectionAttributes:    "attributes.json",
	types.CollectionFunctions:     "functions.json",
	types.CollectionExamples:      "examples.json",
	types.CollectionEvals:         "evals.json",
	types.CollectionDatasets:      "datasets.json",
	types.CollectionAgentSettings: "agent-settings.json",
}

// ReadBundle loads an OrgExport from either a single bundle file or a
// directory bundle (a lone snapshot.json, or per-collection files plus an
// optional config.json manifest).
func ReadBundle(path string) (*types.OrgExport, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, sserrors.Newf(sserrors.ErrorTypeFileSystem, "bundle not found: %s", path).
			WithCause(err.Error())
	}

	if !stat.IsDir() {
		return readExportFile(path)
	}

	single := filepath.Join(path, "snapshot.json")
	if _, err := os.Stat(single); err == nil {
		return readExportFile(single)
	}

	bundle := &types.OrgExport{
		Version:    "1.0.0",
		OrgID:      "local",
		ExportedAt: stat.ModTime(),
	}

	if manifest, err := readManifest(filepath.Join(path, "config.json")); err == nil {
		if manifest.Version != "" {
			bundle.Version = manifest.Version
		}
		if manifest.OrgID != "" {
			bundle.OrgID = manifest.OrgID
		}
		if !manifest.ExportedAt.IsZero() {
			bundle.ExportedAt = manifest.ExportedAt
		}
	}

	for name, fileName := range collectionFileNames {
		entities, err := readCollectionFile(filepath.Join(path, fileName))
		if err != nil {
			return nil, err
		}
		bundle.SetCollection(name, entities)
	}

	bundle.Normalize()
	return bundle, nil
}

// WriteBundleDir writes a bundle as a directory of per-collection files
// plus a config.json manifest carrying resource counts.
func WriteBundleDir(dir string, bundle *types.OrgExport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create bundle directory: %w", err)
	}

	resources := make(map[string]int)
	for _, name := range types.CollectionNames() {
		entities := bundle.Collection(name)
		if entities == nil {
			entities = []types.Entity{}
		}
		resources[name] = len(entities)

		data, err := json.MarshalIndent(entities, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", name, err)
		}
		if err := WriteFileAtomic(filepath.Join(dir, collectionFileNames[name]), data, 0o644); err != nil {
			return err
		}
	}

	manifest := Manifest{
		Version:     bundle.Version,
		OrgID:       bundle.OrgID,
		ExportedAt:  bundle.ExportedAt,
		GeneratedAt: time.Now(),
		Resources:   resources,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return WriteFileAtomic(filepath.Join(dir, "config.json"), data, 0o644)
}

func readExportFile(path string) (*types.OrgExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sserrors.Newf(sserrors.ErrorTypeFileSystem, "failed to read bundle %s", path).
			WithCause(err.Error())
	}

	var bundle types.OrgExport
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, sserrors.Newf(sserrors.ErrorTypeFormat, "invalid bundle JSON in %s", path).
			WithCause(err.Error())
	}
	if err := bundle.Validate(); err != nil {
		return nil, sserrors.Newf(sserrors.ErrorTypeFormat, "invalid bundle in %s", path).
			WithCause(err.Error())
	}

	bundle.Normalize()
	return &bundle, nil
}

func readCollectionFile(path string) ([]types.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Entity{}, nil
		}
		return nil, sserrors.Newf(sserrors.ErrorTypeFileSystem, "failed to read %s", path).
			WithCause(err.Error())
	}

	var entities []types.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, sserrors.Newf(sserrors.ErrorTypeFormat, "invalid collection JSON in %s", path).
			WithCause(err.Error())
	}
	if entities == nil {
		entities = []types.Entity{}
	}
	return entities, nil
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}
