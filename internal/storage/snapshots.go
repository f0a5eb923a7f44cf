// Package storage manages the on-disk snapshot directory: creating,
// listing, resolving, and reading OrgExport bundles.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sserrors "github.com/stateset/stateset/internal/errors"
	"github.com/stateset/stateset/pkg/types"
)

// SnapshotPrefix is the file-name prefix given to snapshots created by this
// tool. Listing also admits any .json file containing "snapshot" so that
// hand-named files remain addressable.
const SnapshotPrefix = "snapshot-"

// Store manages a directory of timestamped snapshot files.
type Store struct {
	dir string
}

// NewStore creates a snapshot store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the snapshot directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a bundle as a named snapshot and returns its metadata. An
// empty name produces a timestamped one.
func (s *Store) Save(name string, bundle *types.OrgExport) (*types.SnapshotInfo, error) {
	if name == "" {
		name = fmt.Sprintf("%s%s", SnapshotPrefix, time.Now().Format("2006-01-02T15-04-05"))
	} else {
		name = sanitizeFilename(name)
		if !strings.Contains(strings.ToLower(name), "snapshot") {
			name = SnapshotPrefix + name
		}
	}
	name = strings.TrimSuffix(name, ".json") + ".json"

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}

	return &types.SnapshotInfo{
		ID:       strings.TrimSuffix(name, ".json"),
		FileName: name,
		Path:     path,
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
	}, nil
}

// List returns the snapshots in the store, newest first by modification
// time, restricted to files named with the snapshot prefix or containing
// "snapshot".
func (s *Store) List() ([]types.SnapshotInfo, error) {
	all, err := s.candidates()
	if err != nil {
		return nil, err
	}

	var infos []types.SnapshotInfo
	for _, info := range all {
		if strings.HasPrefix(info.FileName, SnapshotPrefix) || strings.Contains(strings.ToLower(info.FileName), "snapshot") {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// candidates returns every .json file in the directory, newest first.
// Resolution works over all files so that hand-placed bundles are
// addressable even when their names fall outside the List filter.
func (s *Store) candidates() ([]types.SnapshotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var infos []types.SnapshotInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		stat, err := entry.Info()
		if err != nil {
			continue
		}

		infos = append(infos, types.SnapshotInfo{
			ID:       strings.TrimSuffix(name, ".json"),
			FileName: name,
			Path:     filepath.Join(s.dir, name),
			Size:     stat.Size(),
			ModTime:  stat.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ModTime.After(infos[j].ModTime)
	})

	return infos, nil
}

// Resolve maps a human-supplied reference to exactly one snapshot path.
//
// Resolution order: empty reference means the newest snapshot; an existing
// file path is taken verbatim; otherwise the reference is normalized
// (basename, .json stripped, lowercased) and matched against snapshot ids
// by exact match, then unique prefix, then unique substring. An ambiguous
// prefix match is reported as such; the substring stage also requires
// uniqueness but reports a plain not-found, preserving the historical
// leniency that scripts may depend on.
func (s *Store) Resolve(reference string) (string, error) {
	if reference == "" {
		infos, err := s.candidates()
		if err != nil {
			return "", err
		}
		if len(infos) == 0 {
			return "", sserrors.New(sserrors.ErrorTypeReference, "no snapshots found").
				WithSolutions("Run 'stateset snapshot create' to capture one")
		}
		return infos[0].Path, nil
	}

	if stat, err := os.Stat(reference); err == nil && !stat.IsDir() {
		return reference, nil
	}

	needle := strings.ToLower(strings.TrimSuffix(filepath.Base(reference), ".json"))

	infos, err := s.candidates()
	if err != nil {
		return "", err
	}

	for _, info := range infos {
		if strings.ToLower(info.ID) == needle {
			return info.Path, nil
		}
	}

	var prefixMatches []types.SnapshotInfo
	for _, info := range infos {
		if strings.HasPrefix(strings.ToLower(info.ID), needle) {
			prefixMatches = append(prefixMatches, info)
		}
	}
	if len(prefixMatches) == 1 {
		return prefixMatches[0].Path, nil
	}
	if len(prefixMatches) > 1 {
		ids := make([]string, len(prefixMatches))
		for i, info := range prefixMatches {
			ids[i] = info.ID
		}
		return "", sserrors.Newf(sserrors.ErrorTypeReference,
			"ambiguous snapshot reference %q", reference).
			WithCause(fmt.Sprintf("matches: %s", strings.Join(ids, ", "))).
			WithSolutions("Use a longer prefix or the full snapshot id")
	}

	var substringMatches []types.SnapshotInfo
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.ID), needle) {
			substringMatches = append(substringMatches, info)
		}
	}
	if len(substringMatches) == 1 {
		return substringMatches[0].Path, nil
	}

	return "", sserrors.Newf(sserrors.ErrorTypeReference, "snapshot not found: %s", reference).
		WithSolutions(
			"Run 'stateset snapshot list' to see available snapshots",
			"Pass a file path directly",
		)
}

// Read loads and validates an OrgExport bundle from a snapshot file.
func (s *Store) Read(path string) (*types.OrgExport, error) {
	return readExportFile(path)
}

// sanitizeFilename replaces characters that are unsafe in file names.
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "-")
	}
	return result
}
