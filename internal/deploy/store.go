// Package deploy tracks promotions through their lifecycle: a persisted
// deployment log plus the orchestrator that drives records through the
// scheduling and approval state machine.
package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	sserrors "github.com/stateset/stateset/internal/errors"
	"github.com/stateset/stateset/internal/storage"
	"github.com/stateset/stateset/pkg/types"
)

// Store owns the on-disk deployment log. Every mutation goes through load,
// modify, persist with an atomic whole-file replace. Access within one
// process is serialized; concurrent CLI invocations against the same log
// are an operational constraint, not something the store locks against.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a deployment store backed by the given log file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status types.DeploymentStatus
	Mode   types.DeploymentMode
}

// Create persists a new deployment record, assigning its id and
// timestamps.
func (s *Store) Create(d types.Deployment) (*types.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	d.ID = "dep-" + uuid.NewString()[:8]
	d.CreatedAt = now
	d.UpdatedAt = now

	records = append(records, d)
	if err := s.persist(records); err != nil {
		return nil, err
	}
	return &d, nil
}

// Get returns the deployment with the given id, or one uniquely identified
// by an id prefix.
func (s *Store) Get(id string) (*types.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	return find(records, id)
}

// Update applies mutate to the identified record and persists the result,
// refreshing updatedAt. The mutated copy is returned.
func (s *Store) Update(id string, mutate func(*types.Deployment)) (*types.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	target, err := find(records, id)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID == target.ID {
			mutate(&records[i])
			records[i].UpdatedAt = time.Now()
			updated := records[i]
			if err := s.persist(records); err != nil {
				return nil, err
			}
			return &updated, nil
		}
	}
	return nil, sserrors.Newf(sserrors.ErrorTypeReference, "deployment not found: %s", id)
}

// List returns deployments matching the filter, newest first.
func (s *Store) List(filter Filter) ([]types.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	var out []types.Deployment
	for _, d := range records {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.Mode != "" && d.Mode != filter.Mode {
			continue
		}
		out = append(out, d)
	}

	// Newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Delete removes a record from the log and returns it.
func (s *Store) Delete(id string) (*types.Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	target, err := find(records, id)
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	for _, d := range records {
		if d.ID != target.ID {
			kept = append(kept, d)
		}
	}
	if err := s.persist(kept); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *Store) load() ([]types.Deployment, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read deployment log: %w", err)
	}

	var records []types.Deployment
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, sserrors.Newf(sserrors.ErrorTypeFormat, "corrupt deployment log at %s", s.path).
			WithCause(err.Error())
	}
	return records, nil
}

func (s *Store) persist(records []types.Deployment) error {
	if records == nil {
		records = []types.Deployment{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deployment log: %w", err)
	}
	return storage.WriteFileAtomic(s.path, data, 0o644)
}

func find(records []types.Deployment, id string) (*types.Deployment, error) {
	for i := range records {
		if records[i].ID == id {
			d := records[i]
			return &d, nil
		}
	}

	var matches []types.Deployment
	for _, d := range records {
		if strings.HasPrefix(d.ID, id) {
			matches = append(matches, d)
		}
	}
	if len(matches) == 1 {
		d := matches[0]
		return &d, nil
	}
	if len(matches) > 1 {
		return nil, sserrors.Newf(sserrors.ErrorTypeReference, "ambiguous deployment id: %s", id)
	}
	return nil, sserrors.Newf(sserrors.ErrorTypeReference, "deployment not found: %s", id)
}
