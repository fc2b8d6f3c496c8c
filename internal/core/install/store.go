package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/stackabletech/stackable/internal/core/spec"
)

const stateFileName = "installed.json"

// Record is one successful stack or demo installation.
type Record struct {
	Kind              spec.Kind         `json:"kind" yaml:"kind"`
	Name              string            `json:"name" yaml:"name"`
	Stack             string            `json:"stack,omitempty" yaml:"stack,omitempty"`
	Release           string            `json:"release,omitempty" yaml:"release,omitempty"`
	OperatorNamespace string            `json:"operator_namespace,omitempty" yaml:"operatorNamespace,omitempty"`
	ProductNamespace  string            `json:"product_namespace" yaml:"productNamespace"`
	Parameters        map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	InstallTime       time.Time         `json:"install_time" yaml:"installTime"`
	Status            string            `json:"status" yaml:"status"`
}

func (r Record) key() string {
	return string(r.Kind) + "/" + r.ProductNamespace + "/" + r.Name
}

func recordFor(p *plan) Record {
	rec := Record{
		Kind:             p.kind,
		Name:             p.name,
		Stack:            p.stackName,
		Release:          p.releaseName,
		ProductNamespace: p.ic.ProductNamespace,
		Parameters:       lo.Assign(p.stackParams, p.demoParams),
		InstallTime:      time.Now(),
		Status:           "installed",
	}
	if !p.ic.SkipRelease {
		rec.OperatorNamespace = p.ic.OperatorNamespace
	}
	return rec
}

// Store keeps installation records in a JSON file under a state directory.
type Store struct {
	stateDir string
	mu       sync.Mutex
}

func NewStore(stateDir string) *Store {
	return &Store{stateDir: stateDir}
}

func (s *Store) path() string {
	return filepath.Join(s.stateDir, stateFileName)
}

func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	state[rec.key()] = rec
	return s.write(state)
}

func (s *Store) Remove(kind spec.Kind, name, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	key := Record{Kind: kind, Name: name, ProductNamespace: namespace}.key()
	if _, ok := state[key]; !ok {
		return fmt.Errorf("%s %q is not recorded as installed in namespace %q", kind, name, namespace)
	}
	delete(state, key)
	return s.write(state)
}

// List returns records ordered by install time.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}
	records := lo.Values(state)
	sort.Slice(records, func(i, j int) bool {
		return records[i].InstallTime.Before(records[j].InstallTime)
	})
	return records, nil
}

func (s *Store) load() (map[string]Record, error) {
	state := make(map[string]Record)

	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return state, nil
}

func (s *Store) write(state map[string]Record) error {
	if err := os.MkdirAll(s.stateDir, 0o750); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// Each writer gets its own temp file, so concurrent processes never
	// rename a half written state file into place.
	tmp, err := os.CreateTemp(s.stateDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path()); err != nil {
		return fmt.Errorf("failed to move state file into place: %w", err)
	}
	return nil
}
