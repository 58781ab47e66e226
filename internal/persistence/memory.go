package persistence

import (
	"fmt"
	"sort"
	"sync"

	"github.com/talgya/ecosim/internal/ecosystem"
)

// MemoryStore keeps ecosystems in process memory. It is used by tests and
// by the --backend=memory scratch mode.
type MemoryStore struct {
	mu   sync.Mutex
	ecos map[string]*ecosystem.Ecosystem

	// FailWrites makes every mutating call fail with this error when set.
	FailWrites error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ecos: make(map[string]*ecosystem.Ecosystem)}
}

func (m *MemoryStore) List() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.ecos))
	for name := range m.ecos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Exists(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ecos[name]
	return ok, nil
}

func (m *MemoryStore) Create(eco *ecosystem.Ecosystem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	if _, ok := m.ecos[eco.Name]; ok {
		return fmt.Errorf("%w: %s", ecosystem.ErrEcosystemExists, eco.Name)
	}
	m.ecos[eco.Name] = eco.Clone()
	return nil
}

func (m *MemoryStore) Load(name string) (*ecosystem.Ecosystem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	eco, ok := m.ecos[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ecosystem.ErrEcosystemNotFound, name)
	}
	return eco.Clone(), nil
}

func (m *MemoryStore) SaveSpecies(eco *ecosystem.Ecosystem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	stored, ok := m.ecos[eco.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ecosystem.ErrEcosystemNotFound, eco.Name)
	}
	next := ecosystem.New(eco.Name, stored.Conditions())
	for _, s := range eco.Species() {
		next.AddSpecies(s)
	}
	for _, in := range stored.Log() {
		next.Record(in)
	}
	m.ecos[eco.Name] = next
	return nil
}

func (m *MemoryStore) SaveConditions(name string, c ecosystem.Conditions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	stored, ok := m.ecos[name]
	if !ok {
		return fmt.Errorf("%w: %s", ecosystem.ErrEcosystemNotFound, name)
	}
	stored.SetConditions(c)
	return nil
}

func (m *MemoryStore) AppendInteraction(name string, in *ecosystem.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	stored, ok := m.ecos[name]
	if !ok {
		return fmt.Errorf("%w: %s", ecosystem.ErrEcosystemNotFound, name)
	}
	stored.Record(*in)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
