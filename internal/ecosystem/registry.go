package ecosystem

import (
	"fmt"
	"log/slog"
	"sync"
)

// Store persists ecosystems. Implementations live in internal/persistence.
type Store interface {
	// List returns the names of all stored ecosystems in sorted order.
	List() ([]string, error)
	Exists(name string) (bool, error)
	// Create stores a new ecosystem. It fails with ErrEcosystemExists if the
	// name is taken.
	Create(eco *Ecosystem) error
	// Load reads a full ecosystem, or fails with ErrEcosystemNotFound.
	Load(name string) (*Ecosystem, error)
	// SaveSpecies replaces the stored plant and animal sets of eco.
	SaveSpecies(eco *Ecosystem) error
	SaveConditions(name string, c Conditions) error
	// AppendInteraction adds one entry to the stored log. Stores that assign
	// IDs or timestamps set them on in.
	AppendInteraction(name string, in *Interaction) error
	Close() error
}

// Registry keeps loaded ecosystems in memory, keyed by name, and writes every
// change through to a Store. Each ecosystem has its own lock so different
// ecosystems can be worked on independently.
type Registry struct {
	store Store

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu  sync.Mutex
	eco *Ecosystem
	// stale is set under mu when a failed write may have left the store
	// out of step with eco. A stale entry is reloaded on next use.
	stale bool
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store:   store,
		entries: make(map[string]*entry),
	}
}

// Names returns all ecosystems known to the store.
func (r *Registry) Names() ([]string, error) {
	names, err := r.store.List()
	if err != nil {
		return nil, fmt.Errorf("list ecosystems: %w", err)
	}
	return names, nil
}

// Create validates the name, persists a new empty ecosystem and caches it.
func (r *Registry) Create(name string, c Conditions) error {
	if err := ValidateEcosystemName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %s", ErrEcosystemExists, name)
	}
	exists, err := r.store.Exists(name)
	if err != nil {
		return fmt.Errorf("check ecosystem %s: %w", name, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrEcosystemExists, name)
	}

	eco := New(name, c)
	if err := r.store.Create(eco); err != nil {
		return fmt.Errorf("create ecosystem %s: %w", name, err)
	}
	r.entries[name] = &entry{eco: eco}

	slog.Info("ecosystem created", "ecosystem", name, "conditions", c.String())
	return nil
}

// open returns the cached entry for name, loading it from the store on first use.
func (r *Registry) open(name string) (*entry, error) {
	r.mu.RLock()
	ent, ok := r.entries[name]
	r.mu.RUnlock()
	if ok {
		return ent, nil
	}

	if err := ValidateEcosystemName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ent, ok := r.entries[name]; ok {
		return ent, nil
	}

	eco, err := r.store.Load(name)
	if err != nil {
		return nil, fmt.Errorf("load ecosystem %s: %w", name, err)
	}
	ent = &entry{eco: eco}
	r.entries[name] = ent

	slog.Debug("ecosystem loaded", "ecosystem", name,
		"plants", len(eco.plants), "animals", len(eco.animals), "interactions", len(eco.log))
	return ent, nil
}

// Exclusive runs fn while holding the named ecosystem's lock. Everything fn
// does through tx is one critical section.
func (r *Registry) Exclusive(name string, fn func(tx *Tx) error) error {
	ent, err := r.lock(name)
	if err != nil {
		return err
	}
	defer ent.mu.Unlock()
	return fn(&Tx{reg: r, ent: ent})
}

// lock returns the locked entry for name, skipping entries evicted while
// the caller waited for them.
func (r *Registry) lock(name string) (*entry, error) {
	for {
		ent, err := r.open(name)
		if err != nil {
			return nil, err
		}
		ent.mu.Lock()
		if !ent.stale {
			return ent, nil
		}
		ent.mu.Unlock()
	}
}

// evict drops ent from the cache after a failed write so the next access
// reads the store again. The caller holds ent.mu.
func (r *Registry) evict(ent *entry) {
	ent.stale = true
	r.mu.Lock()
	if r.entries[ent.eco.Name] == ent {
		delete(r.entries, ent.eco.Name)
	}
	r.mu.Unlock()
	slog.Warn("ecosystem evicted after failed write", "ecosystem", ent.eco.Name)
}

// Snapshot returns a copy of the named ecosystem.
func (r *Registry) Snapshot(name string) (*Ecosystem, error) {
	var snap *Ecosystem
	err := r.Exclusive(name, func(tx *Tx) error {
		snap = tx.ent.eco.Clone()
		return nil
	})
	return snap, err
}

// DietOf reports the diet of an animal. Unknown ecosystems and names yield false.
func (r *Registry) DietOf(eco, name string) (Diet, bool) {
	var (
		d  Diet
		ok bool
	)
	_ = r.Exclusive(eco, func(tx *Tx) error {
		d, ok = tx.DietOf(eco, name)
		return nil
	})
	return d, ok
}

// IsPlant reports whether name is a plant of eco.
func (r *Registry) IsPlant(eco, name string) bool {
	var ok bool
	_ = r.Exclusive(eco, func(tx *Tx) error {
		ok = tx.IsPlant(eco, name)
		return nil
	})
	return ok
}

// AddSpecies adds or replaces a species.
func (r *Registry) AddSpecies(eco string, s Species) error {
	return r.Exclusive(eco, func(tx *Tx) error { return tx.AddSpecies(eco, s) })
}

// RemoveSpecies deletes a species by exact name and kind.
func (r *Registry) RemoveSpecies(eco, name string, kind Kind) error {
	return r.Exclusive(eco, func(tx *Tx) error { return tx.RemoveSpecies(eco, name, kind) })
}

// UpdateDiet changes the diet of an existing animal.
func (r *Registry) UpdateDiet(eco, name string, d Diet) error {
	return r.Exclusive(eco, func(tx *Tx) error { return tx.UpdateDiet(eco, name, d) })
}

// AppendInteraction adds a log entry.
func (r *Registry) AppendInteraction(eco, text string) error {
	return r.Exclusive(eco, func(tx *Tx) error { return tx.AppendInteraction(eco, text) })
}

// SetConditions replaces the conditions snapshot.
func (r *Registry) SetConditions(eco string, c Conditions) error {
	return r.Exclusive(eco, func(tx *Tx) error { return tx.SetConditions(eco, c) })
}

// Tx is one ecosystem held under its lock. Mutations are persisted first
// and only then applied in memory. A failed write evicts the cached copy,
// so later calls see whatever the store actually holds.
type Tx struct {
	reg *Registry
	ent *entry
}

// Name returns the name of the held ecosystem.
func (tx *Tx) Name() string {
	return tx.ent.eco.Name
}

// Conditions returns the held ecosystem's conditions.
func (tx *Tx) Conditions() Conditions {
	return tx.ent.eco.Conditions()
}

func (tx *Tx) holds(eco string) bool {
	return tx.ent.eco.Name == eco
}

func (tx *Tx) check(eco string) error {
	if !tx.holds(eco) {
		return fmt.Errorf("%w: %s (holding %s)", ErrEcosystemNotFound, eco, tx.ent.eco.Name)
	}
	return nil
}

// DietOf returns the diet of an animal in the held ecosystem.
func (tx *Tx) DietOf(eco, name string) (Diet, bool) {
	if !tx.holds(eco) {
		return DietNone, false
	}
	return tx.ent.eco.DietOf(name)
}

// IsPlant reports plant membership in the held ecosystem.
func (tx *Tx) IsPlant(eco, name string) bool {
	return tx.holds(eco) && tx.ent.eco.HasPlant(name)
}

// AddSpecies adds or replaces a species.
func (tx *Tx) AddSpecies(eco string, s Species) error {
	if err := tx.check(eco); err != nil {
		return err
	}
	return tx.commitSpecies(func(next *Ecosystem) error {
		next.AddSpecies(s)
		return nil
	}, "species added", "species", s.String())
}

// RemoveSpecies deletes a species by exact name and kind.
func (tx *Tx) RemoveSpecies(eco, name string, kind Kind) error {
	if err := tx.check(eco); err != nil {
		return err
	}
	return tx.commitSpecies(func(next *Ecosystem) error {
		if !next.RemoveSpecies(name, kind) {
			return fmt.Errorf("%w: %s %s in %s", ErrSpeciesNotFound, kind, name, eco)
		}
		return nil
	}, "species removed", "species", name, "kind", kind.String())
}

// UpdateDiet changes the diet of an existing animal.
func (tx *Tx) UpdateDiet(eco, name string, d Diet) error {
	if err := tx.check(eco); err != nil {
		return err
	}
	return tx.commitSpecies(func(next *Ecosystem) error {
		if !next.SetDiet(name, d) {
			return fmt.Errorf("%w: animal %s in %s", ErrSpeciesNotFound, name, eco)
		}
		return nil
	}, "diet updated", "animal", name, "diet", d.String())
}

func (tx *Tx) commitSpecies(mutate func(next *Ecosystem) error, msg string, attrs ...any) error {
	next := tx.ent.eco.Clone()
	if err := mutate(next); err != nil {
		return err
	}
	if err := tx.reg.store.SaveSpecies(next); err != nil {
		tx.reg.evict(tx.ent)
		return fmt.Errorf("save species of %s: %w", next.Name, err)
	}
	tx.ent.eco = next

	slog.Info(msg, append([]any{"ecosystem", next.Name}, attrs...)...)
	return nil
}

// AppendInteraction adds a log entry.
func (tx *Tx) AppendInteraction(eco, text string) error {
	if err := tx.check(eco); err != nil {
		return err
	}
	in := Interaction{Text: text}
	if err := tx.reg.store.AppendInteraction(eco, &in); err != nil {
		tx.reg.evict(tx.ent)
		return fmt.Errorf("record interaction in %s: %w", eco, err)
	}
	tx.ent.eco.Record(in)

	slog.Info("interaction recorded", "ecosystem", eco, "interaction", text)
	return nil
}

// SetConditions replaces the conditions snapshot.
func (tx *Tx) SetConditions(eco string, c Conditions) error {
	if err := tx.check(eco); err != nil {
		return err
	}
	if err := tx.reg.store.SaveConditions(eco, c); err != nil {
		tx.reg.evict(tx.ent)
		return fmt.Errorf("save conditions of %s: %w", eco, err)
	}
	tx.ent.eco.SetConditions(c)

	slog.Info("conditions updated", "ecosystem", eco, "conditions", c.String())
	return nil
}
