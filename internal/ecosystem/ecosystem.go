package ecosystem

import "sort"

// Ecosystem is the aggregate root: a named set of plants, a set of animals
// keyed by name with their diet, one Conditions snapshot and the ordered
// interaction log.
//
// Ecosystem does no locking of its own. Loaded ecosystems are owned by a
// Registry, which serialises access per ecosystem.
type Ecosystem struct {
	Name string

	plants     map[string]struct{}
	animals    map[string]Diet
	conditions Conditions
	log        []Interaction
}

// New creates an empty ecosystem with its initial conditions.
func New(name string, c Conditions) *Ecosystem {
	return &Ecosystem{
		Name:       name,
		plants:     make(map[string]struct{}),
		animals:    make(map[string]Diet),
		conditions: c,
	}
}

// AddSpecies inserts a species into its collection, replacing any record
// with the same name and kind.
func (e *Ecosystem) AddSpecies(s Species) {
	switch s.Kind {
	case KindPlant:
		e.plants[s.Name] = struct{}{}
	case KindAnimal:
		e.animals[s.Name] = s.Diet
	}
}

// RemoveSpecies deletes the exact name from the kind's collection.
// It reports whether anything was removed.
func (e *Ecosystem) RemoveSpecies(name string, kind Kind) bool {
	switch kind {
	case KindPlant:
		if _, ok := e.plants[name]; ok {
			delete(e.plants, name)
			return true
		}
	case KindAnimal:
		if _, ok := e.animals[name]; ok {
			delete(e.animals, name)
			return true
		}
	}
	return false
}

// HasPlant reports whether a plant with exactly this name exists.
func (e *Ecosystem) HasPlant(name string) bool {
	_, ok := e.plants[name]
	return ok
}

// DietOf returns the diet of the named animal, or false if there is none.
func (e *Ecosystem) DietOf(name string) (Diet, bool) {
	d, ok := e.animals[name]
	return d, ok
}

// SetDiet changes the diet of an existing animal.
func (e *Ecosystem) SetDiet(name string, d Diet) bool {
	if _, ok := e.animals[name]; !ok {
		return false
	}
	e.animals[name] = d
	return true
}

// Plants returns the plants in name order.
func (e *Ecosystem) Plants() []Species {
	out := make([]Species, 0, len(e.plants))
	for name := range e.plants {
		out = append(out, NewPlant(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Animals returns the animals in name order.
func (e *Ecosystem) Animals() []Species {
	out := make([]Species, 0, len(e.animals))
	for name, d := range e.animals {
		out = append(out, NewAnimal(name, d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Species returns plants followed by animals.
func (e *Ecosystem) Species() []Species {
	return append(e.Plants(), e.Animals()...)
}

// Conditions returns the current environmental snapshot.
func (e *Ecosystem) Conditions() Conditions {
	return e.conditions
}

// SetConditions replaces the environmental snapshot.
func (e *Ecosystem) SetConditions(c Conditions) {
	e.conditions = c
}

// Record appends an entry to the interaction log.
func (e *Ecosystem) Record(in Interaction) {
	e.log = append(e.log, in)
}

// Log returns a copy of the interaction log, oldest first.
func (e *Ecosystem) Log() []Interaction {
	out := make([]Interaction, len(e.log))
	copy(out, e.log)
	return out
}

// Clone returns a deep copy.
func (e *Ecosystem) Clone() *Ecosystem {
	c := New(e.Name, e.conditions)
	for name := range e.plants {
		c.plants[name] = struct{}{}
	}
	for name, d := range e.animals {
		c.animals[name] = d
	}
	c.log = e.Log()
	return c
}
