// Simulation ties the ecosystem registry to the interaction and prediction
// engines. It is the single entry point used by the menu and the CLI.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/ecosim/internal/ecosystem"
)

// Simulation holds the registry of ecosystems and runs engine operations
// against it.
type Simulation struct {
	Registry *ecosystem.Registry
}

// NewSimulation creates a Simulation over reg.
func NewSimulation(reg *ecosystem.Registry) *Simulation {
	return &Simulation{Registry: reg}
}

// CreateEcosystem creates a new, empty ecosystem.
func (s *Simulation) CreateEcosystem(name string, c ecosystem.Conditions) error {
	return s.Registry.Create(name, c)
}

// LoadEcosystem returns a snapshot of the named ecosystem.
func (s *Simulation) LoadEcosystem(name string) (*ecosystem.Ecosystem, error) {
	return s.Registry.Snapshot(name)
}

// ListEcosystems returns the names of all stored ecosystems.
func (s *Simulation) ListEcosystems() ([]string, error) {
	return s.Registry.Names()
}

// AddPlant validates name and adds it as a plant.
func (s *Simulation) AddPlant(eco, name string) error {
	if err := ecosystem.ValidateName(name); err != nil {
		return err
	}
	return s.Registry.AddSpecies(eco, ecosystem.NewPlant(name))
}

// AddAnimal validates name and adds it as an animal with diet d.
func (s *Simulation) AddAnimal(eco, name string, d ecosystem.Diet) error {
	if err := ecosystem.ValidateName(name); err != nil {
		return err
	}
	if d == ecosystem.DietNone {
		return fmt.Errorf("%w: animal %s needs a diet", ecosystem.ErrInvalidDiet, name)
	}
	return s.Registry.AddSpecies(eco, ecosystem.NewAnimal(name, d))
}

// RemoveSpecies deletes a species by exact name and kind.
func (s *Simulation) RemoveSpecies(eco, name string, kind ecosystem.Kind) error {
	return s.Registry.RemoveSpecies(eco, name, kind)
}

// UpdateDiet changes the diet of an existing animal.
func (s *Simulation) UpdateDiet(eco, animal string, d ecosystem.Diet) error {
	if d == ecosystem.DietNone {
		return fmt.Errorf("%w: animal %s needs a diet", ecosystem.ErrInvalidDiet, animal)
	}
	return s.Registry.UpdateDiet(eco, animal, d)
}

// Interact resolves one feeding attempt. Lookups and mutations run under the
// ecosystem's lock, so the outcome is decided against a state nobody else
// can change mid-way.
func (s *Simulation) Interact(eco, predator, prey string) (Outcome, error) {
	var out Outcome
	err := s.Registry.Exclusive(eco, func(tx *ecosystem.Tx) error {
		var err error
		out, err = NewResolver(tx).Resolve(eco, predator, prey)
		return err
	})
	if err != nil {
		slog.Error("interaction failed", "ecosystem", eco, "predator", predator, "prey", prey, "error", err)
		return out, err
	}

	slog.Info("interaction resolved", "ecosystem", eco,
		"predator", predator, "prey", prey, "branch", out.Branch.String())
	return out, nil
}

// Conditions returns the current conditions of eco.
func (s *Simulation) Conditions(eco string) (ecosystem.Conditions, error) {
	var c ecosystem.Conditions
	err := s.Registry.Exclusive(eco, func(tx *ecosystem.Tx) error {
		c = tx.Conditions()
		return nil
	})
	return c, err
}

// UpdateConditions replaces the conditions of eco.
func (s *Simulation) UpdateConditions(eco string, c ecosystem.Conditions) error {
	return s.Registry.SetConditions(eco, c)
}

// Predict forecasts population trends from eco's current conditions.
func (s *Simulation) Predict(eco string) (Forecast, error) {
	c, err := s.Conditions(eco)
	if err != nil {
		return Forecast{}, err
	}
	f := Predict(c)

	slog.Info("prediction", "ecosystem", eco, "conditions", c.String(),
		"plants", f.Plants.String(), "animals", f.Animals.String())
	return f, nil
}

// History returns the interaction log of eco, oldest first.
func (s *Simulation) History(eco string) ([]ecosystem.Interaction, error) {
	snap, err := s.Registry.Snapshot(eco)
	if err != nil {
		return nil, err
	}
	return snap.Log(), nil
}
