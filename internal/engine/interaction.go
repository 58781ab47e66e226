// Feeding interactions: decides whether one species may eat another and
// applies the consequences.
package engine

import (
	"fmt"

	"github.com/talgya/ecosim/internal/ecosystem"
)

// SpeciesStore is what the Resolver needs from species storage. Lookups that
// find nothing answer "not of that kind" rather than failing.
type SpeciesStore interface {
	DietOf(eco, name string) (ecosystem.Diet, bool)
	IsPlant(eco, name string) bool
	RemoveSpecies(eco, name string, kind ecosystem.Kind) error
	AppendInteraction(eco, text string) error
}

// Branch identifies which feeding rule fired.
type Branch uint8

const (
	Rejected Branch = iota
	HerbivoreAtePlant
	CarnivoreAteHerbivore
	OmnivoreAte
)

// String returns a short identifier for the branch.
func (b Branch) String() string {
	switch b {
	case Rejected:
		return "rejected"
	case HerbivoreAtePlant:
		return "herbivore_ate_plant"
	case CarnivoreAteHerbivore:
		return "carnivore_ate_herbivore"
	case OmnivoreAte:
		return "omnivore_ate"
	default:
		return "unknown"
	}
}

// Outcome is the result of one resolution.
type Outcome struct {
	Branch   Branch
	Predator string
	Prey     string
	PreyKind ecosystem.Kind // meaningful only when Consumed
}

// Consumed reports whether the prey was eaten.
func (o Outcome) Consumed() bool {
	return o.Branch != Rejected
}

// Message renders the outcome for the console.
func (o Outcome) Message() string {
	switch o.Branch {
	case HerbivoreAtePlant:
		return fmt.Sprintf("Herbivore %s ate a plant %s", o.Predator, o.Prey)
	case CarnivoreAteHerbivore:
		return fmt.Sprintf("Predator %s ate a herbivore %s", o.Predator, o.Prey)
	case OmnivoreAte:
		return fmt.Sprintf("Omnivore %s ate %s", o.Predator, o.Prey)
	default:
		return fmt.Sprintf("Interaction is not possible: %s can't eat %s", o.Predator, o.Prey)
	}
}

// Resolver applies the feeding rules against a SpeciesStore.
type Resolver struct {
	store SpeciesStore
}

// NewResolver returns a resolver over store.
func NewResolver(store SpeciesStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve decides whether predator may eat prey in eco and, if so, removes
// the prey and logs "<predator> ate <prey>". Rules are tried in order and
// the first match wins:
//
//  1. herbivore eats a plant
//  2. carnivore eats a herbivore
//  3. omnivore eats a plant, a herbivore or a carnivore
//
// Anything else is Rejected with no side effects. An error is returned only
// when the store fails while applying a consumption.
func (r *Resolver) Resolve(eco, predator, prey string) (Outcome, error) {
	out := Outcome{Branch: Rejected, Predator: predator, Prey: prey}

	predDiet, predIsAnimal := r.store.DietOf(eco, predator)
	if !predIsAnimal {
		return out, nil
	}
	preyDiet, preyIsAnimal := r.store.DietOf(eco, prey)
	preyIs := func(d ecosystem.Diet) bool { return preyIsAnimal && preyDiet == d }

	switch {
	case predDiet == ecosystem.DietHerbivore && r.store.IsPlant(eco, prey):
		return r.consume(eco, out, HerbivoreAtePlant, ecosystem.KindPlant)

	case predDiet == ecosystem.DietCarnivore && preyIs(ecosystem.DietHerbivore):
		return r.consume(eco, out, CarnivoreAteHerbivore, ecosystem.KindAnimal)

	case predDiet == ecosystem.DietOmnivore &&
		(r.store.IsPlant(eco, prey) || preyIs(ecosystem.DietHerbivore) || preyIs(ecosystem.DietCarnivore)):
		kind := ecosystem.KindAnimal
		if r.store.IsPlant(eco, prey) {
			kind = ecosystem.KindPlant
		}
		return r.consume(eco, out, OmnivoreAte, kind)
	}

	return out, nil
}

func (r *Resolver) consume(eco string, out Outcome, branch Branch, kind ecosystem.Kind) (Outcome, error) {
	if err := r.store.RemoveSpecies(eco, out.Prey, kind); err != nil {
		return out, fmt.Errorf("remove %s: %w", out.Prey, err)
	}
	out.Branch = branch
	out.PreyKind = kind
	if err := r.store.AppendInteraction(eco, ecosystem.AteRecord(out.Predator, out.Prey)); err != nil {
		return out, fmt.Errorf("record interaction: %w", err)
	}
	return out, nil
}
