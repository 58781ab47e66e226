// Package ecosystem provides the domain model: species, environmental
// conditions, the interaction log and the Ecosystem aggregate, plus the
// Registry that keeps loaded ecosystems in memory and persists them.
package ecosystem

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind distinguishes the two species collections of an ecosystem.
type Kind uint8

const (
	KindPlant Kind = iota
	KindAnimal
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindPlant:
		return "plant"
	case KindAnimal:
		return "animal"
	default:
		return "unknown"
	}
}

// Diet is an animal's diet classification. Plants carry DietNone.
type Diet uint8

const (
	DietNone Diet = iota
	DietHerbivore
	DietCarnivore
	DietOmnivore
)

// String returns the diet as it is written in animal records.
func (d Diet) String() string {
	switch d {
	case DietHerbivore:
		return "herbivore"
	case DietCarnivore:
		return "carnivore"
	case DietOmnivore:
		return "omnivore"
	default:
		return "none"
	}
}

// ParseDiet converts user or file input into a Diet. Matching ignores case
// and surrounding whitespace; only the three animal diets are accepted.
func ParseDiet(s string) (Diet, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "herbivore":
		return DietHerbivore, nil
	case "carnivore":
		return DietCarnivore, nil
	case "omnivore":
		return DietOmnivore, nil
	default:
		return DietNone, fmt.Errorf("%w: %q (want herbivore, carnivore or omnivore)", ErrInvalidDiet, s)
	}
}

var (
	speciesNamePattern   = regexp.MustCompile(`^\p{L}+$`)
	ecosystemNamePattern = regexp.MustCompile(`^[\p{L}\p{N}_-]+( [\p{L}\p{N}_-]+)*$`)
)

// ValidateName checks that a species name is one or more Unicode letters.
func ValidateName(name string) error {
	if !speciesNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ValidateEcosystemName checks an ecosystem name. Names become directory
// names in the text store, so separators and dot segments are rejected.
func ValidateEcosystemName(name string) error {
	if !ecosystemNamePattern.MatchString(name) {
		return fmt.Errorf("%w: ecosystem %q", ErrInvalidName, name)
	}
	return nil
}

// Species is a plant or an animal living in an ecosystem.
type Species struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	Diet Diet   `json:"diet"` // DietNone for plants
}

// NewPlant returns a plant species record.
func NewPlant(name string) Species {
	return Species{Name: name, Kind: KindPlant, Diet: DietNone}
}

// NewAnimal returns an animal species record with the given diet.
func NewAnimal(name string, diet Diet) Species {
	return Species{Name: name, Kind: KindAnimal, Diet: diet}
}

// String renders the species the way it is stored: "Grass" or "Fox (carnivore)".
func (s Species) String() string {
	if s.Kind == KindAnimal {
		return fmt.Sprintf("%s (%s)", s.Name, s.Diet)
	}
	return s.Name
}
