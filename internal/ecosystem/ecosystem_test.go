package ecosystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEcosystemAddReplaceRemove(t *testing.T) {
	e := New("meadow", Conditions{Temperature: 20})
	e.AddSpecies(NewPlant("Grass"))
	e.AddSpecies(NewAnimal("Rabbit", DietHerbivore))
	e.AddSpecies(NewAnimal("Rabbit", DietOmnivore))

	d, ok := e.DietOf("Rabbit")
	assert.True(t, ok)
	assert.Equal(t, DietOmnivore, d, "same name and kind replaces")
	assert.Len(t, e.Animals(), 1)

	assert.False(t, e.RemoveSpecies("Grass", KindAnimal), "kind must match")
	assert.True(t, e.RemoveSpecies("Grass", KindPlant))
	assert.False(t, e.HasPlant("Grass"))
	assert.False(t, e.RemoveSpecies("Grass", KindPlant))
}

func TestEcosystemExactNameMatching(t *testing.T) {
	e := New("heath", Conditions{})
	e.AddSpecies(NewPlant("Foxglove"))
	e.AddSpecies(NewAnimal("Fox", DietCarnivore))

	assert.False(t, e.HasPlant("Fox"))
	_, ok := e.DietOf("Foxglove")
	assert.False(t, ok)

	assert.True(t, e.RemoveSpecies("Fox", KindAnimal))
	assert.True(t, e.HasPlant("Foxglove"), "removing Fox must not touch Foxglove")
}

func TestEcosystemSpeciesOrder(t *testing.T) {
	e := New("pond", Conditions{})
	e.AddSpecies(NewPlant("Reed"))
	e.AddSpecies(NewPlant("Algae"))
	e.AddSpecies(NewAnimal("Pike", DietCarnivore))
	e.AddSpecies(NewAnimal("Frog", DietOmnivore))

	assert.Equal(t, []Species{
		NewPlant("Algae"),
		NewPlant("Reed"),
		NewAnimal("Frog", DietOmnivore),
		NewAnimal("Pike", DietCarnivore),
	}, e.Species())
}

func TestEcosystemCloneIsDeep(t *testing.T) {
	e := New("pond", Conditions{Humidity: 80})
	e.AddSpecies(NewPlant("Reed"))
	e.Record(Interaction{Text: "Frog ate Fly"})

	c := e.Clone()
	c.AddSpecies(NewPlant("Algae"))
	c.Record(Interaction{Text: "Pike ate Frog"})
	c.SetConditions(Conditions{Humidity: 10})
	assert.False(t, c.SetDiet("Missing", DietHerbivore))

	assert.Len(t, e.Plants(), 1)
	assert.Len(t, e.Log(), 1)
	assert.Equal(t, 80.0, e.Conditions().Humidity)
}

func TestAteRecord(t *testing.T) {
	assert.Equal(t, "Rabbit ate Grass", AteRecord("Rabbit", "Grass"))
}
