package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/ecosim/internal/ecosystem"
	"github.com/talgya/ecosim/internal/persistence"
)

const eco = "meadow"

func newMeadow(t *testing.T, species ...ecosystem.Species) (*ecosystem.Registry, *persistence.MemoryStore) {
	t.Helper()
	store := persistence.NewMemoryStore()
	reg := ecosystem.NewRegistry(store)
	require.NoError(t, reg.Create(eco, ecosystem.Conditions{Temperature: 20, Humidity: 50, WaterAmount: 50}))
	for _, s := range species {
		require.NoError(t, reg.AddSpecies(eco, s))
	}
	return reg, store
}

func snapshot(t *testing.T, reg *ecosystem.Registry) *ecosystem.Ecosystem {
	t.Helper()
	snap, err := reg.Snapshot(eco)
	require.NoError(t, err)
	return snap
}

func logTexts(e *ecosystem.Ecosystem) []string {
	var out []string
	for _, in := range e.Log() {
		out = append(out, in.Text)
	}
	return out
}

var (
	grass  = ecosystem.NewPlant("Grass")
	rabbit = ecosystem.NewAnimal("Rabbit", ecosystem.DietHerbivore)
	fox    = ecosystem.NewAnimal("Fox", ecosystem.DietCarnivore)
	wolf   = ecosystem.NewAnimal("Wolf", ecosystem.DietCarnivore)
	bear   = ecosystem.NewAnimal("Bear", ecosystem.DietOmnivore)
	boar   = ecosystem.NewAnimal("Boar", ecosystem.DietOmnivore)
)

func TestResolveHerbivoreEatsPlant(t *testing.T) {
	reg, _ := newMeadow(t, grass, rabbit)

	out, err := NewResolver(reg).Resolve(eco, "Rabbit", "Grass")
	require.NoError(t, err)
	assert.Equal(t, HerbivoreAtePlant, out.Branch)
	assert.Equal(t, ecosystem.KindPlant, out.PreyKind)
	assert.True(t, out.Consumed())
	assert.Equal(t, "Herbivore Rabbit ate a plant Grass", out.Message())

	snap := snapshot(t, reg)
	assert.False(t, snap.HasPlant("Grass"))
	assert.Equal(t, []string{"Rabbit ate Grass"}, logTexts(snap))
}

func TestResolveCarnivoreEatsHerbivore(t *testing.T) {
	reg, _ := newMeadow(t, rabbit, fox)

	out, err := NewResolver(reg).Resolve(eco, "Fox", "Rabbit")
	require.NoError(t, err)
	assert.Equal(t, CarnivoreAteHerbivore, out.Branch)
	assert.Equal(t, "Predator Fox ate a herbivore Rabbit", out.Message())

	snap := snapshot(t, reg)
	_, ok := snap.DietOf("Rabbit")
	assert.False(t, ok)
	assert.Equal(t, []string{"Fox ate Rabbit"}, logTexts(snap))
}

func TestResolveOmnivore(t *testing.T) {
	tests := []struct {
		name     string
		prey     string
		wantKind ecosystem.Kind
	}{
		{"plant", "Grass", ecosystem.KindPlant},
		{"herbivore", "Rabbit", ecosystem.KindAnimal},
		{"carnivore", "Fox", ecosystem.KindAnimal},
		{"omnivore", "Boar", ecosystem.KindAnimal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newMeadow(t, grass, rabbit, fox, bear, boar)

			out, err := NewResolver(reg).Resolve(eco, "Bear", tt.prey)
			require.NoError(t, err)

			if tt.name == "omnivore" {
				// Omnivores only eat plants, herbivores and carnivores.
				assert.Equal(t, Rejected, out.Branch)
				assert.Empty(t, logTexts(snapshot(t, reg)))
				return
			}
			assert.Equal(t, OmnivoreAte, out.Branch)
			assert.Equal(t, tt.wantKind, out.PreyKind)
			assert.Equal(t, "Omnivore Bear ate "+tt.prey, out.Message())
			assert.Equal(t, []string{"Bear ate " + tt.prey}, logTexts(snapshot(t, reg)))
		})
	}
}

func TestResolveRejections(t *testing.T) {
	tests := []struct {
		name, predator, prey string
	}{
		{"herbivore eats carnivore", "Rabbit", "Fox"},
		{"herbivore eats herbivore", "Rabbit", "Rabbit"},
		{"carnivore eats plant", "Fox", "Grass"},
		{"carnivore eats carnivore", "Fox", "Wolf"},
		{"carnivore eats omnivore", "Fox", "Bear"},
		{"plant as predator", "Grass", "Rabbit"},
		{"unknown predator", "Lynx", "Rabbit"},
		{"unknown prey", "Fox", "Hare"},
		{"empty names", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newMeadow(t, grass, rabbit, fox, wolf, bear)
			before := snapshot(t, reg)

			out, err := NewResolver(reg).Resolve(eco, tt.predator, tt.prey)
			require.NoError(t, err)
			assert.Equal(t, Rejected, out.Branch)
			assert.False(t, out.Consumed())
			assert.Equal(t, "Interaction is not possible: "+tt.predator+" can't eat "+tt.prey, out.Message())

			after := snapshot(t, reg)
			assert.Equal(t, before.Species(), after.Species())
			assert.Empty(t, after.Log())
		})
	}
}

func TestResolveSecondAttemptIsRejected(t *testing.T) {
	reg, _ := newMeadow(t, grass, rabbit)
	r := NewResolver(reg)

	out, err := r.Resolve(eco, "Rabbit", "Grass")
	require.NoError(t, err)
	assert.True(t, out.Consumed())

	out, err = r.Resolve(eco, "Rabbit", "Grass")
	require.NoError(t, err)
	assert.Equal(t, Rejected, out.Branch)
	assert.Len(t, snapshot(t, reg).Log(), 1)
}

func TestResolveMatchesExactNames(t *testing.T) {
	foxglove := ecosystem.NewPlant("Foxglove")
	reg, _ := newMeadow(t, foxglove, rabbit, bear)

	out, err := NewResolver(reg).Resolve(eco, "Bear", "Fox")
	require.NoError(t, err)
	assert.Equal(t, Rejected, out.Branch)
	assert.True(t, snapshot(t, reg).HasPlant("Foxglove"))
}

func TestResolveSameNameInBothCollections(t *testing.T) {
	// A plant and an animal may share a name; the omnivore eats the plant.
	reg, _ := newMeadow(t, ecosystem.NewPlant("Mushroom"),
		ecosystem.NewAnimal("Mushroom", ecosystem.DietHerbivore), bear)

	out, err := NewResolver(reg).Resolve(eco, "Bear", "Mushroom")
	require.NoError(t, err)
	assert.Equal(t, ecosystem.KindPlant, out.PreyKind)

	snap := snapshot(t, reg)
	assert.False(t, snap.HasPlant("Mushroom"))
	_, ok := snap.DietOf("Mushroom")
	assert.True(t, ok)
}

func TestResolveStoreFailure(t *testing.T) {
	reg, store := newMeadow(t, grass, rabbit)
	diskFull := errors.New("disk full")
	store.FailWrites = diskFull

	_, err := NewResolver(reg).Resolve(eco, "Rabbit", "Grass")
	assert.ErrorIs(t, err, diskFull)
	assert.True(t, snapshot(t, reg).HasPlant("Grass"), "failed removal leaves the plant in place")
}

// precedenceStore classifies every name as everything at once, so only
// rule order decides the branch.
type precedenceStore struct {
	diet    ecosystem.Diet
	removed []ecosystem.Kind
}

func (p *precedenceStore) DietOf(_, name string) (ecosystem.Diet, bool) {
	if name == "predator" {
		return p.diet, true
	}
	return ecosystem.DietHerbivore, true
}
func (p *precedenceStore) IsPlant(_, _ string) bool { return true }
func (p *precedenceStore) RemoveSpecies(_, _ string, k ecosystem.Kind) error {
	p.removed = append(p.removed, k)
	return nil
}
func (p *precedenceStore) AppendInteraction(_, _ string) error { return nil }

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		diet     ecosystem.Diet
		want     Branch
		wantKind ecosystem.Kind
	}{
		{ecosystem.DietHerbivore, HerbivoreAtePlant, ecosystem.KindPlant},
		{ecosystem.DietCarnivore, CarnivoreAteHerbivore, ecosystem.KindAnimal},
		{ecosystem.DietOmnivore, OmnivoreAte, ecosystem.KindPlant},
	}
	for _, tt := range tests {
		t.Run(tt.diet.String(), func(t *testing.T) {
			store := &precedenceStore{diet: tt.diet}
			out, err := NewResolver(store).Resolve(eco, "predator", "prey")
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Branch)
			assert.Equal(t, []ecosystem.Kind{tt.wantKind}, store.removed)
		})
	}
}

func TestBranchString(t *testing.T) {
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "omnivore_ate", OmnivoreAte.String())
	assert.Equal(t, "unknown", Branch(99).String())
}
