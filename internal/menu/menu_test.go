package menu

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/ecosim/internal/ecosystem"
	"github.com/talgya/ecosim/internal/engine"
	"github.com/talgya/ecosim/internal/persistence"
)

func newSim(t *testing.T) *engine.Simulation {
	t.Helper()
	return engine.NewSimulation(ecosystem.NewRegistry(persistence.NewMemoryStore()))
}

func run(t *testing.T, sim *engine.Simulation, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, NewSession(sim, in, &out).Run())
	return out.String()
}

func TestScriptedSession(t *testing.T) {
	sim := newSim(t)

	out := run(t, sim,
		"1", "meadow", "22", "warm", "55", "45", // create, one bad number
		"1", "Grass1", "Grass", // add plant, one bad name
		"2", "Rabbit", "vegan", "herbivore", // add animal, one bad diet
		"2", "Fox", "Carnivore",
		"6", "Rabbit", "Fox", // rejected
		"6", "Rabbit", "Grass", // consumed
		"7",
		"10",
		"5", "2", "Wolf", // delete an absent animal
		"42",
		"3",
		"3",
	)

	assert.Contains(t, out, "Welcome to the ecosystem simulator")
	assert.Contains(t, out, "Incorrect number, try again")
	assert.Contains(t, out, "Ecosystem created")
	assert.Contains(t, out, "Incorrect name: use letters only")
	assert.Contains(t, out, "Plant Grass added")
	assert.Contains(t, out, "Incorrect diet type")
	assert.Contains(t, out, "Animal Rabbit (herbivore) added")
	assert.Contains(t, out, "Animal Fox (carnivore) added")
	assert.Contains(t, out, "Interaction is not possible: Rabbit can't eat Fox")
	assert.Contains(t, out, "Herbivore Rabbit ate a plant Grass")
	assert.Contains(t, out, "Plants population: Increase")
	assert.Contains(t, out, "Animals population: Stable")
	assert.Contains(t, out, "1. Rabbit ate Grass")
	assert.Contains(t, out, "Error: species not found")
	assert.Contains(t, out, "Incorrect selection")
	assert.Contains(t, out, "Exiting the program")

	snap, err := sim.LoadEcosystem("meadow")
	require.NoError(t, err)
	assert.Equal(t, ecosystem.Conditions{Temperature: 22, Humidity: 55, WaterAmount: 45}, snap.Conditions())
	assert.Equal(t, []ecosystem.Species{
		ecosystem.NewAnimal("Fox", ecosystem.DietCarnivore),
		ecosystem.NewAnimal("Rabbit", ecosystem.DietHerbivore),
	}, snap.Species())
}

func TestLoadShowsSpecies(t *testing.T) {
	sim := newSim(t)
	require.NoError(t, sim.CreateEcosystem("pond", ecosystem.Conditions{Humidity: 90}))
	require.NoError(t, sim.AddPlant("pond", "Reed"))
	require.NoError(t, sim.AddAnimal("pond", "Frog", ecosystem.DietOmnivore))

	out := run(t, sim,
		"2", "pond",
		"4", "Frog", "carnivore",
		"8",
		"9", "5", "20", "60",
		"5", "1", "Reed",
		"3", "3",
	)

	assert.Contains(t, out, "Ecosystem loaded")
	assert.Contains(t, out, "  Reed\n")
	assert.Contains(t, out, "  Frog (omnivore)\n")
	assert.Contains(t, out, "Diet of Frog updated to carnivore")
	assert.Contains(t, out, "  Frog (carnivore)\n")
	assert.Contains(t, out, "Conditions: temperature 0, humidity 90, available water 0")
	assert.Contains(t, out, "Conditions updated")
	assert.Contains(t, out, "Plant Reed removed")

	c, err := sim.Conditions("pond")
	require.NoError(t, err)
	assert.Equal(t, ecosystem.Conditions{Temperature: 5, Humidity: 20, WaterAmount: 60}, c)
}

func TestMainMenuFailures(t *testing.T) {
	sim := newSim(t)
	require.NoError(t, sim.CreateEcosystem("taiga", ecosystem.Conditions{}))

	out := run(t, sim,
		"2", "tundra", // unknown
		"1", "taiga", // already exists
		"1", "bad/name",
		"x",
		"3",
	)

	assert.Contains(t, out, "Error: load ecosystem tundra: ecosystem not found")
	assert.Contains(t, out, "This ecosystem already exists")
	assert.Contains(t, out, "Error: invalid name")
	assert.Equal(t, 3, strings.Count(out, "Failed to load or create ecosystem"))
	assert.Contains(t, out, "Incorrect selection")
}

func TestCreateReportsUnreadableEcosystem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pond"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pond", "animals.txt"), []byte("Frog\n"), 0o644))
	sim := engine.NewSimulation(ecosystem.NewRegistry(persistence.NewTextStore(dir, persistence.DefaultFileNames())))

	out := run(t, sim, "1", "pond", "3")

	assert.Contains(t, out, "Error: load ecosystem pond: animals.txt line 1")
	assert.Contains(t, out, "Failed to load or create ecosystem")
	assert.NotContains(t, out, "Enter the temperature", "conditions are not asked for")
	assert.NotContains(t, out, msgEcosystemExists)
}

func TestEndOfInputExitsCleanly(t *testing.T) {
	sim := newSim(t)

	for _, script := range []string{"", "1\n", "1\nmeadow\n22\n", "1\nforest\n1\n2\n3\n2\nWolf\n"} {
		var out bytes.Buffer
		err := NewSession(sim, strings.NewReader(script), &out).Run()
		assert.NoError(t, err, "script %q", script)
	}
}

func TestHistoryEmpty(t *testing.T) {
	sim := newSim(t)
	require.NoError(t, sim.CreateEcosystem("dune", ecosystem.Conditions{}))

	out := run(t, sim, "2", "dune", "10", "3", "3")
	assert.Contains(t, out, "No interactions yet")
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Plant", capitalize("plant"))
	assert.Equal(t, "", capitalize(""))
}
