package ecosystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	valid := []string{"Grass", "fox", "Лиса", "Ёж", "Zürich", "狐"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), name)
	}

	invalid := []string{"", "Red Fox", "Fox1", "fox-glove", "Fox (carnivore)", " Fox"}
	for _, name := range invalid {
		err := ValidateName(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrInvalidName)
	}
}

func TestValidateEcosystemName(t *testing.T) {
	for _, name := range []string{"forest", "Forest 2", "north_ridge", "lake-7", "Тайга"} {
		assert.NoError(t, ValidateEcosystemName(name), name)
	}
	for _, name := range []string{"", "..", ".", "a/b", `a\b`, " lead", "trail ", "a  b"} {
		assert.ErrorIs(t, ValidateEcosystemName(name), ErrInvalidName, name)
	}
}

func TestParseDiet(t *testing.T) {
	cases := map[string]Diet{
		"herbivore":   DietHerbivore,
		"Carnivore":   DietCarnivore,
		" OMNIVORE  ": DietOmnivore,
	}
	for in, want := range cases {
		got, err := ParseDiet(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "none", "insectivore", "herb"} {
		_, err := ParseDiet(in)
		assert.ErrorIs(t, err, ErrInvalidDiet, in)
	}
}

func TestSpeciesString(t *testing.T) {
	assert.Equal(t, "Grass", NewPlant("Grass").String())
	assert.Equal(t, "Fox (carnivore)", NewAnimal("Fox", DietCarnivore).String())
	assert.Equal(t, "plant", KindPlant.String())
	assert.Equal(t, "animal", KindAnimal.String())
}
