package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/ecosim/internal/ecosystem"
)

func cond(t, h, w float64) ecosystem.Conditions {
	return ecosystem.Conditions{Temperature: t, Humidity: h, WaterAmount: w}
}

func TestPredictScenarios(t *testing.T) {
	assert.Equal(t, Forecast{Plants: SignificantDecrease, Animals: SignificantDecrease}, Predict(cond(40, 20, 10)))
	assert.Equal(t, Forecast{Plants: Increase, Animals: Stable}, Predict(cond(22, 55, 45)))
}

func TestPredictPlants(t *testing.T) {
	tests := []struct {
		name string
		c    ecosystem.Conditions
		want Trend
	}{
		{"scorching and dry", cond(36, 29, 100), SignificantDecrease},
		{"T=35 is not scorching", cond(35, 29, 100), Stable},
		{"H=30 is not dry", cond(36, 30, 100), Stable},
		{"hot with little water", cond(31, 80, 19), Decrease},
		{"T=30 is not hot", cond(30, 80, 19), Stable},
		{"W=20 is enough water", cond(31, 80, 20), Stable},
		{"cold", cond(9.99, 90, 90), Stable},
		{"arid", cond(20, 14, 90), Stable},
		{"temperate humid", cond(20, 50, 0), Increase},
		{"T=25 upper bound included", cond(25, 50, 0), Increase},
		{"T=15 lower bound excluded", cond(15, 50, 0), Stable},
		{"H=49.9 too dry to grow", cond(20, 49.9, 0), Stable},
		{"T=25.1 too warm to grow", cond(25.1, 90, 90), Stable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PredictPlants(tt.c))
		})
	}
}

func TestPredictAnimals(t *testing.T) {
	tests := []struct {
		name string
		c    ecosystem.Conditions
		want Trend
	}{
		{"heat and drought", cond(36, 90, 29), SignificantDecrease},
		{"T=35 is not extreme", cond(35, 90, 29), Stable},
		{"W=30 is enough", cond(36, 90, 30), Stable},
		{"hot and dry air", cond(31, 39, 90), Decrease},
		{"H=40 is humid enough", cond(31, 40, 90), Stable},
		{"cold with water", cond(5, 0, 41), Stable},
		{"lush", cond(25, 61, 51), Increase},
		{"T=20 included", cond(20, 61, 51), Increase},
		{"T=30 included", cond(30, 61, 51), Increase},
		{"H=60 excluded", cond(25, 60, 51), Stable},
		{"W=50 excluded", cond(25, 61, 50), Stable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PredictAnimals(tt.c))
		})
	}
}

func TestPredictScorchingDryIgnoresWater(t *testing.T) {
	for _, w := range []float64{-100, 0, 19, 50, 1e6} {
		assert.Equal(t, SignificantDecrease, PredictPlants(cond(40, 10, w)), "water=%g", w)
	}
}

func TestPredictIsTotal(t *testing.T) {
	values := []float64{math.Inf(-1), -50, 0, 9.99, 10, 15, 20, 25, 30, 35, 35.01, 100, math.Inf(1), math.NaN()}
	for _, temp := range values {
		for _, h := range values {
			for _, w := range values {
				f := Predict(cond(temp, h, w))
				assert.LessOrEqual(t, f.Plants, Increase)
				assert.LessOrEqual(t, f.Animals, Increase)
			}
		}
	}
}

func TestTrendString(t *testing.T) {
	assert.Equal(t, "Significant Decrease", SignificantDecrease.String())
	assert.Equal(t, "Decrease", Decrease.String())
	assert.Equal(t, "Stable", Stable.String())
	assert.Equal(t, "Increase", Increase.String())
}
