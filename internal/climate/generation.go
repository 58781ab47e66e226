// Climate generation using layered simplex noise.
// Samples temperature, humidity and water fields at a seed-derived point and
// maps them onto the ranges an ecosystem is created with.
package climate

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/ecosim/internal/ecosystem"
)

// Range is a closed interval a noise sample is scaled into.
type Range struct {
	Min, Max float64
}

func (r Range) scale(v float64) float64 {
	return r.Min + v*(r.Max-r.Min)
}

// GenConfig holds climate generation parameters.
type GenConfig struct {
	Seed        int64   // Random seed (0 = random)
	Octaves     int     // Noise layers summed per field
	Frequency   float64 // Base sampling frequency
	Persistence float64 // Amplitude falloff per octave

	Temperature Range // °C
	Humidity    Range // %
	Water       Range
}

// DefaultGenConfig returns ranges wide enough to reach every prediction branch.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:        0,
		Octaves:     3,
		Frequency:   0.05,
		Persistence: 0.5,
		Temperature: Range{Min: -10, Max: 45},
		Humidity:    Range{Min: 0, Max: 100},
		Water:       Range{Min: 0, Max: 100},
	}
}

// Generate returns a conditions snapshot for cfg. The same non-zero seed
// always yields the same conditions.
func Generate(cfg GenConfig) ecosystem.Conditions {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	if cfg.Octaves <= 0 {
		cfg.Octaves = 1
	}

	// Three noise generators for independent fields.
	tempNoise := opensimplex.NewNormalized(seed)
	humidNoise := opensimplex.NewNormalized(seed + 1)
	waterNoise := opensimplex.NewNormalized(seed + 2)

	// Sample point somewhere on a large plane so nearby seeds differ.
	rng := rand.New(rand.NewSource(seed))
	x := rng.Float64() * 1000
	y := rng.Float64() * 1000

	temp := octaveNoise(tempNoise, x, y, cfg.Octaves, cfg.Frequency, cfg.Persistence)
	humid := octaveNoise(humidNoise, x, y, cfg.Octaves, cfg.Frequency, cfg.Persistence)
	water := octaveNoise(waterNoise, x, y, cfg.Octaves, cfg.Frequency, cfg.Persistence)

	return ecosystem.Conditions{
		Temperature: round1(cfg.Temperature.scale(temp)),
		Humidity:    round1(cfg.Humidity.scale(humid)),
		WaterAmount: round1(cfg.Water.scale(water)),
	}
}

// octaveNoise sums several octaves of normalized noise. The result stays in [0, 1].
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// round1 keeps one decimal so stored values read cleanly.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
