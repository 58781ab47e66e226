// Population forecasts from environmental conditions.
package engine

import "github.com/talgya/ecosim/internal/ecosystem"

// Trend is the expected direction of a population.
type Trend uint8

const (
	SignificantDecrease Trend = iota
	Decrease
	Stable
	Increase
)

// String returns the display name of the trend.
func (t Trend) String() string {
	switch t {
	case SignificantDecrease:
		return "Significant Decrease"
	case Decrease:
		return "Decrease"
	case Stable:
		return "Stable"
	case Increase:
		return "Increase"
	default:
		return "Unknown"
	}
}

// Forecast holds the trend of each population group.
type Forecast struct {
	Plants  Trend `json:"plants"`
	Animals Trend `json:"animals"`
}

// Predict classifies plant and animal trends independently. It is a pure
// function of the three readings.
func Predict(c ecosystem.Conditions) Forecast {
	return Forecast{
		Plants:  PredictPlants(c),
		Animals: PredictAnimals(c),
	}
}

// PredictPlants classifies the plant trend. First match wins.
func PredictPlants(c ecosystem.Conditions) Trend {
	t, h, w := c.Temperature, c.Humidity, c.WaterAmount

	switch {
	case t > 35 && h < 30:
		return SignificantDecrease // scorching and dry
	case t > 30 && w < 20:
		return Decrease // heat with little water
	case t < 10 || h < 15:
		return Stable // cold or arid: dormant
	case t > 15 && t <= 25 && h >= 50:
		return Increase // temperate and humid
	default:
		return Stable
	}
}

// PredictAnimals classifies the animal trend. First match wins.
func PredictAnimals(c ecosystem.Conditions) Trend {
	t, h, w := c.Temperature, c.Humidity, c.WaterAmount

	switch {
	case t > 35 && w < 30:
		return SignificantDecrease
	case t > 30 && h < 40:
		return Decrease
	case t < 10 && w > 40:
		return Stable
	case t >= 20 && t <= 30 && h > 60 && w > 50:
		return Increase
	default:
		return Stable
	}
}
