package ecosystem

import "fmt"

// Conditions is the environmental snapshot of one ecosystem. Values are raw
// readings with no domain validation; the snapshot is only ever replaced whole.
type Conditions struct {
	Temperature float64 `json:"temperature"`  // Celsius
	Humidity    float64 `json:"humidity"`     // percent
	WaterAmount float64 `json:"water_amount"` // available water
}

// String returns a compact one-line summary.
func (c Conditions) String() string {
	return fmt.Sprintf("temperature=%g humidity=%g water=%g", c.Temperature, c.Humidity, c.WaterAmount)
}
