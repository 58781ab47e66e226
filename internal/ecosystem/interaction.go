package ecosystem

import "time"

// Interaction is one entry of an ecosystem's append-only feeding log.
// Text is the fact itself; ID and RecordedAt are filled in by stores that
// keep them and are zero otherwise.
type Interaction struct {
	ID         string    `json:"id,omitempty"`
	Text       string    `json:"text"`
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

// AteRecord formats the log text for a consumed prey.
func AteRecord(predator, prey string) string {
	return predator + " ate " + prey
}
