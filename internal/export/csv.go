// Package export writes ecosystem data as CSV.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/talgya/ecosim/internal/ecosystem"
)

// SpeciesRecord is one species row.
type SpeciesRecord struct {
	Ecosystem string `csv:"ecosystem"`
	Name      string `csv:"name"`
	Kind      string `csv:"kind"`
	Diet      string `csv:"diet"` // empty for plants
}

// InteractionRecord is one interaction log row.
type InteractionRecord struct {
	Ecosystem   string `csv:"ecosystem"`
	Seq         int    `csv:"seq"`
	ID          string `csv:"id"`
	Predator    string `csv:"predator"`
	Prey        string `csv:"prey"`
	Description string `csv:"description"`
	RecordedAt  string `csv:"recorded_at"` // RFC 3339, empty when the store keeps no timestamps
}

// WriteSpecies writes species of eco with a header row.
func WriteSpecies(w io.Writer, eco string, species []ecosystem.Species) error {
	records := make([]SpeciesRecord, 0, len(species))
	for _, s := range species {
		rec := SpeciesRecord{Ecosystem: eco, Name: s.Name, Kind: s.Kind.String()}
		if s.Kind == ecosystem.KindAnimal {
			rec.Diet = s.Diet.String()
		}
		records = append(records, rec)
	}

	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing species: %w", err)
	}
	return nil
}

// WriteInteractions writes the interaction log of eco with a header row.
// Seq numbers start at 1 in log order.
func WriteInteractions(w io.Writer, eco string, log []ecosystem.Interaction) error {
	records := make([]InteractionRecord, 0, len(log))
	for i, in := range log {
		predator, prey, _ := strings.Cut(in.Text, " ate ")
		rec := InteractionRecord{
			Ecosystem:   eco,
			Seq:         i + 1,
			ID:          in.ID,
			Predator:    predator,
			Prey:        prey,
			Description: in.Text,
		}
		if !in.RecordedAt.IsZero() {
			rec.RecordedAt = in.RecordedAt.UTC().Format(time.RFC3339)
		}
		records = append(records, rec)
	}

	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing interactions: %w", err)
	}
	return nil
}
