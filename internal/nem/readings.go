package nem

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Channel identifies a data stream of a meter. Taken from the NMI suffix, e.g. "E1" for
// general usage or "B1" for export.
type Channel string

type Reading struct {
	Start         time.Time
	End           time.Time
	Value         float64
	UOM           string
	QualityMethod string
}

// MeterRecord is the result of parsing one NEM12 or NEM13 file. All readings in a file
// belong to a single NMI.
type MeterRecord struct {
	NMI              string
	NMIConfiguration string
	VersionHeader    Version
	FileCreated      *time.Time
	FileCreatedBy    string
	FileCreatedFor   string
	Readings         map[Channel][]Reading
}

// Channels returns the channels that have readings, sorted so output is deterministic
func (m *MeterRecord) Channels() []Channel {
	channels := maps.Keys(m.Readings)
	slices.Sort(channels)
	return channels
}

// ReadingCount is the total number of readings across all channels
func (m *MeterRecord) ReadingCount() int {
	count := 0
	for _, readings := range m.Readings {
		count = count + len(readings)
	}
	return count
}

// ConvertEnergy converts an energy value in the given unit to kWh
func ConvertEnergy(energy float64, uom string) (float64, error) {
	switch strings.ToLower(uom) {
	case "wh":
		return energy / 1000, nil
	case "kwh":
		return energy, nil
	case "mwh":
		return energy * 1000, nil
	default:
		return 0, fmt.Errorf("unsupported unit: %v", uom)
	}
}
