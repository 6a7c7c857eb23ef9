package nem

import (
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"
)

type HourlyReading struct {
	StartTime time.Time
	EndTime   time.Time
	EnergyKWh float64
	// The hourly reading can consist of multiple readings with different quality methods so
	// we include them all here
	QualityMethod []string
}

// HourlyReadings rolls a channel's readings up into clock hours, converting the energy
// to kWh along the way. A reading covering more than one hour (long intervals or a NEM13
// read period) has its energy spread evenly over the time it covers. Readings without a
// start time or a positive duration have nothing to spread over and are left out.
func HourlyReadings(readings []Reading) ([]HourlyReading, error) {
	hourly := make([]HourlyReading, 0)
	qualityMethod := make([]mapset.Set[string], 0)
	hourIndex := make(map[int64]int)

	for _, reading := range readings {
		if reading.Start.IsZero() || !reading.End.After(reading.Start) {
			continue
		}
		energy, err := ConvertEnergy(reading.Value, reading.UOM)
		if err != nil {
			return nil, err
		}
		duration := reading.End.Sub(reading.Start)
		for hour := reading.Start.Truncate(time.Hour); hour.Before(reading.End); hour = hour.Add(time.Hour) {
			from, to := hour, hour.Add(time.Hour)
			if from.Before(reading.Start) {
				from = reading.Start
			}
			if to.After(reading.End) {
				to = reading.End
			}
			i, ok := hourIndex[hour.Unix()]
			if !ok {
				i = len(hourly)
				hourIndex[hour.Unix()] = i
				hourly = append(hourly, HourlyReading{StartTime: hour, EndTime: hour.Add(time.Hour)})
				qualityMethod = append(qualityMethod, mapset.NewSet[string]())
			}
			hourly[i].EnergyKWh = hourly[i].EnergyKWh + energy*float64(to.Sub(from))/float64(duration)
			if reading.QualityMethod != "" {
				qualityMethod[i].Add(reading.QualityMethod)
			}
		}
	}

	for i := range hourly {
		methods := qualityMethod[i].ToSlice()
		slices.Sort(methods)
		hourly[i].QualityMethod = methods
	}
	sort.SliceStable(hourly, func(a, b int) bool {
		return hourly[a].StartTime.Before(hourly[b].StartTime)
	})
	return hourly, nil
}
