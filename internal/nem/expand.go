package nem

import (
	"fmt"
	"time"

	"github.com/georgesolomos/nemreader/internal/util"
)

// ExpandIntervals turns the values of one 300 record into one reading per interval,
// starting at midnight of the interval date.
func ExpandIntervals(values []float64, intervalLength int, intervalDate time.Time, uom, qualityMethod string) ([]Reading, error) {
	numIntervalVals, err := util.IntervalsPerDay(intervalLength)
	if err != nil {
		return nil, fieldError(ErrInvalidIntervalLength, "interval_length", err)
	}
	if len(values) != numIntervalVals {
		return nil, fieldError(ErrIntervalCountMismatch, "interval_value",
			fmt.Errorf("got %v values, want %v", len(values), numIntervalVals))
	}
	intervalDelta := time.Duration(intervalLength) * time.Minute
	readings := make([]Reading, numIntervalVals)
	for i, val := range values {
		start := intervalDate.Add(time.Duration(i) * intervalDelta)
		readings[i] = Reading{
			Start:         start,
			End:           start.Add(intervalDelta),
			Value:         val,
			UOM:           uom,
			QualityMethod: qualityMethod,
		}
	}
	return readings, nil
}

// A basic meter data record covers the whole period between the previous and current
// register reads, so it becomes a single reading
func calculateManualReading(basic *BasicMeterDataRecord) Reading {
	reading := Reading{
		Value:         basic.CurrentRegisterRead - basic.PreviousRegisterRead,
		UOM:           basic.UOM,
		QualityMethod: basic.CurrentQualityMethod,
	}
	if basic.PreviousRegisterReadDateTime != nil {
		reading.Start = *basic.PreviousRegisterReadDateTime
	}
	if basic.CurrentRegisterReadDateTime != nil {
		reading.End = *basic.CurrentRegisterReadDateTime
	}
	return reading
}
