package nem

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandIntervals(t *testing.T) {
	day := time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, intervalLength := range []int{5, 15, 30, 60} {
		count := 1440 / intervalLength
		values := make([]float64, count)
		for i := range values {
			values[i] = float64(i)
		}
		readings, err := ExpandIntervals(values, intervalLength, day, "kWh", "A")
		require.NoError(t, err)
		require.Len(t, readings, count)
		assert.Equal(t, day, readings[0].Start)
		assert.Equal(t, day.AddDate(0, 0, 1), readings[count-1].End)
		for i, reading := range readings {
			assert.Equal(t, float64(i), reading.Value)
			assert.Equal(t, time.Duration(intervalLength)*time.Minute, reading.End.Sub(reading.Start))
			if i > 0 {
				assert.Equal(t, readings[i-1].End, reading.Start)
			}
		}
	}
}

func TestExpandIntervalsErrors(t *testing.T) {
	day := time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := ExpandIntervals(make([]float64, 48), 7, day, "kWh", "A")
	assert.ErrorIs(t, err, ErrInvalidIntervalLength)

	_, err = ExpandIntervals(make([]float64, 47), 30, day, "kWh", "A")
	assert.ErrorIs(t, err, ErrIntervalCountMismatch)
}
