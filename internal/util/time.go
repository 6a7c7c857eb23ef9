package util

import (
	"errors"
	"fmt"
	"time"
)

// Timestamp layouts used by NEM12/NEM13 files
const (
	DateTimeLayout   = "20060102150405" // CCYYMMDDhhmmss
	HeaderTimeLayout = "200601021504"   // CCYYMMDDhhmm
	DateLayout       = "20060102"       // CCYYMMDD
)

const MinutesPerDay = 1440

var (
	ErrInvalidTimestamp      = errors.New("invalid timestamp")
	ErrInvalidIntervalLength = errors.New("invalid interval length")
)

// ParseTimestamp decodes a NEM date/time field. An empty field is not an error, it just
// means there's no timestamp, so nil is returned. Values are naive wall-clock times and
// are always returned in UTC.
func ParseTimestamp(value, layout string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if layout == "" {
		layout = DateTimeLayout
	}
	// time.Parse accepts some inputs that don't match the layout width (e.g. single digit
	// fields), so we also insist on an exact length match
	if len(value) != len(layout) {
		return nil, fmt.Errorf("%w: %q does not match %v", ErrInvalidTimestamp, value, layout)
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q does not match %v", ErrInvalidTimestamp, value, layout)
	}
	return &t, nil
}

// IntervalsPerDay returns how many intervals of the given length make up a day. The
// length must evenly divide a day.
func IntervalsPerDay(intervalLength int) (int, error) {
	if intervalLength <= 0 || MinutesPerDay%intervalLength != 0 {
		return 0, fmt.Errorf("%w: %v minutes does not divide a day", ErrInvalidIntervalLength, intervalLength)
	}
	return MinutesPerDay / intervalLength, nil
}
