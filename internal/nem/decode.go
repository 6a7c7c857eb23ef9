package nem

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/georgesolomos/nemreader/internal/util"
)

// Number of mandatory fields after the interval values of a 300 record:
// QualityMethod, ReasonCode, ReasonDescription, UpdateDateTime, MSATSLoadDateTime
const intervalTrailerFields = 5

func requireFields(record []string, n int) error {
	if len(record) < n {
		return fieldError(ErrTruncatedRow, "", nil)
	}
	return nil
}

func parseFloatField(val, field string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, fieldError(ErrFieldType, field, err)
	}
	return f, nil
}

func parseIntField(val, field string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fieldError(ErrFieldType, field, err)
	}
	return i, nil
}

// Reason codes are optional but numeric when present
func parseReasonCode(val, field string) (*int, error) {
	if val == "" {
		return nil, nil
	}
	code, err := parseIntField(val, field)
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func parseTimestampField(val, layout, field string) (*time.Time, error) {
	t, err := util.ParseTimestamp(val, layout)
	if err != nil {
		return nil, fieldError(ErrInvalidTimestamp, field, err)
	}
	return t, nil
}

func parse100Record(record []string) (*HeaderRecord, error) {
	if err := requireFields(record, 5); err != nil {
		return nil, err
	}
	dateTime, err := parseTimestampField(record[2], util.HeaderTimeLayout, "datetime")
	if err != nil {
		return nil, err
	}
	return &HeaderRecord{
		VersionHeader:   record[1],
		DateTime:        dateTime,
		FromParticipant: record[3],
		ToParticipant:   record[4],
	}, nil
}

func parse200Record(record []string) (*NMIDataDetailsRecord, error) {
	// NextScheduledReadDate is the only field allowed to be left off the end
	if err := requireFields(record, 9); err != nil {
		return nil, err
	}
	intervalLength, err := parseIntField(record[8], "interval_length")
	if err != nil {
		return nil, err
	}
	var nextRead *time.Time
	if len(record) > 9 {
		nextRead, err = parseTimestampField(record[9], util.DateLayout, "next_scheduled_read_date")
		if err != nil {
			return nil, err
		}
	}
	return &NMIDataDetailsRecord{
		NMI:                     record[1],
		NMIConfiguration:        record[2],
		RegisterID:              record[3],
		NMISuffix:               record[4],
		MDMDataStreamIdentifier: record[5],
		MeterSerialNumber:       record[6],
		UOM:                     record[7],
		IntervalLength:          intervalLength,
		NextScheduledReadDate:   nextRead,
	}, nil
}

func parse250Record(record []string) (*BasicMeterDataRecord, error) {
	if err := requireFields(record, 23); err != nil {
		return nil, err
	}
	var err error
	rec := &BasicMeterDataRecord{
		NMI:                       record[1],
		NMIConfiguration:          record[2],
		RegisterID:                record[3],
		NMISuffix:                 record[4],
		MDMDataStreamIdentifier:   record[5],
		MeterSerialNumber:         record[6],
		DirectionIndicator:        record[7],
		PreviousQualityMethod:     record[10],
		PreviousReasonCode:        record[11],
		PreviousReasonDescription: record[12],
		CurrentQualityMethod:      record[15],
		CurrentReasonCode:         record[16],
		CurrentReasonDescription:  record[17],
		UOM:                       record[19],
		NextScheduledReadDate:     record[20],
	}
	if rec.PreviousRegisterRead, err = parseFloatField(record[8], "previous_register_read"); err != nil {
		return nil, err
	}
	if rec.CurrentRegisterRead, err = parseFloatField(record[13], "current_register_read"); err != nil {
		return nil, err
	}
	if rec.Quantity, err = parseFloatField(record[18], "quantity"); err != nil {
		return nil, err
	}
	timestamps := []struct {
		dst    **time.Time
		val    string
		layout string
		field  string
	}{
		{&rec.PreviousRegisterReadDateTime, record[9], util.DateTimeLayout, "previous_register_read_datetime"},
		{&rec.CurrentRegisterReadDateTime, record[14], util.DateTimeLayout, "current_register_read_datetime"},
		{&rec.UpdateDateTime, record[21], util.DateTimeLayout, "update_datetime"},
		{&rec.MSATSLoadDateTime, record[22], util.DateTimeLayout, "msats_load_datetime"},
	}
	for _, ts := range timestamps {
		if *ts.dst, err = parseTimestampField(ts.val, ts.layout, ts.field); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func parse300Record(record []string, intervalLength int) (*IntervalDataRecord, error) {
	// As per the NEM12 spec, "The number of values provided must equal 1440 divided by the
	// IntervalLength"
	numIntervalVals, err := util.IntervalsPerDay(intervalLength)
	if err != nil {
		return nil, fieldError(ErrInvalidIntervalLength, "interval_length", err)
	}
	// Record indicator, interval date, at least one value and the trailing fields
	if err := requireFields(record, 3+intervalTrailerFields); err != nil {
		return nil, err
	}
	if got := len(record) - 2 - intervalTrailerFields; got != numIntervalVals {
		return nil, fieldError(ErrIntervalCountMismatch, "interval_value",
			fmt.Errorf("got %v values, want %v for %v minute intervals", got, numIntervalVals, intervalLength))
	}

	// Mandatory field
	intervalDate, err := parseTimestampField(record[1], util.DateLayout, "interval_date")
	if err != nil {
		return nil, err
	}
	if intervalDate == nil {
		return nil, fieldError(ErrInvalidTimestamp, "interval_date", nil)
	}

	vals := make([]float64, numIntervalVals)
	for i, val := range record[2 : numIntervalVals+2] {
		if vals[i], err = parseFloatField(val, "interval_value_"+strconv.Itoa(i+1)); err != nil {
			return nil, err
		}
	}

	idxAfterIntervalVals := numIntervalVals + 2
	reasonCode, err := parseReasonCode(record[idxAfterIntervalVals+1], "reason_code")
	if err != nil {
		return nil, err
	}
	updated, err := parseTimestampField(record[idxAfterIntervalVals+3], util.DateTimeLayout, "update_datetime")
	if err != nil {
		return nil, err
	}
	msatsLoad, err := parseTimestampField(record[idxAfterIntervalVals+4], util.DateTimeLayout, "msats_load_datetime")
	if err != nil {
		return nil, err
	}

	return &IntervalDataRecord{
		IntervalDate:      *intervalDate,
		IntervalValues:    vals,
		QualityMethod:     record[idxAfterIntervalVals],
		ReasonCode:        reasonCode,
		ReasonDescription: record[idxAfterIntervalVals+2],
		UpdateDateTime:    updated,
		MSATSLoadDateTime: msatsLoad,
	}, nil
}

func parse400Record(record []string) (*IntervalEventRecord, error) {
	if err := requireFields(record, 4); err != nil {
		return nil, err
	}
	startInterval, err := parseIntField(record[1], "start_interval")
	if err != nil {
		return nil, err
	}
	endInterval, err := parseIntField(record[2], "end_interval")
	if err != nil {
		return nil, err
	}
	event := &IntervalEventRecord{
		StartInterval: startInterval,
		EndInterval:   endInterval,
		QualityMethod: record[3],
	}
	if len(record) > 4 {
		if event.ReasonCode, err = parseReasonCode(record[4], "reason_code"); err != nil {
			return nil, err
		}
	}
	if len(record) > 5 {
		event.ReasonDescription = record[5]
	}
	return event, nil
}
