package nem

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(row string) []string {
	return strings.Split(row, ",")
}

func TestParse100Record(t *testing.T) {
	header, err := parse100Record(fields(nem12Header))
	require.NoError(t, err)
	assert.Equal(t, "NEM12", header.VersionHeader)
	assert.Equal(t, time.Date(2005, 6, 8, 11, 49, 0, 0, time.UTC), *header.DateTime)
	assert.Equal(t, "MDP1", header.FromParticipant)
	assert.Equal(t, "Ret1", header.ToParticipant)

	header, err = parse100Record(fields("100,NEM12,,MDP1,Ret1"))
	require.NoError(t, err)
	assert.Nil(t, header.DateTime)
}

func TestParse200Record(t *testing.T) {
	details, err := parse200Record(fields(nmiDetails))
	require.NoError(t, err)
	assert.Equal(t, &NMIDataDetailsRecord{
		NMI:                     "NEM1201234",
		NMIConfiguration:        "E1E2",
		RegisterID:              "1",
		NMISuffix:               "E1",
		MDMDataStreamIdentifier: "N1",
		MeterSerialNumber:       "01009",
		UOM:                     "kWh",
		IntervalLength:          30,
		NextScheduledReadDate:   timePtr(time.Date(2005, 6, 10, 0, 0, 0, 0, time.UTC)),
	}, details)

	// The next scheduled read date is optional and can be left off entirely
	details, err = parse200Record(fields("200,NEM1201234,E1E2,1,E1,N1,01009,kWh,30"))
	require.NoError(t, err)
	assert.Nil(t, details.NextScheduledReadDate)

	_, err = parse200Record(fields("200,NEM1201234,E1E2,1,E1,N1,01009,kWh,30,2005061"))
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestParse250Record(t *testing.T) {
	basic, err := parse250Record(fields(basicRead))
	require.NoError(t, err)
	assert.Equal(t, "E", basic.DirectionIndicator)
	assert.Equal(t, 100.0, basic.PreviousRegisterRead)
	assert.Equal(t, 150.5, basic.CurrentRegisterRead)
	assert.Equal(t, 50.5, basic.Quantity)
	assert.Equal(t, "kWh", basic.UOM)
	assert.Equal(t, "20050701", basic.NextScheduledReadDate)
	assert.Equal(t, time.Date(2005, 4, 1, 12, 0, 0, 0, time.UTC), *basic.UpdateDateTime)
	assert.Equal(t, time.Date(2005, 4, 1, 13, 0, 0, 0, time.UTC), *basic.MSATSLoadDateTime)

	_, err = parse250Record(fields("250,1234567890,11,1,11,11,METSER66,E,100.0"))
	assert.ErrorIs(t, err, ErrTruncatedRow)

	_, err = parse250Record(fields(strings.Replace(basicRead, "20050101000000", "200501010000", 1)))
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestParse250RecordKeepsNextReadDate(t *testing.T) {
	row := fields(basicRead)
	row[20] = "01/07/2005"
	basic, err := parse250Record(row)
	require.NoError(t, err)
	assert.Equal(t, "01/07/2005", basic.NextScheduledReadDate)
}

func TestParse250RecordEmptyTimestamps(t *testing.T) {
	row := fields(basicRead)
	row[9], row[14], row[20], row[21], row[22] = "", "", "", "", ""
	basic, err := parse250Record(row)
	require.NoError(t, err)
	assert.Nil(t, basic.PreviousRegisterReadDateTime)
	assert.Nil(t, basic.CurrentRegisterReadDateTime)
	assert.Nil(t, basic.UpdateDateTime)

	reading := calculateManualReading(basic)
	assert.True(t, reading.Start.IsZero())
	assert.True(t, reading.End.IsZero())
}

func TestParse300Record(t *testing.T) {
	row := fields(intervalRow("20050301", 48, "1.0"))
	row[2] = "0.461"
	row[51] = "79"
	row[52] = "Faulty meter"
	interval, err := parse300Record(row, 30)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2005, 3, 1, 0, 0, 0, 0, time.UTC), interval.IntervalDate)
	require.Len(t, interval.IntervalValues, 48)
	assert.Equal(t, 0.461, interval.IntervalValues[0])
	assert.Equal(t, 1.0, interval.IntervalValues[47])
	assert.Equal(t, "A", interval.QualityMethod)
	require.NotNil(t, interval.ReasonCode)
	assert.Equal(t, 79, *interval.ReasonCode)
	assert.Equal(t, "Faulty meter", interval.ReasonDescription)
	assert.Equal(t, time.Date(2005, 3, 10, 12, 10, 4, 0, time.UTC), *interval.UpdateDateTime)
	assert.Equal(t, time.Date(2005, 3, 10, 18, 22, 4, 0, time.UTC), *interval.MSATSLoadDateTime)
}

func TestParse300RecordErrors(t *testing.T) {
	_, err := parse300Record(fields("300,20050301,1.0"), 30)
	assert.ErrorIs(t, err, ErrTruncatedRow)

	_, err = parse300Record(fields(intervalRow("20050301", 48, "1.0")), 0)
	assert.ErrorIs(t, err, ErrInvalidIntervalLength)

	_, err = parse300Record(fields(intervalRow("20050301", 48, "1.0")), 15)
	assert.ErrorIs(t, err, ErrIntervalCountMismatch)

	row := fields(intervalRow("20050301", 48, "1.0"))
	row[51] = "seventy"
	_, err = parse300Record(row, 30)
	assert.ErrorIs(t, err, ErrFieldType)

	row = fields(intervalRow("", 48, "1.0"))
	_, err = parse300Record(row, 30)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestParse400Record(t *testing.T) {
	event, err := parse400Record(fields("400,1,20,F14,76,Self-read"))
	require.NoError(t, err)
	assert.Equal(t, 1, event.StartInterval)
	assert.Equal(t, 20, event.EndInterval)
	assert.Equal(t, "F14", event.QualityMethod)
	assert.Equal(t, 76, *event.ReasonCode)
	assert.Equal(t, "Self-read", event.ReasonDescription)

	event, err = parse400Record(fields("400,21,48,A"))
	require.NoError(t, err)
	assert.Nil(t, event.ReasonCode)

	_, err = parse400Record(fields("400,21"))
	assert.ErrorIs(t, err, ErrTruncatedRow)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
