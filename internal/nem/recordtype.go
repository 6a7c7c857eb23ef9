package nem

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// RecordType is the record indicator found in the first field of every row
type RecordType int

const (
	RecordHeader         RecordType = 100
	RecordNMIDataDetails RecordType = 200
	RecordBasicMeterData RecordType = 250
	RecordIntervalData   RecordType = 300
	RecordIntervalEvent  RecordType = 400
	RecordB2BDetails     RecordType = 500
	RecordEndOfData      RecordType = 900
)

func (r RecordType) String() string {
	return strconv.Itoa(int(r))
}

// Version is the file format named in the header record
type Version string

const (
	NEM12 Version = "NEM12"
	NEM13 Version = "NEM13"
)

// Body records that are meaningful for each version. Anything else in the body is
// logged and skipped.
var bodyRecords = map[Version]mapset.Set[RecordType]{
	NEM12: mapset.NewSet(RecordNMIDataDetails, RecordIntervalData, RecordIntervalEvent),
	NEM13: mapset.NewSet(RecordBasicMeterData),
}

func parseVersion(val string) (Version, bool) {
	switch v := Version(val); v {
	case NEM12, NEM13:
		return v, true
	default:
		return "", false
	}
}

func parseRecordType(val string) (RecordType, error) {
	indicator, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, err
	}
	return RecordType(indicator), nil
}
