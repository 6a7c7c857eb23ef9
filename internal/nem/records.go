package nem

import (
	"time"
)

// Header record (100)
type HeaderRecord struct {
	VersionHeader   string
	DateTime        *time.Time
	FromParticipant string
	ToParticipant   string
}

// NMI data details record (200)
type NMIDataDetailsRecord struct {
	NMI                     string
	NMIConfiguration        string
	RegisterID              string
	NMISuffix               string
	MDMDataStreamIdentifier string
	MeterSerialNumber       string
	UOM                     string
	IntervalLength          int
	NextScheduledReadDate   *time.Time
}

// Basic meter data record (250). NEM13 only.
type BasicMeterDataRecord struct {
	NMI                          string
	NMIConfiguration             string
	RegisterID                   string
	NMISuffix                    string
	MDMDataStreamIdentifier      string
	MeterSerialNumber            string
	DirectionIndicator           string
	PreviousRegisterRead         float64
	PreviousRegisterReadDateTime *time.Time
	PreviousQualityMethod        string
	PreviousReasonCode           string
	PreviousReasonDescription    string
	CurrentRegisterRead          float64
	CurrentRegisterReadDateTime  *time.Time
	CurrentQualityMethod         string
	CurrentReasonCode            string
	CurrentReasonDescription     string
	Quantity                     float64
	UOM                          string
	NextScheduledReadDate        string // Kept as it appears in the file
	UpdateDateTime               *time.Time
	MSATSLoadDateTime            *time.Time
}

// Interval data record (300)
type IntervalDataRecord struct {
	IntervalDate      time.Time
	IntervalValues    []float64
	QualityMethod     string
	ReasonCode        *int
	ReasonDescription string
	UpdateDateTime    *time.Time
	MSATSLoadDateTime *time.Time
}

// Interval event record (400). Intervals are 1-indexed and closed.
type IntervalEventRecord struct {
	StartInterval     int
	EndInterval       int
	QualityMethod     string
	ReasonCode        *int
	ReasonDescription string
}
