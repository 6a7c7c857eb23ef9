package nem

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
)

type Parser struct {
	logger *slog.Logger
	reader io.Reader
	// Apply 400 records to the preceding 300 record instead of skipping them
	applyEvents bool
	// Treat end of input without a 900 record as an error
	requireEndOfData bool
}

type Option func(*Parser)

func WithIntervalEvents() Option {
	return func(p *Parser) {
		p.applyEvents = true
	}
}

func WithRequireEndOfData() Option {
	return func(p *Parser) {
		p.requireEndOfData = true
	}
}

// NewParser creates a parser over a NEM12 or NEM13 file. The reader is consumed by Parse,
// so a parser can only be used once.
func NewParser(logger *slog.Logger, reader io.Reader, opts ...Option) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{
		logger: logger,
		reader: reader,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a whole NEM12 or NEM13 file using the default logger
func Parse(reader io.Reader, opts ...Option) (*MeterRecord, error) {
	return NewParser(slog.Default(), reader, opts...).Parse()
}

// ChannelContext holds the details from the current 200 record that are needed to
// interpret the 300 records following it
type ChannelContext struct {
	NMI            string
	Channel        Channel
	UOM            string
	IntervalLength int
}

type parseState int

const (
	awaitingHeader parseState = iota
	inNEM12Body
	inNEM13Body
	done
)

// Readings from the latest 300 record. They're held back until we know no more 400
// records follow, since those can change their quality.
type pendingInterval struct {
	channel  Channel
	readings []Reading
}

// dispatcher is the state of a single parse
type dispatcher struct {
	*Parser
	state   parseState
	version Version
	current *ChannelContext
	pending *pendingInterval
	result  *MeterRecord
}

// Parse reads the file to completion. Either a complete meter record or an error is
// returned, never a partial result.
func (p *Parser) Parse() (*MeterRecord, error) {
	nemReader := createNemReader(p.reader)
	d := &dispatcher{
		Parser: p,
		state:  awaitingHeader,
		result: &MeterRecord{Readings: make(map[Channel][]Reading)},
	}
	for row := 0; d.state != done; row++ {
		record, err := nemReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Kind: ErrMalformedRow, Row: row, Err: err}
		}
		if err := d.dispatch(row, record); err != nil {
			return nil, err
		}
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return d.result, nil
}

func createNemReader(reader io.Reader) *csv.Reader {
	csvReader := csv.NewReader(reader)
	// NEM12 files have variable fields per record, so we tell the CSV reader to not expect
	// any particular number
	csvReader.FieldsPerRecord = -1
	return csvReader
}

func (d *dispatcher) dispatch(row int, record []string) error {
	recordType, err := parseRecordType(record[0])
	if err != nil {
		return &ParseError{Kind: ErrMalformedRow, Row: row, Field: "record_indicator", Err: err}
	}
	if d.state == awaitingHeader && recordType != RecordHeader {
		return &ParseError{Kind: ErrMalformedFile, Row: row, Record: recordType}
	}
	// Anything other than an event means the previous 300 record is complete
	if recordType != RecordIntervalEvent {
		d.commitPending()
	}

	switch recordType {
	case RecordHeader:
		err = d.handleHeader(row, record)
	case RecordEndOfData:
		d.state = done
	case RecordNMIDataDetails, RecordIntervalData, RecordBasicMeterData:
		if !bodyRecords[d.version].Contains(recordType) {
			d.skip(row, recordType, fmt.Sprintf("not valid in a %v file", d.version))
			return nil
		}
		switch recordType {
		case RecordNMIDataDetails:
			err = d.handle200(record)
		case RecordIntervalData:
			err = d.handle300(record)
		default:
			err = d.handle250(record)
		}
	case RecordIntervalEvent:
		if !bodyRecords[d.version].Contains(recordType) {
			d.skip(row, recordType, fmt.Sprintf("not valid in a %v file", d.version))
			return nil
		}
		if !d.applyEvents {
			d.skip(row, recordType, "interval events are not applied")
			return nil
		}
		err = d.handle400(record)
	case RecordB2BDetails:
		// This is a manual reading that provides the total recorded accumulated energy for a
		// Datastream retrieved from a meter's register at the time of collection. It doesn't
		// change the interval data so we ignore it.
		d.skip(row, recordType, "B2B details are not used")
	default:
		d.skip(row, recordType, "unrecognised record indicator")
	}
	if err != nil {
		return atRow(err, row, recordType)
	}
	return nil
}

func (d *dispatcher) skip(row int, recordType RecordType, reason string) {
	d.logger.Warn(fmt.Sprintf("Ignoring %v record", recordType),
		slog.Int("row", row), slog.String("reason", reason))
}

func (d *dispatcher) handleHeader(row int, record []string) error {
	if d.state != awaitingHeader {
		d.logger.Warn("Ignoring additional 100 record", slog.Int("row", row))
		return nil
	}
	header, err := parse100Record(record)
	if err != nil {
		return err
	}
	version, ok := parseVersion(header.VersionHeader)
	if !ok {
		return fieldError(ErrUnsupportedVersion, "version_header", fmt.Errorf("%q", header.VersionHeader))
	}
	d.version = version
	d.result.VersionHeader = version
	d.result.FileCreated = header.DateTime
	d.result.FileCreatedBy = header.FromParticipant
	d.result.FileCreatedFor = header.ToParticipant
	if version == NEM12 {
		d.state = inNEM12Body
	} else {
		d.state = inNEM13Body
	}
	d.logger.Debug("Parsed 100 record", slog.Any("record", header))
	return nil
}

func (d *dispatcher) handle200(record []string) error {
	details, err := parse200Record(record)
	if err != nil {
		return err
	}
	if err := d.checkNMI(details.NMI); err != nil {
		return err
	}
	d.result.NMIConfiguration = details.NMIConfiguration
	d.current = &ChannelContext{
		NMI:            details.NMI,
		Channel:        Channel(details.NMISuffix),
		UOM:            details.UOM,
		IntervalLength: details.IntervalLength,
	}
	d.ensureChannel(d.current.Channel)
	d.logger.Debug("Parsed 200 record", slog.Any("record", details))
	return nil
}

func (d *dispatcher) handle300(record []string) error {
	if d.current == nil {
		return fieldError(ErrMissingContext, "", nil)
	}
	interval, err := parse300Record(record, d.current.IntervalLength)
	if err != nil {
		return err
	}
	readings, err := ExpandIntervals(interval.IntervalValues, d.current.IntervalLength,
		interval.IntervalDate, d.current.UOM, interval.QualityMethod)
	if err != nil {
		return err
	}
	d.pending = &pendingInterval{channel: d.current.Channel, readings: readings}
	d.logger.Debug("Parsed 300 record", slog.Any("record", interval))
	return nil
}

// Applies a 400 interval event record to the pending 300 interval data record
func (d *dispatcher) handle400(record []string) error {
	if d.pending == nil {
		return fieldError(ErrMissingContext, "", fmt.Errorf("400 record without a 300 record"))
	}
	event, err := parse400Record(record)
	if err != nil {
		return err
	}
	if event.StartInterval < 1 || event.EndInterval < event.StartInterval || event.EndInterval > len(d.pending.readings) {
		return fieldError(ErrEventOutOfRange, "start_interval",
			fmt.Errorf("intervals %v-%v of %v", event.StartInterval, event.EndInterval, len(d.pending.readings)))
	}
	// Intervals are 1-indexed and closed
	for i := event.StartInterval; i <= event.EndInterval; i++ {
		d.pending.readings[i-1].QualityMethod = event.QualityMethod
	}
	d.logger.Debug("Parsed 400 record", slog.Any("record", event))
	return nil
}

func (d *dispatcher) handle250(record []string) error {
	basic, err := parse250Record(record)
	if err != nil {
		return err
	}
	if err := d.checkNMI(basic.NMI); err != nil {
		return err
	}
	d.result.NMIConfiguration = basic.NMIConfiguration
	channel := Channel(basic.NMISuffix)
	d.ensureChannel(channel)
	d.result.Readings[channel] = append(d.result.Readings[channel], calculateManualReading(basic))
	d.logger.Debug("Parsed 250 record", slog.Any("record", basic))
	return nil
}

func (d *dispatcher) checkNMI(nmi string) error {
	if d.result.NMI == "" {
		d.result.NMI = nmi
		return nil
	}
	if d.result.NMI != nmi {
		return fieldError(ErrInconsistentNMI, "nmi", fmt.Errorf("%v, %v", d.result.NMI, nmi))
	}
	return nil
}

func (d *dispatcher) ensureChannel(channel Channel) {
	if d.result.Readings[channel] == nil {
		d.result.Readings[channel] = make([]Reading, 0)
	}
}

func (d *dispatcher) commitPending() {
	if d.pending == nil {
		return
	}
	channel := d.pending.channel
	d.result.Readings[channel] = append(d.result.Readings[channel], d.pending.readings...)
	d.pending = nil
}

func (d *dispatcher) finish() error {
	d.commitPending()
	switch d.state {
	case awaitingHeader:
		return &ParseError{Kind: ErrMalformedFile, Row: 0, Err: io.ErrUnexpectedEOF}
	case done:
		return nil
	}
	if d.requireEndOfData {
		return &ParseError{Kind: ErrMissingEndOfData, Row: -1}
	}
	d.logger.Warn("Missing 900 record")
	return nil
}
