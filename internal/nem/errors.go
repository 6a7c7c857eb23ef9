package nem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/georgesolomos/nemreader/internal/util"
)

var (
	ErrMalformedFile         = errors.New("file must start with a 100 row")
	ErrUnsupportedVersion    = errors.New("unsupported NEM version")
	ErrInconsistentNMI       = errors.New("different NMIs in same file")
	ErrMalformedRow          = errors.New("malformed row")
	ErrTruncatedRow          = errors.New("not enough fields in row")
	ErrFieldType             = errors.New("field has the wrong type")
	ErrInvalidTimestamp      = util.ErrInvalidTimestamp
	ErrInvalidIntervalLength = util.ErrInvalidIntervalLength
	ErrIntervalCountMismatch = errors.New("wrong number of interval values")
	ErrMissingContext        = errors.New("missing 200/300 context")
	ErrEventOutOfRange       = errors.New("interval event outside interval data")
	ErrMissingEndOfData      = errors.New("missing 900 row")
)

// ParseError locates a parse failure in the source file. Kind is one of the Err values
// above, so callers can use errors.Is on the returned error.
type ParseError struct {
	Kind   error
	Row    int // 0-based, -1 when not known
	Record RecordType
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Row >= 0 {
		fmt.Fprintf(&sb, "row %v: ", e.Row)
	}
	if e.Record != 0 {
		fmt.Fprintf(&sb, "%v record: ", e.Record)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, "field %v: ", e.Field)
	}
	switch {
	case e.Err == nil:
		sb.WriteString(e.Kind.Error())
	case errors.Is(e.Err, e.Kind):
		// The cause already says what kind of failure it is
		sb.WriteString(e.Err.Error())
	default:
		sb.WriteString(e.Kind.Error())
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fieldError(kind error, field string, err error) error {
	return &ParseError{Kind: kind, Row: -1, Field: field, Err: err}
}

// atRow stamps the row position onto an error coming out of a decoder
func atRow(err error, row int, record RecordType) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Row = row
		pe.Record = record
		return pe
	}
	return &ParseError{Kind: ErrMalformedRow, Row: row, Record: record, Err: err}
}
