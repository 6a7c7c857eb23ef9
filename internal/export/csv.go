package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/georgesolomos/nemreader/internal/nem"
)

const TimeLayout = "2006-01-02 15:04:05"

var ErrInvalidNMI = errors.New("NMI can't be used as a file name")

var (
	readingsHeader = []string{"channel", "reading_start", "reading_end", "reading_value", "uom", "quality_method"}
	hourlyHeader   = []string{"channel", "period_start", "period_end", "energy_kwh", "quality_method"}
)

// WriteCSV writes every reading in the record, one row per reading, channels in order
func WriteCSV(w io.Writer, record *nem.MeterRecord) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(readingsHeader); err != nil {
		return err
	}
	for _, channel := range record.Channels() {
		for _, reading := range record.Readings[channel] {
			err := csvWriter.Write([]string{
				string(channel),
				reading.Start.Format(TimeLayout),
				reading.End.Format(TimeLayout),
				strconv.FormatFloat(reading.Value, 'f', -1, 64),
				reading.UOM,
				reading.QualityMethod,
			})
			if err != nil {
				return err
			}
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteHourlyCSV writes the readings rolled up into hours of kWh
func WriteHourlyCSV(w io.Writer, record *nem.MeterRecord) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(hourlyHeader); err != nil {
		return err
	}
	for _, channel := range record.Channels() {
		hourly, err := nem.HourlyReadings(record.Readings[channel])
		if err != nil {
			return fmt.Errorf("channel %v: %w", channel, err)
		}
		for _, reading := range hourly {
			err := csvWriter.Write([]string{
				string(channel),
				reading.StartTime.Format(TimeLayout),
				reading.EndTime.Format(TimeLayout),
				strconv.FormatFloat(reading.EnergyKWh, 'f', -1, 64),
				strings.Join(reading.QualityMethod, ";"),
			})
			if err != nil {
				return err
			}
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

type csvOutput struct {
	name  string
	write func(io.Writer, *nem.MeterRecord) error
}

// OutputAsCSV writes <NMI>.csv into dir, plus <NMI>_hourly.csv if hourly is set, and
// returns the paths of the files written
func OutputAsCSV(record *nem.MeterRecord, dir string, hourly bool) ([]string, error) {
	// The NMI comes straight from the file, so it must not be able to point anywhere else
	nmi := record.NMI
	if nmi == "" || nmi == "." || nmi == ".." || filepath.Base(nmi) != nmi || strings.ContainsAny(nmi, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNMI, nmi)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	outputs := []csvOutput{{record.NMI + ".csv", WriteCSV}}
	if hourly {
		outputs = append(outputs, csvOutput{record.NMI + "_hourly.csv", WriteHourlyCSV})
	}

	paths := make([]string, 0, len(outputs))
	for _, output := range outputs {
		path := filepath.Join(dir, output.name)
		if err := writeFile(path, record, output.write); err != nil {
			// Don't leave some of the output behind
			for _, written := range append(paths, path) {
				os.Remove(written)
			}
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, record *nem.MeterRecord, write func(io.Writer, *nem.MeterRecord) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, record); err != nil {
		f.Close()
		return fmt.Errorf("writing %v: %w", path, err)
	}
	return f.Close()
}
