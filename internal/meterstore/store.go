// Package meterstore keeps parsed meter records in a SQLite database. Each saved file
// becomes an import identified by a UUID.
package meterstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/google/uuid"

	"github.com/georgesolomos/nemreader/internal/nem"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var ErrImportNotFound = errors.New("import not found")

type Store struct {
	logger *slog.Logger
	db     *sql.DB
}

func Open(logger *slog.Logger, path string) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	// Apply migrations
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)
	return &Store{
		logger: logger,
		db:     db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the record and all its readings in one transaction and returns the new
// import ID
func (s *Store) Save(ctx context.Context, record *nem.MeterRecord) (string, error) {
	importID := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var fileCreated sql.NullInt64
	if record.FileCreated != nil {
		fileCreated = sql.NullInt64{Int64: record.FileCreated.Unix(), Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO imports "+
			"(id, nmi, nmi_configuration, version_header, file_created, file_created_by, file_created_for, imported_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		importID,
		record.NMI,
		record.NMIConfiguration,
		string(record.VersionHeader),
		fileCreated,
		record.FileCreatedBy,
		record.FileCreatedFor,
		time.Now().Unix(),
	)
	if err != nil {
		return "", err
	}

	insertReading, err := tx.PrepareContext(ctx,
		"INSERT INTO readings "+
			"(import_id, channel, seq, reading_start, reading_end, reading_value, uom, quality_method) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return "", err
	}
	defer insertReading.Close()

	for _, channel := range record.Channels() {
		_, err = tx.ExecContext(ctx, "INSERT INTO channels (import_id, channel) VALUES (?, ?)", importID, string(channel))
		if err != nil {
			return "", err
		}
		for i, reading := range record.Readings[channel] {
			_, err = insertReading.ExecContext(ctx,
				importID,
				string(channel),
				i,
				reading.Start.Unix(),
				reading.End.Unix(),
				reading.Value,
				reading.UOM,
				reading.QualityMethod,
			)
			if err != nil {
				return "", err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.logger.Info("Saved meter record",
		slog.String("import_id", importID),
		slog.String("nmi", record.NMI),
		slog.Int("readings", record.ReadingCount()))
	return importID, nil
}

// Load rebuilds a saved meter record
func (s *Store) Load(ctx context.Context, importID string) (*nem.MeterRecord, error) {
	record := &nem.MeterRecord{Readings: make(map[nem.Channel][]nem.Reading)}
	var version string
	var fileCreated sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT nmi, nmi_configuration, version_header, file_created, file_created_by, file_created_for "+
			"FROM imports WHERE id = ?", importID).
		Scan(&record.NMI, &record.NMIConfiguration, &version, &fileCreated, &record.FileCreatedBy, &record.FileCreatedFor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %v", ErrImportNotFound, importID)
	}
	if err != nil {
		return nil, err
	}
	record.VersionHeader = nem.Version(version)
	if fileCreated.Valid {
		created := time.Unix(fileCreated.Int64, 0).UTC()
		record.FileCreated = &created
	}

	rows, err := s.db.QueryContext(ctx, "SELECT channel FROM channels WHERE import_id = ?", importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	channels := make([]nem.Channel, 0)
	for rows.Next() {
		var channel string
		if err := rows.Scan(&channel); err != nil {
			return nil, err
		}
		channels = append(channels, nem.Channel(channel))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, channel := range channels {
		readings, err := s.Readings(ctx, importID, channel)
		if err != nil {
			return nil, err
		}
		record.Readings[channel] = readings
	}
	return record, nil
}

// ImportIDs lists the imports saved for an NMI, oldest first
func (s *Store) ImportIDs(ctx context.Context, nmi string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM imports WHERE nmi = ? ORDER BY imported_at, rowid", nmi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Readings returns the readings of one channel of an import in file order
func (s *Store) Readings(ctx context.Context, importID string, channel nem.Channel) ([]nem.Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT reading_start, reading_end, reading_value, uom, quality_method "+
			"FROM readings WHERE import_id = ? AND channel = ? ORDER BY seq",
		importID, string(channel))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]nem.Reading, 0)
	for rows.Next() {
		var start, end int64
		var reading nem.Reading
		if err := rows.Scan(&start, &end, &reading.Value, &reading.UOM, &reading.QualityMethod); err != nil {
			return nil, err
		}
		reading.Start = time.Unix(start, 0).UTC()
		reading.End = time.Unix(end, 0).UTC()
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
