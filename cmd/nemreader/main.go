package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/georgesolomos/nemreader/internal/config"
	"github.com/georgesolomos/nemreader/internal/export"
	"github.com/georgesolomos/nemreader/internal/meterstore"
	"github.com/georgesolomos/nemreader/internal/nem"
)

func main() {
	nemPath := flag.String("path", "", "The path to your NEM12 or NEM13 file")
	configPath := flag.String("config", "", "Optional TOML config file")
	outputDir := flag.String("output", "", "Directory to write CSV output to")
	hourly := flag.Bool("hourly", false, "Also write hourly kWh totals")
	dbPath := flag.String("db", "", "SQLite database to store readings in")
	events := flag.Bool("events", false, "Apply 400 interval events to interval quality")
	strict := flag.Bool("strict", false, "Fail if the file has no 900 record")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Could not load config", slog.Any("error", err))
		os.Exit(1)
	}
	// Flags given on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.OutputDir = *outputDir
		case "hourly":
			cfg.Hourly = *hourly
		case "db":
			cfg.DatabasePath = *dbPath
		case "events":
			cfg.ApplyEvents = *events
		case "strict":
			cfg.RequireEndOfData = *strict
		}
	})

	level, _ := cfg.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *nemPath == "" {
		logger.Error("A NEM12 or NEM13 path must be provided")
		os.Exit(1)
	}
	if err := run(logger, cfg, *nemPath); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg *config.Config, nemPath string) error {
	nemFile, err := os.Open(nemPath)
	if err != nil {
		return err
	}
	defer nemFile.Close()

	opts := make([]nem.Option, 0)
	if cfg.ApplyEvents {
		opts = append(opts, nem.WithIntervalEvents())
	}
	if cfg.RequireEndOfData {
		opts = append(opts, nem.WithRequireEndOfData())
	}
	record, err := nem.NewParser(logger, nemFile, opts...).Parse()
	if err != nil {
		return err
	}
	logger.Info("Parsed meter file",
		slog.String("nmi", record.NMI),
		slog.String("version", string(record.VersionHeader)),
		slog.Any("channels", record.Channels()),
		slog.Int("readings", record.ReadingCount()))

	paths, err := export.OutputAsCSV(record, cfg.OutputDir, cfg.Hourly)
	if err != nil {
		return err
	}
	logger.Info("Wrote CSV output", slog.Any("files", paths))

	if cfg.DatabasePath != "" {
		store, err := meterstore.Open(logger, cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.Save(context.Background(), record); err != nil {
			return err
		}
	}
	return nil
}
