package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/cfdi-extractor/internal/batch"
	"github.com/garyjia/cfdi-extractor/internal/cfdi"
	"github.com/garyjia/cfdi-extractor/internal/config"
	"github.com/garyjia/cfdi-extractor/internal/export"
	"github.com/garyjia/cfdi-extractor/internal/repository"
	"github.com/garyjia/cfdi-extractor/pkg/database"
	"github.com/garyjia/cfdi-extractor/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	inputDir := flag.String("input", "", "override the input directory")
	noHistory := flag.Bool("no-history", false, "disable the processing-history database")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *inputDir != "" {
		cfg.Batch.InputDir = *inputDir
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting CFDI batch extraction",
		zap.String("input_dir", cfg.Batch.InputDir),
		zap.Int("workers", cfg.Batch.Workers))

	// Initialize the processing-history store
	var recorder batch.Recorder
	if !*noHistory {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			logger.Fatal("Failed to create database directory", zap.Error(err))
		}

		db, err := database.New(database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.Close()

		migrator := database.NewMigrator(db, logger)
		if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
			logger.Fatal("Failed to run database migrations", zap.Error(err))
		}

		recorder = repository.NewDocumentRepository(db.DB, logger)
	}

	// Initialize the extraction engine
	extractor := cfdi.NewExtractor(logger,
		cfdi.WithDefaultPaymentMethod(cfg.Extractor.DefaultPaymentMethod),
		cfdi.WithNamespaces(cfdi.DefaultNamespaces().Merge(cfg.Extractor.Namespaces)),
	)

	processor := batch.NewProcessor(extractor, recorder, cfg.Batch.Workers, logger)

	// Cancel the run on SIGINT/SIGTERM; the current documents finish first.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := processor.ProcessDir(ctx, cfg.Batch.InputDir)
	if err != nil {
		logger.Fatal("Batch run failed", zap.Error(err))
	}

	for _, res := range summary.Results {
		if res.Err != nil {
			fmt.Printf("FAILED    %s (%s)\n", res.Source, res.FailureKind())
		} else {
			fmt.Printf("PROCESSED %s\n", res.Source)
		}
	}
	fmt.Printf("\n%d documents: %d processed, %d failed\n",
		summary.Total, summary.Processed, summary.Failed)

	records := summary.Records()
	if len(records) == 0 {
		logger.Warn("No records extracted, skipping report")
		return
	}

	writer := export.NewExcelWriter(cfg.Export.OutputDir, cfg.Export.ReportName, logger)
	reportPath, err := writer.Export(records)
	if err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}

	fmt.Printf("Report written to %s\n", reportPath)
}
