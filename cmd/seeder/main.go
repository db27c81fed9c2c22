package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/stockledger/internal/adapters/db"
	"github.com/ammerola/stockledger/internal/adapters/fileio"
	"github.com/ammerola/stockledger/internal/adapters/memory"
	"github.com/ammerola/stockledger/internal/core/domain"
	"github.com/ammerola/stockledger/internal/core/ports"
	"github.com/ammerola/stockledger/internal/core/services"
	"github.com/ammerola/stockledger/internal/pkg/config"
	"github.com/ammerola/stockledger/internal/pkg/logger"
)

// seederState tracks which manifests were already loaded
type seederState struct {
	ProcessedFiles []string  `json:"processed_files"`
	ProcessedCount int       `json:"processed_count"`
	LastUpdate     time.Time `json:"last_update"`
}

func loadState(path string) seederState {
	var state seederState
	data, err := os.ReadFile(path)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return seederState{}
	}
	return state
}

func (s *seederState) save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// manifestFormat maps a file extension to an import format
func manifestFormat(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return fileio.FormatCSV, true
	case ".xlsx":
		return fileio.FormatXLSX, true
	case ".pdf":
		return fileio.FormatPDF, true
	default:
		return "", false
	}
}

func findManifests(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := manifestFormat(e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func main() {
	var (
		manifestsDir = flag.String("manifests", "./manifests", "Directory containing CSV, XLSX or PDF stock manifests")
		warehouse    = flag.String("warehouse", "", "Warehouse ID the stock is loaded into")
		client       = flag.String("client", "", "Client ID owning the stock")
		createdBy    = flag.String("created-by", "seeder", "Actor recorded on ledger entries")
		stateFile    = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel     = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun       = flag.Bool("dry-run", false, "Replay manifests against an in-memory ledger")
		force        = flag.Bool("force", false, "Reload all manifests")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "json").Logger
	slog.SetDefault(slogger)

	warehouseID, err := uuid.Parse(*warehouse)
	if err != nil {
		slogger.Error("invalid -warehouse", slog.String("error", err.Error()))
		os.Exit(2)
	}
	clientID, err := uuid.Parse(*client)
	if err != nil {
		slogger.Error("invalid -client", slog.String("error", err.Error()))
		os.Exit(2)
	}

	ctx := context.Background()

	var store ports.Store
	maxRows := 0
	if *dryRun {
		store = memory.NewStore()
	} else {
		cfg, err := config.Load(slogger)
		if err != nil {
			slogger.Error("failed to load configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}
		maxRows = cfg.Ledger.ImportMaxRows

		database, err := db.NewDatabase(ctx, &db.Config{
			Host:               cfg.Database.Host,
			Port:               cfg.Database.Port,
			User:               cfg.Database.User,
			Password:           cfg.Database.Password,
			Database:           cfg.Database.Name,
			SSLMode:            cfg.Database.SSLMode,
			MaxConnections:     4,
			MinConnections:     1,
			MaxConnLifetime:    cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
			HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
			ConnectTimeout:     cfg.Database.ConnectTimeout,
			StatementCacheMode: cfg.Database.StatementCacheMode,
		}, slogger)
		if err != nil {
			slogger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()
		store = db.NewStore(database, slogger)
	}

	registry := services.NewIdentifierRegistry(store, slogger)
	engine := services.NewReconciliationEngine(store, registry, nil, slogger)
	imports := services.NewImportService(store, engine, registry, slogger)

	state := seederState{}
	if !*force {
		state = loadState(*stateFile)
	}

	files, err := findManifests(*manifestsDir)
	if err != nil {
		slogger.Error("failed to list manifests", slog.String("error", err.Error()))
		os.Exit(1)
	}

	target := ports.ImportTarget{WarehouseID: warehouseID, ClientID: clientID, CreatedBy: *createdBy}

	totalFiles, totalRows, totalFailed := 0, 0, 0
	failedFiles := []string{}
	successDetails := map[string]int{}

	for i, path := range files {
		name := filepath.Base(path)
		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(files), name)

		if !*force && slices.Contains(state.ProcessedFiles, name) {
			slogger.Info("skipping already loaded manifest", slog.String("file", name))
			continue
		}

		report, err := loadManifest(ctx, imports, target, path, maxRows)
		if err != nil {
			slogger.Error("failed to load manifest",
				slog.String("file", name),
				slog.String("error", err.Error()))
			failedFiles = append(failedFiles, name)
			fmt.Printf("ERROR: Failed to load %s - %v\n", name, err)
			continue
		}

		for _, row := range report.Rows {
			if row.Status != domain.RowCommitted {
				fmt.Printf("  line %d (%s): %s\n", row.Line, row.ProductName, row.Error)
			}
		}
		fmt.Printf("SUCCESS: Loaded %s - %d/%d rows\n", name, report.Succeeded, report.Total)

		successDetails[name] = report.Succeeded
		totalFiles++
		totalRows += report.Succeeded
		totalFailed += report.Failed

		state.ProcessedFiles = append(state.ProcessedFiles, name)
		state.ProcessedCount = len(state.ProcessedFiles)
		state.LastUpdate = time.Now()

		if !*dryRun {
			if err := state.save(*stateFile); err != nil {
				slogger.Warn("failed to save seeder state", slog.String("error", err.Error()))
			}
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Manifests loaded: %d\n", totalFiles)
	fmt.Printf("Rows committed:   %d\n", totalRows)
	fmt.Printf("Rows failed:      %d\n", totalFailed)

	if len(successDetails) > 0 {
		fmt.Printf("\nLoaded (%d manifests):\n", len(successDetails))
		for file, count := range successDetails {
			fmt.Printf("  - %s: %d rows\n", file, count)
		}
	}

	if len(failedFiles) > 0 {
		fmt.Printf("\nFailed manifests (%d):\n", len(failedFiles))
		for _, file := range failedFiles {
			fmt.Printf("  - %s\n", file)
		}
	}

	slogger.Info("seed operation completed",
		slog.Int("manifests_loaded", totalFiles),
		slog.Int("rows_committed", totalRows),
		slog.Int("rows_failed", totalFailed),
		slog.Int("failed_manifests", len(failedFiles)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Rows were replayed against an in-memory ledger; the database was not touched")
	}
}

func loadManifest(ctx context.Context, imports ports.ImportService, target ports.ImportTarget, path string, maxRows int) (*domain.ImportReport, error) {
	format, ok := manifestFormat(path)
	if !ok {
		return nil, errors.New("unsupported manifest format")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rows, err := fileio.Read(format, data, maxRows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("no rows found")
	}
	return imports.Import(ctx, target, rows)
}
