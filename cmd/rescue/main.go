// Command rescue runs the cleaning pipeline over a directory of CSV
// exports without the API server: it reads products.csv, stores.csv,
// sales.csv and inventory.csv from the input directory and writes the
// cleaned tables plus the issue log to the output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/uaepulse/pulse-backend/internal/cleaning"
	"github.com/uaepulse/pulse-backend/internal/dataset"
	"github.com/uaepulse/pulse-backend/pkg/config"
	"github.com/uaepulse/pulse-backend/pkg/enums"
	"github.com/uaepulse/pulse-backend/pkg/logger"
	"github.com/uaepulse/pulse-backend/pkg/table"
)

func main() {
	inDir := flag.String("in", ".", "directory containing the four raw CSV files")
	outDir := flag.String("out", "cleaned", "directory the cleaned CSVs and issue log are written to")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "rescue"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "rescue",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(ctx, cfg, logg, *inDir, *outDir); err != nil {
		logg.Error(ctx, "cleaning run failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, inDir, outDir string) error {
	tables := make(map[enums.TableName]*table.Table, len(enums.TableNames()))
	for _, name := range enums.TableNames() {
		t, err := readCSV(filepath.Join(inDir, name.String()+".csv"))
		if err != nil {
			return fmt.Errorf("loading %s: %w", name, err)
		}
		tables[name] = t
	}

	pipeline := cleaning.New(cfg.Cleaning, logg, nil)
	result, err := pipeline.CleanAll(ctx,
		tables[enums.TableProducts],
		tables[enums.TableStores],
		tables[enums.TableSales],
		tables[enums.TableInventory],
	)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	outputs := map[string]*table.Table{
		enums.TableProducts.String() + "_clean.csv":  result.Products,
		enums.TableStores.String() + "_clean.csv":    result.Stores,
		enums.TableSales.String() + "_clean.csv":     result.Sales,
		enums.TableInventory.String() + "_clean.csv": result.Inventory,
	}
	for filename, t := range outputs {
		if err := writeCSV(filepath.Join(outDir, filename), t); err != nil {
			return err
		}
	}

	issuesPath := filepath.Join(outDir, "cleaning_issues.csv")
	issuesFile, err := os.Create(issuesPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", issuesPath, err)
	}
	defer issuesFile.Close()
	if err := dataset.WriteIssuesCSV(issuesFile, result.Issues); err != nil {
		return fmt.Errorf("writing issue log: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"run_id":        result.Issues.RunID,
		"total_fixed":   result.Stats.TotalFixed,
		"total_dropped": result.Stats.TotalDropped,
		"out_dir":       outDir,
	})
	logg.Info(ctx, "cleaned dataset written")
	return nil
}

func readCSV(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.DecodeCSV(f)
}

func writeCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := dataset.EncodeCSV(f, t); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
