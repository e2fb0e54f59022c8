package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"tickerize/internal"
	"tickerize/internal/catalog"
	"tickerize/internal/config"
	"tickerize/internal/logging"
	"tickerize/internal/pipeline"
	"tickerize/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	log := logging.Setup(cfg)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "reference:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		csvPath := fs.String("csv", cfg.ReferenceCSVPath, "reference csv path")
		nameCol := fs.String("name-col", cfg.ReferenceNameColumn, "company name column")
		tickerCol := fs.String("ticker-col", cfg.ReferenceTickerColumn, "ticker column")
		_ = fs.Parse(os.Args[2:])
		cfg.ReferenceNameColumn = *nameCol
		cfg.ReferenceTickerColumn = *tickerCol
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.ImportCSV(*csvPath)
		must(err)
		fmt.Printf("reference import complete: %d entries\n", count)
	case "reference:sync":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.SyncFromURL(context.Background())
		must(err)
		fmt.Printf("reference sync complete: %d entries\n", count)
	case "resolve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		name := fs.String("name", "", "company name to resolve")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--name is required"))
		}
		matcher, err := pipeline.NewMatcher(cfg, mustReference(db, cfg), log)
		must(err)
		result := matcher.Resolve(*name)
		if result.Ticker == "" {
			fmt.Printf("no match for %q\n", *name)
			return
		}
		fmt.Printf("%s -> %s (strategy=%s score=%d matched=%q)\n",
			*name, result.Ticker, result.Strategy, result.Score, result.MatchedName)
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		output := fs.String("output", "", "output file path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *output == "" {
			must(fmt.Errorf("--input and --output are required"))
		}
		processor, err := pipeline.NewProcessor(db, cfg, mustReference(db, cfg), log)
		must(err)
		stats, err := processor.ProcessFile(*input, *output)
		must(err)
		fmt.Printf("run done names=%d counts=%v output=%s\n", stats.Names, stats.ByStrategy, *output)
	case "batch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		inputDir := fs.String("input-dir", cfg.InputDir, "directory with holdings exports")
		outputDir := fs.String("output-dir", cfg.OutputDir, "directory for annotated output")
		_ = fs.Parse(os.Args[2:])
		must(os.MkdirAll(*inputDir, 0o755))
		must(os.MkdirAll(*outputDir, 0o755))
		processor, err := pipeline.NewProcessor(db, cfg, mustReference(db, cfg), log)
		must(err)
		processed, err := processor.ProcessDirectory(*inputDir, *outputDir)
		must(err)
		fmt.Printf("batch done files=%d output=%s\n", processed, *outputDir)
	default:
		usage()
		os.Exit(1)
	}
}

// mustReference loads the stored reference list, falling back to the
// configured CSV when the database is empty.
func mustReference(db *storage.DB, cfg config.Config) []internal.ReferenceEntry {
	entries, err := db.ListReference()
	must(err)
	if len(entries) > 0 {
		return entries
	}

	entries, err = catalog.LoadReferenceCSV(cfg.ReferenceCSVPath, cfg.ReferenceNameColumn, cfg.ReferenceTickerColumn)
	must(err)
	return entries
}

func usage() {
	fmt.Println("usage: tickerize <command>")
	fmt.Println("commands:")
	fmt.Println("  reference:import [--csv path] [--name-col Default] [--ticker-col \"Bloom Ticker\"]")
	fmt.Println("  reference:sync")
	fmt.Println("  resolve --name \"Infosys Limited\"")
	fmt.Println("  run --input holdings.html --output out/holdings_with_tickers.xlsx")
	fmt.Println("  batch [--input-dir input] [--output-dir output]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
