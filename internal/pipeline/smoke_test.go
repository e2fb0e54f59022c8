package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"tickerize/internal"
	"tickerize/internal/config"
	"tickerize/internal/storage"
)

func testProcessor(t *testing.T, dbPath string) *Processor {
	t.Helper()
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}

	entries := []internal.ReferenceEntry{
		{Name: "Infosys Limited", Ticker: "INFY"},
		{Name: "Tata Motors Limited", Ticker: "TTMT"},
		{Name: "BLS International Services", Ticker: "BLS"},
	}
	proc, err := NewProcessor(db, cfg, entries, nil)
	if err != nil {
		t.Fatal(err)
	}
	return proc
}

func TestSmokeCSVToAnnotatedCSV(t *testing.T) {
	tmp := t.TempDir()
	proc := testProcessor(t, filepath.Join(tmp, "app.db"))

	input := filepath.Join(tmp, "portfolio.csv")
	content := strings.Join([]string{
		"Portfolio Statement",
		"Security,Quantity",
		"Infosys Limited,10",
		"Cash and Equivalent,5",
	}, "\n") + "\n"
	if err := os.WriteFile(input, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(tmp, "portfolio_with_tickers.csv")
	stats, err := proc.ProcessFile(input, output)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Names == 0 {
		t.Fatal("no names processed")
	}

	blob, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(string(blob), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("unexpected output lines: %q", lines)
	}
	if lines[0] != ",Portfolio Statement" {
		t.Fatalf("header line not preserved: %q", lines[0])
	}
	if lines[2] != "INFY,Infosys Limited,10" {
		t.Fatalf("data line not annotated: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], ",Cash and Equivalent") {
		t.Fatalf("cash line not skipped: %q", lines[3])
	}
}

func TestSmokeHTMLToXLSX(t *testing.T) {
	tmp := t.TempDir()
	proc := testProcessor(t, filepath.Join(tmp, "app.db"))

	input := filepath.Join(tmp, "holdings.html")
	if err := os.WriteFile(input, []byte(sampleHTML), 0o644); err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(tmp, "holdings_with_tickers.xlsx")
	stats, err := proc.ProcessFile(input, output)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Names != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	f, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if rows[0][0] != "Tickers" {
		t.Fatalf("missing Tickers column: %v", rows[0])
	}
	if rows[1][0] != "INFY" {
		t.Fatalf("first row not resolved: %v", rows[1])
	}
}

func TestProcessDirectory(t *testing.T) {
	tmp := t.TempDir()
	proc := testProcessor(t, filepath.Join(tmp, "app.db"))

	inputDir := filepath.Join(tmp, "input")
	outputDir := filepath.Join(tmp, "output")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(inputDir, "holdings.html"), []byte(sampleHTML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inputDir, "broken.xlsx"), []byte("not a workbook"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inputDir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatal(err)
	}

	processed, err := proc.ProcessDirectory(inputDir, outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "holdings_with_tickers.xlsx")); err != nil {
		t.Fatal(err)
	}
}
