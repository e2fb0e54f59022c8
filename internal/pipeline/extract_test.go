package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleHTML = `
<html><body>
<table>
<tr><td>Stock Name
<span>sortable</span></td><td>Quantity</td></tr>
<tr><td><span class="exportName">Infosys Limited</span> INFY details</td><td>10</td></tr>
<tr><td>Tata Motors Limited</td><td>5</td></tr>
</table>
</body></html>`

func TestParseHTMLTable(t *testing.T) {
	table, err := ParseHTMLTable(strings.NewReader(sampleHTML))
	if err != nil {
		t.Fatal(err)
	}

	if len(table.Headers) != 2 || table.Headers[0] != "Stock Name" {
		t.Fatalf("unexpected headers: %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("unexpected row count: %d", len(table.Rows))
	}
	if table.Rows[0][0] != "Infosys Limited" {
		t.Fatalf("exportName span not preferred: %q", table.Rows[0][0])
	}
	if table.Rows[1][0] != "Tata Motors Limited" {
		t.Fatalf("unexpected cell: %q", table.Rows[1][0])
	}
}

func TestParseHTMLTableMissing(t *testing.T) {
	_, err := ParseHTMLTable(strings.NewReader("<html><body><p>no holdings</p></body></html>"))
	if !errors.Is(err, ErrNoTableFound) {
		t.Fatalf("unexpected error: %v", err)
	}
}

const samplePortfolio = `Client Portfolio Statement
Generated on 2026-08-31

Security,Quantity,Avg Price
Infosys Limited,10,1500.00
,,
Equity Sub Total,,,
Tata Motors Limited,5,400.00
Cash and Equivalent,,
Ledger Balance,1000
`

func TestParsePortfolioCSV(t *testing.T) {
	table, err := ParsePortfolioCSV([]byte(samplePortfolio))
	if err != nil {
		t.Fatal(err)
	}

	if table.Headers[0] != NameColumn {
		t.Fatalf("Security column not renamed: %v", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("unexpected rows: %v", table.Rows)
	}
	if table.Rows[0][0] != "Infosys Limited" || table.Rows[1][0] != "Tata Motors Limited" {
		t.Fatalf("unexpected rows: %v", table.Rows)
	}
}

func TestParsePortfolioCSVMissingSection(t *testing.T) {
	_, err := ParsePortfolioCSV([]byte("Name,Code\nInfosys,1\n"))
	if !errors.Is(err, ErrNoPortfolioSection) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseCSVRenamesNameColumn(t *testing.T) {
	table, err := ParseCSV([]byte("Name,Code\nInfosys Limited,500209\n"))
	if err != nil {
		t.Fatal(err)
	}
	if table.Headers[0] != NameColumn {
		t.Fatalf("Name column not renamed: %v", table.Headers)
	}
}

func TestExtractTableDispatch(t *testing.T) {
	tmp := t.TempDir()

	csvPath := filepath.Join(tmp, "portfolio.csv")
	if err := os.WriteFile(csvPath, []byte(samplePortfolio), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := ExtractTable(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if table.Headers[0] != NameColumn || len(table.Rows) != 2 {
		t.Fatalf("unexpected table: %+v", table)
	}

	htmlPath := filepath.Join(tmp, "holdings.xls")
	if err := os.WriteFile(htmlPath, []byte(sampleHTML), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err = ExtractTable(htmlPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("unexpected table: %+v", table)
	}

	if _, err := ExtractTable(filepath.Join(tmp, "notes.txt")); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
