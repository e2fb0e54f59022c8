package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"tickerize/internal"
)

var (
	ErrNoTableFound       = errors.New("no table found in HTML file")
	ErrNoPortfolioSection = errors.New("could not find equity section in portfolio file")
)

// NameColumn is the header under which extracted tables carry the company
// name to resolve.
const NameColumn = "Stock Name"

// SupportedExtensions lists the input formats the batch processor accepts.
// Brokerages commonly ship HTML tables under an .xls extension.
var SupportedExtensions = []string{".xls", ".xlsx", ".csv", ".html"}

// ExtractTable reads one holdings export, dispatching on file extension.
// CSV files are first tried as sectioned portfolio exports and fall back to
// plain CSV.
func ExtractTable(path string) (internal.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls", ".html":
		f, err := os.Open(path)
		if err != nil {
			return internal.Table{}, err
		}
		defer f.Close()
		return ParseHTMLTable(f)
	case ".xlsx":
		return ParseXLSXFile(path)
	case ".csv":
		blob, err := os.ReadFile(path)
		if err != nil {
			return internal.Table{}, err
		}
		table, err := ParsePortfolioCSV(blob)
		if err == nil {
			return table, nil
		}
		return ParseCSV(blob)
	default:
		return internal.Table{}, fmt.Errorf("unsupported file format: %s", filepath.Ext(path))
	}
}

// ParseHTMLTable extracts the first <table> of an HTML holdings export.
// Header text is truncated at the first line break; data cells prefer the
// text of a span.exportName child over the full cell text.
func ParseHTMLTable(r io.Reader) (internal.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return internal.Table{}, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return internal.Table{}, ErrNoTableFound
	}

	rows := table.Find("tr")
	if rows.Length() == 0 {
		return internal.Table{}, ErrNoTableFound
	}

	headers := []string{}
	rows.First().Find("td,th").Each(func(_ int, cell *goquery.Selection) {
		header := strings.TrimSpace(cell.Text())
		header, _, _ = strings.Cut(header, "\n")
		headers = append(headers, strings.TrimSpace(header))
	})

	out := internal.Table{Headers: headers}
	rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			export := cell.Find("span.exportName")
			if export.Length() > 0 {
				cells = append(cells, strings.TrimSpace(export.First().Text()))
				return
			}
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			out.Rows = append(out.Rows, cells)
		}
	})

	return out, nil
}

// ParseXLSXFile reads the first sheet of a workbook, first row as headers.
func ParseXLSXFile(path string) (internal.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return internal.Table{}, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return internal.Table{}, err
	}
	if len(rows) == 0 {
		return internal.Table{}, fmt.Errorf("empty sheet: %s", sheet)
	}

	out := internal.Table{Headers: trimCells(rows[0])}
	for _, row := range rows[1:] {
		cells := trimCells(row)
		// GetRows returns ragged rows; pad to the header width.
		for len(cells) < len(out.Headers) {
			cells = append(cells, "")
		}
		out.Rows = append(out.Rows, cells)
	}
	return out, nil
}

// ParsePortfolioCSV slices the equity section out of a sectioned portfolio
// export. The section starts at a "Security,Quantity" or
// "Stock Name,BSE Code" header line and ends before "Cash and Equivalent".
// Security/Name columns are renamed to the canonical name column; blank and
// Equity-marked rows under a Security column are dropped.
func ParsePortfolioCSV(blob []byte) (internal.Table, error) {
	lines := strings.Split(strings.ReplaceAll(string(blob), "\r\n", "\n"), "\n")

	start := -1
	for i, line := range lines {
		if strings.Contains(line, "Security,Quantity") || strings.Contains(line, "Stock Name,BSE Code") {
			start = i
			break
		}
	}
	if start == -1 {
		return internal.Table{}, ErrNoPortfolioSection
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.Contains(lines[i], "Cash and Equivalent") {
			end = i
			break
		}
	}

	section := strings.Join(lines[start:end], "\n")
	table, err := parseCSVRecords(section)
	if err != nil {
		return internal.Table{}, err
	}

	if idx := headerIndex(table.Headers, "Security"); idx >= 0 {
		table.Headers[idx] = NameColumn
		kept := table.Rows[:0]
		for _, row := range table.Rows {
			if idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
				continue
			}
			if strings.Contains(row[idx], "Equity") {
				continue
			}
			kept = append(kept, row)
		}
		table.Rows = kept
	} else if idx := headerIndex(table.Headers, "Name"); idx >= 0 && headerIndex(table.Headers, NameColumn) < 0 {
		table.Headers[idx] = NameColumn
	}

	return table, nil
}

// ParseCSV reads a plain CSV with a header row, renaming a Name column to
// the canonical name column when no Stock Name column is present.
func ParseCSV(blob []byte) (internal.Table, error) {
	table, err := parseCSVRecords(string(blob))
	if err != nil {
		return internal.Table{}, err
	}
	if idx := headerIndex(table.Headers, "Name"); idx >= 0 && headerIndex(table.Headers, NameColumn) < 0 {
		table.Headers[idx] = NameColumn
	}
	return table, nil
}

func parseCSVRecords(content string) (internal.Table, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return internal.Table{}, err
	}
	if len(records) == 0 {
		return internal.Table{}, errors.New("empty csv input")
	}

	out := internal.Table{Headers: trimCells(records[0])}
	for _, record := range records[1:] {
		out.Rows = append(out.Rows, trimCells(record))
	}
	return out, nil
}

func headerIndex(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
