package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tickerize/internal"
)

// WriteTableXLSX writes the table to a workbook with a Tickers column
// inserted first. tickers must be aligned with table.Rows.
func WriteTableXLSX(table internal.Table, tickers []string, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	set := func(col, row int, value any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, value)
	}

	set(1, 1, "Tickers")
	for i, h := range table.Headers {
		set(i+2, 1, h)
	}

	for i, row := range table.Rows {
		ticker := ""
		if i < len(tickers) {
			ticker = tickers[i]
		}
		set(1, i+2, ticker)
		for j, cell := range row {
			set(j+2, i+2, cell)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// AnnotateCSVLines prefixes every input line with a ticker column while
// preserving the original line content. Lines without a comma (headers,
// separators, blanks) get an empty ticker cell; for data lines the first
// field is resolved through resolve.
func AnnotateCSVLines(lines []string, resolve func(string) internal.MatchResult) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !strings.Contains(line, ",") || strings.TrimSpace(line) == "" {
			out = append(out, ","+line)
			continue
		}
		name := strings.Split(strings.TrimSpace(line), ",")[0]
		result := resolve(name)
		out = append(out, result.Ticker+","+line)
	}
	return out
}

// WriteLines writes annotated CSV lines joined with newlines.
func WriteLines(lines []string, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	content := strings.Join(lines, "\n")
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(outputPath, []byte(content), 0o644)
}
