package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tickerize/internal"
	"tickerize/internal/config"
	"tickerize/internal/storage"
)

// Processor runs whole files and directories through one Matcher, persisting
// per-run stats and per-name resolutions for later inspection. The matcher
// and its caches live for the processor's lifetime and are discarded with it.
type Processor struct {
	db      *storage.DB
	cfg     config.Config
	matcher *Matcher
	log     *logrus.Logger
}

func NewProcessor(db *storage.DB, cfg config.Config, entries []internal.ReferenceEntry, log *logrus.Logger) (*Processor, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	matcher, err := NewMatcher(cfg, entries, log)
	if err != nil {
		return nil, err
	}
	return &Processor{db: db, cfg: cfg, matcher: matcher, log: log}, nil
}

func (p *Processor) Matcher() *Matcher {
	return p.matcher
}

// ProcessFile resolves one holdings export. CSV inputs are annotated line by
// line to preserve their structure; table formats are rewritten as xlsx with
// a leading Tickers column.
func (p *Processor) ProcessFile(inputPath, outputPath string) (internal.RunStats, error) {
	start := time.Now()
	stats := internal.RunStats{ByStrategy: map[string]int{}}
	var resolutions []internal.ResolutionRow

	record := func(position int, raw string, result internal.MatchResult) {
		stats.Names++
		stats.ByStrategy[string(result.Strategy)]++
		resolutions = append(resolutions, internal.ResolutionRow{
			Position:    position,
			RawName:     raw,
			Normalized:  result.Normalized,
			Strategy:    string(result.Strategy),
			MatchedName: result.MatchedName,
			Ticker:      result.Ticker,
			Score:       result.Score,
		})
	}

	var err error
	if strings.EqualFold(filepath.Ext(inputPath), ".csv") {
		err = p.processCSVLines(inputPath, outputPath, record)
	} else {
		err = p.processTable(inputPath, outputPath, record)
	}
	if err != nil {
		return stats, err
	}

	stats.ElapsedMs = time.Since(start).Milliseconds()
	if err := p.persistRun(inputPath, stats, resolutions); err != nil {
		return stats, err
	}

	p.log.WithFields(logrus.Fields{
		"input":   inputPath,
		"output":  outputPath,
		"names":   stats.Names,
		"counts":  stats.ByStrategy,
		"elapsed": stats.ElapsedMs,
	}).Info("processed file")

	return stats, nil
}

// ProcessDirectory runs every supported file in inputDir. A failing file is
// logged and skipped; the batch continues.
func (p *Processor) ProcessDirectory(inputDir, outputDir string) (int, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isSupported(entry.Name()) {
			continue
		}

		inputPath := filepath.Join(inputDir, entry.Name())
		outputPath := filepath.Join(outputDir, outputName(entry.Name()))

		if _, err := p.ProcessFile(inputPath, outputPath); err != nil {
			p.log.WithError(err).WithField("input", inputPath).Error("failed to process file")
			continue
		}
		processed++
	}
	return processed, nil
}

func (p *Processor) processCSVLines(inputPath, outputPath string, record func(int, string, internal.MatchResult)) error {
	blob, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	lines := strings.Split(strings.TrimSuffix(strings.ReplaceAll(string(blob), "\r\n", "\n"), "\n"), "\n")
	position := 0
	annotated := AnnotateCSVLines(lines, func(name string) internal.MatchResult {
		position++
		result := p.matcher.Resolve(name)
		record(position, name, result)
		return result
	})

	return WriteLines(annotated, outputPath)
}

func (p *Processor) processTable(inputPath, outputPath string, record func(int, string, internal.MatchResult)) error {
	table, err := ExtractTable(inputPath)
	if err != nil {
		return err
	}

	nameIdx := headerIndex(table.Headers, NameColumn)
	if nameIdx < 0 {
		return fmt.Errorf("no %q column in %s", NameColumn, inputPath)
	}

	tickers := make([]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		raw := ""
		if nameIdx < len(row) {
			raw = row[nameIdx]
		}
		result := p.matcher.Resolve(raw)
		record(i+1, raw, result)
		tickers = append(tickers, result.Ticker)
	}

	return WriteTableXLSX(table, tickers, outputPath)
}

func (p *Processor) persistRun(inputPath string, stats internal.RunStats, resolutions []internal.ResolutionRow) error {
	if p.db == nil {
		return nil
	}
	runID, err := p.db.InsertRun(traceID(), inputPath, stats)
	if err != nil {
		return err
	}
	return p.db.InsertResolutions(runID, resolutions)
}

// outputName mirrors the input base name: CSV stays CSV (line mode), table
// formats become xlsx.
func outputName(inputName string) string {
	base := strings.TrimSuffix(inputName, filepath.Ext(inputName))
	if strings.EqualFold(filepath.Ext(inputName), ".csv") {
		return base + "_with_tickers.csv"
	}
	return base + "_with_tickers.xlsx"
}

func isSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
