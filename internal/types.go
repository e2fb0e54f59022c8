package internal

// ReferenceEntry is one known company name and its ticker code, as supplied
// by the reference list (CSV import or HTTP sync).
type ReferenceEntry struct {
	Name   string
	Ticker string
}

type Strategy string

const (
	StrategyExact  Strategy = "exact"
	StrategyDirect Strategy = "direct"
	StrategyFuzzy  Strategy = "fuzzy"
	StrategyNone   Strategy = "none"
)

// MatchResult is the outcome of resolving one raw name. Ticker is empty when
// no strategy produced a qualifying candidate.
type MatchResult struct {
	Ticker      string
	Score       int
	Strategy    Strategy
	MatchedName string
	Normalized  string
}

// Table is a parsed holdings export: one header row plus data rows, all cells
// as trimmed strings.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ResolutionRow is the persisted diagnostic record for one resolved name
// within a run.
type ResolutionRow struct {
	Position    int
	RawName     string
	Normalized  string
	Strategy    string
	MatchedName string
	Ticker      string
	Score       int
}

type RunStats struct {
	Names      int
	ByStrategy map[string]int
	ElapsedMs  int64
}
