package pipeline

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"tickerize/internal"
	"tickerize/internal/catalog"
	"tickerize/internal/config"
)

// Non-equity markers: rows carrying these literal substrings are cash or
// fund lines, never resolvable company names.
var skipMarkers = []string{"Cash", "Equity"}

type resultKey struct {
	raw     string
	version uint64
}

// Matcher resolves raw company names against one immutable reference index.
// Both caches are instance-scoped and die with the run; the result cache is
// additionally keyed by the index version so a rebuilt index never serves
// stale matches. lru.Cache is internally locked, so Resolve is safe to call
// from concurrent goroutines.
type Matcher struct {
	cfg    config.Config
	index  *catalog.Index
	scorer Scorer
	log    *logrus.Logger

	normCache   *lru.Cache[string, string]
	resultCache *lru.Cache[resultKey, internal.MatchResult]
}

func NewMatcher(cfg config.Config, entries []internal.ReferenceEntry, log *logrus.Logger) (*Matcher, error) {
	index, err := catalog.BuildIndex(entries, Normalize)
	if err != nil {
		return nil, err
	}
	return NewMatcherWithIndex(cfg, index, log)
}

func NewMatcherWithIndex(cfg config.Config, index *catalog.Index, log *logrus.Logger) (*Matcher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	normCache, err := lru.New[string, string](cacheSize(cfg.NormalizeCacheSize, 1000))
	if err != nil {
		return nil, err
	}
	resultCache, err := lru.New[resultKey, internal.MatchResult](cacheSize(cfg.ResultCacheSize, 500))
	if err != nil {
		return nil, err
	}

	return &Matcher{
		cfg:         cfg,
		index:       index,
		scorer:      NewScorer(cfg.Score),
		log:         log,
		normCache:   normCache,
		resultCache: resultCache,
	}, nil
}

func (m *Matcher) Index() *catalog.Index {
	return m.index
}

// Resolve runs the strategy chain for one raw name: skip rules, exact,
// direct, then fuzzy. The first strategy to produce a result wins.
func (m *Matcher) Resolve(raw string) internal.MatchResult {
	key := resultKey{raw: raw, version: m.index.Version()}
	if cached, ok := m.resultCache.Get(key); ok {
		return cached
	}

	result := m.resolve(raw)
	m.resultCache.Add(key, result)
	return result
}

func (m *Matcher) resolve(raw string) internal.MatchResult {
	if m.shouldSkip(raw) {
		m.log.WithField("name", raw).Debug("skipping: empty or non-equity row")
		return internal.MatchResult{Strategy: internal.StrategyNone}
	}

	normalized := m.normalize(raw)
	if len(normalized) <= 2 {
		m.log.WithFields(logrus.Fields{"name": raw, "normalized": normalized}).
			Debug("skipping: too short after normalization")
		return internal.MatchResult{Strategy: internal.StrategyNone, Normalized: normalized}
	}

	m.log.WithFields(logrus.Fields{"name": raw, "normalized": normalized}).Debug("searching")

	if entry, ok := m.index.Exact(normalized); ok {
		m.log.WithFields(logrus.Fields{"name": raw, "ticker": entry.Ticker}).Debug("exact match")
		return internal.MatchResult{
			Ticker:      entry.Ticker,
			Score:       m.cfg.Score.ExactMatchScore,
			Strategy:    internal.StrategyExact,
			MatchedName: entry.Name,
			Normalized:  normalized,
		}
	}

	if entry, ok := m.direct(normalized); ok {
		m.log.WithFields(logrus.Fields{"name": raw, "ticker": entry.Ticker}).Debug("direct name match")
		return internal.MatchResult{
			Ticker:      entry.Ticker,
			Score:       m.cfg.Score.ExactMatchScore,
			Strategy:    internal.StrategyDirect,
			MatchedName: entry.Name,
			Normalized:  normalized,
		}
	}

	if entry, score, ok := m.fuzzy(normalized); ok {
		m.log.WithFields(logrus.Fields{"name": raw, "ticker": entry.Ticker, "score": score}).
			Debug("fuzzy match")
		return internal.MatchResult{
			Ticker:      entry.Ticker,
			Score:       score,
			Strategy:    internal.StrategyFuzzy,
			MatchedName: entry.Name,
			Normalized:  normalized,
		}
	}

	m.log.WithField("name", raw).Debug("no match")
	return internal.MatchResult{Strategy: internal.StrategyNone, Normalized: normalized}
}

func (m *Matcher) shouldSkip(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	for _, marker := range skipMarkers {
		if strings.Contains(raw, marker) {
			return true
		}
	}
	return false
}

func (m *Matcher) normalize(raw string) string {
	if cached, ok := m.normCache.Get(raw); ok {
		return cached
	}
	normalized := Normalize(raw)
	m.normCache.Add(raw, normalized)
	return normalized
}

// direct applies only to single-token queries of length >= 3: the query must
// appear in the candidate's upper-cased display name as a standalone word or
// as its leading word. First index hit wins.
func (m *Matcher) direct(normalized string) (catalog.Entry, bool) {
	if strings.ContainsRune(normalized, ' ') || len(normalized) < 3 {
		return catalog.Entry{}, false
	}

	query := strings.ToUpper(normalized)
	for _, entry := range m.index.Entries() {
		name := strings.ToUpper(entry.Name)
		if strings.Contains(" "+name+" ", " "+query+" ") || strings.HasPrefix(name, query+" ") {
			return entry, true
		}
	}
	return catalog.Entry{}, false
}

// fuzzy scans the whole index and keeps the strictly highest composite score
// at or above the acceptance threshold. Ties keep the earlier entry.
func (m *Matcher) fuzzy(normalized string) (catalog.Entry, int, bool) {
	var best catalog.Entry
	bestScore := 0
	found := false

	for _, entry := range m.index.Entries() {
		if entry.Normalized == "" {
			continue
		}
		score, _ := m.scorer.Score(normalized, entry.Normalized)
		if score > bestScore && score >= m.cfg.Score.Threshold {
			bestScore = score
			best = entry
			found = true
		}
	}
	return best, bestScore, found
}

func cacheSize(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
