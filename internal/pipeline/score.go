package pipeline

import (
	"math"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/agnivade/levenshtein"

	"tickerize/internal/config"
)

// Reusable local-alignment metric for partial (best substring) similarity.
var smithWaterman = metrics.NewSmithWatermanGotoh()

// ScoreComponents is the per-candidate breakdown behind a composite score,
// kept for diagnostics and tests.
type ScoreComponents struct {
	TokenSort int
	Partial   int
	TokenSet  int
	Base      int

	MatchRatio       float64
	SignificantRatio float64

	OverlapAdjust    int
	LengthPenalty    int
	FirstTokenAdjust int
	PrefixBoost      int
	AcronymAdjust    int

	Composite int
}

// Scorer ranks one normalized candidate against a normalized query. The
// composite score is an unbounded additive ranking value, not a probability.
type Scorer struct {
	params config.ScoreParams
}

func NewScorer(params config.ScoreParams) Scorer {
	return Scorer{params: params}
}

// Score combines three base similarity metrics with word-overlap boosts,
// length and first-token adjustments and acronym heuristics. Both inputs must
// already be normalized.
func (s Scorer) Score(query, candidate string) (int, ScoreComponents) {
	p := s.params
	c := ScoreComponents{}

	queryTokens := strings.Fields(query)
	candidateTokens := strings.Fields(candidate)

	c.TokenSort = levRatio(sortedJoin(queryTokens), sortedJoin(candidateTokens))
	c.Partial = partialRatio(query, candidate)
	c.TokenSet = tokenSetRatio(queryTokens, candidateTokens)

	// Stop short fragments from over-matching inside long words.
	if len(candidate) <= p.ShortCandidateLen && c.Partial > p.ShortCandidatePartialMin {
		c.Partial = p.ShortCandidatePartialCap
	}

	score := max3(c.TokenSort, c.Partial, c.TokenSet)
	c.Base = score

	matched, significant := overlapCounts(queryTokens, candidateTokens)
	c.MatchRatio = float64(matched) / float64(maxInt(1, len(queryTokens)))

	significantTotal := 0
	for _, t := range queryTokens {
		if len(t) > 3 {
			significantTotal++
		}
	}
	c.SignificantRatio = float64(significant) / float64(maxInt(1, significantTotal))

	switch {
	case c.MatchRatio >= p.StrongOverlapRatio && c.SignificantRatio >= p.StrongSignificantMin:
		c.OverlapAdjust = p.StrongOverlapBoost
	case c.MatchRatio >= p.GoodOverlapRatio:
		c.OverlapAdjust = p.GoodOverlapBoost
	case c.MatchRatio >= p.HalfOverlapRatio:
		c.OverlapAdjust = p.HalfOverlapBoost
	}
	if len(queryTokens) >= 2 && c.MatchRatio < p.LowOverlapRatio {
		c.OverlapAdjust -= p.LowOverlapPenalty
	}
	score += c.OverlapAdjust

	if diff := absInt(len(query) - len(candidate)); diff > p.LengthDiffLimit {
		c.LengthPenalty = minInt(p.LengthDiffPenaltyCap, diff)
		score -= c.LengthPenalty
	}

	if len(queryTokens) > 0 && len(candidateTokens) > 0 {
		first := levRatio(queryTokens[0], candidateTokens[0])
		if first < p.FirstTokenWeakSim {
			c.FirstTokenAdjust = -p.FirstTokenPenalty
		} else if first >= p.FirstTokenStrongSim {
			c.FirstTokenAdjust = p.FirstTokenBonus
		}
		score += c.FirstTokenAdjust

		q0, c0 := queryTokens[0], candidateTokens[0]
		switch {
		case q0 == c0:
			c.PrefixBoost = p.FirstTokenEqualBoost
		case len(q0) >= 3 && strings.HasPrefix(c0, q0):
			c.PrefixBoost = p.QueryPrefixBoost
		case len(c0) >= 3 && strings.HasPrefix(q0, c0):
			c.PrefixBoost = p.CandidatePrefixBoost
		}
		score += c.PrefixBoost
	}

	score = s.applyAcronym(score, queryTokens, candidateTokens, &c)

	c.Composite = score
	return score, c
}

// applyAcronym scores a short query against the first letters of a
// multi-word candidate (tokens longer than 2 characters contribute).
func (s Scorer) applyAcronym(score int, queryTokens, candidateTokens []string, c *ScoreComponents) int {
	p := s.params
	if len(candidateTokens) < 2 {
		return score
	}

	var b strings.Builder
	for _, t := range candidateTokens {
		if len(t) > 2 {
			b.WriteString(strings.ToUpper(t[:1]))
		}
	}
	acronym := b.String()

	before := score
	if len(queryTokens) == 1 && len(queryTokens[0]) >= 3 {
		q := strings.ToUpper(queryTokens[0])
		if q == acronym {
			score += p.AcronymExactBoost
			if score < p.AcronymExactFloor {
				score = p.AcronymExactFloor
			}
		} else if strings.Contains(acronym, q) || strings.HasPrefix(acronym, q) {
			score += p.AcronymPartialBoost
		} else if len(q) >= 3 && len(q) <= 5 {
			// Query looks like an acronym but does not match this one.
			score -= p.AcronymMissPenalty
		}
	} else if len(queryTokens) >= 2 && len(queryTokens[0]) >= 3 {
		first := strings.ToUpper(queryTokens[0])
		if first == acronym {
			score += p.AcronymFirstBoost
		} else if strings.Contains(acronym, first) || strings.HasPrefix(acronym, first) {
			score += p.AcronymFirstPartBoost
		}
	}

	c.AcronymAdjust = score - before
	return score
}

// overlapCounts reports how many query tokens appear among candidate tokens,
// verbatim or as a length-3+ prefix in either direction. significant counts
// matches of query tokens longer than 3 characters, excluding the
// candidate-prefixes-query case.
func overlapCounts(queryTokens, candidateTokens []string) (matched, significant int) {
	candidateSet := map[string]struct{}{}
	for _, t := range candidateTokens {
		candidateSet[t] = struct{}{}
	}

	for _, q := range queryTokens {
		if _, ok := candidateSet[q]; ok {
			matched++
			if len(q) > 3 {
				significant++
			}
			continue
		}
		for _, cand := range candidateTokens {
			if len(q) >= 3 && strings.HasPrefix(cand, q) {
				matched++
				if len(q) > 3 {
					significant++
				}
				break
			}
			if len(cand) >= 3 && strings.HasPrefix(q, cand) {
				matched++
				break
			}
		}
	}
	return matched, significant
}

// levRatio is a Levenshtein similarity on a 0-100 scale.
func levRatio(a, b string) int {
	if a == b {
		return 100
	}
	longest := maxInt(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(dist)/float64(longest))))
}

// partialRatio is the best local substring alignment between the two strings
// on a 0-100 scale (Smith-Waterman-Gotoh).
func partialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	return int(math.Round(100 * strutil.Similarity(a, b, smithWaterman)))
}

// tokenSetRatio compares the sorted token intersection against each side's
// full sorted token set, which makes the metric insensitive to extra tokens
// on either side.
func tokenSetRatio(aTokens, bTokens []string) int {
	aSet := uniqueSorted(aTokens)
	bSet := uniqueSorted(bTokens)

	inB := map[string]struct{}{}
	for _, t := range bSet {
		inB[t] = struct{}{}
	}

	var inter, aRest []string
	for _, t := range aSet {
		if _, ok := inB[t]; ok {
			inter = append(inter, t)
		} else {
			aRest = append(aRest, t)
		}
	}
	inA := map[string]struct{}{}
	for _, t := range aSet {
		inA[t] = struct{}{}
	}
	var bRest []string
	for _, t := range bSet {
		if _, ok := inA[t]; !ok {
			bRest = append(bRest, t)
		}
	}

	base := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(base + " " + strings.Join(aRest, " "))
	combinedB := strings.TrimSpace(base + " " + strings.Join(bRest, " "))

	return max3(levRatio(base, combinedA), levRatio(base, combinedB), levRatio(combinedA, combinedB))
}

func sortedJoin(tokens []string) string {
	out := append([]string(nil), tokens...)
	sort.Strings(out)
	return strings.Join(out, " ")
}

func uniqueSorted(tokens []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func max3(a, b, c int) int {
	return maxInt(a, maxInt(b, c))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
