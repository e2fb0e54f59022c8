package pipeline

import (
	"strings"
	"testing"

	"tickerize/internal/config"
)

func testScorer() Scorer {
	return NewScorer(config.DefaultScoreParams())
}

func TestScoreLengthPenaltyCapped(t *testing.T) {
	scorer := testScorer()
	query := "alpha beta"

	cases := []struct {
		name      string
		candidate string
		want      int
	}{
		{name: "within limit", candidate: query + " xxx", want: 0},
		{name: "just over limit", candidate: query + " " + strings.Repeat("x", 12), want: 13},
		{name: "far over limit", candidate: query + " " + strings.Repeat("x", 29), want: 20},
		{name: "extreme difference", candidate: query + " " + strings.Repeat("x", 60), want: 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, comps := scorer.Score(query, tc.candidate)
			if comps.LengthPenalty != tc.want {
				t.Fatalf("length penalty = %d, want %d", comps.LengthPenalty, tc.want)
			}
		})
	}
}

func TestScoreShortCandidateGuard(t *testing.T) {
	scorer := testScorer()
	_, comps := scorer.Score("services", "ser")
	if comps.Partial != 60 {
		t.Fatalf("partial = %d, want capped 60", comps.Partial)
	}
}

func TestScoreAcronym(t *testing.T) {
	scorer := testScorer()

	t.Run("exact acronym floors the composite", func(t *testing.T) {
		score, _ := scorer.Score("cams", "computer age management services")
		if score < 95 {
			t.Fatalf("score = %d, want >= 95", score)
		}
	})

	t.Run("acronym-shaped miss is penalized", func(t *testing.T) {
		_, comps := scorer.Score("wxyz", "alpha beta")
		if comps.AcronymAdjust != -15 {
			t.Fatalf("acronym adjust = %d, want -15", comps.AcronymAdjust)
		}
	})

	t.Run("first token of multi-word query matches acronym", func(t *testing.T) {
		_, comps := scorer.Score("cams services", "computer age management services")
		if comps.AcronymAdjust != 45 {
			t.Fatalf("acronym adjust = %d, want 45", comps.AcronymAdjust)
		}
	})
}

func TestScoreWordOverlap(t *testing.T) {
	scorer := testScorer()

	t.Run("full overlap with significant tokens", func(t *testing.T) {
		_, comps := scorer.Score("infosys tech", "infosys technologies")
		if comps.MatchRatio != 1.0 {
			t.Fatalf("match ratio = %v, want 1.0", comps.MatchRatio)
		}
		if comps.OverlapAdjust != 40 {
			t.Fatalf("overlap adjust = %d, want 40", comps.OverlapAdjust)
		}
	})

	t.Run("disjoint multi-token query is penalized", func(t *testing.T) {
		_, comps := scorer.Score("alpha beta", "gamma delta")
		if comps.OverlapAdjust != -25 {
			t.Fatalf("overlap adjust = %d, want -25", comps.OverlapAdjust)
		}
	})
}

func TestScoreFirstToken(t *testing.T) {
	scorer := testScorer()
	_, comps := scorer.Score("infosys services", "infosys systems")
	if comps.FirstTokenAdjust != 10 {
		t.Fatalf("first token adjust = %d, want 10", comps.FirstTokenAdjust)
	}
	if comps.PrefixBoost != 25 {
		t.Fatalf("prefix boost = %d, want 25", comps.PrefixBoost)
	}
}

func TestScoreTokenOrderInsensitive(t *testing.T) {
	scorer := testScorer()
	_, comps := scorer.Score("tata motors", "motors tata")
	if comps.TokenSort != 100 {
		t.Fatalf("token sort = %d, want 100", comps.TokenSort)
	}
}
