package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ScoreParams carries every tuned constant of the candidate scorer. The
// defaults are empirically tuned values; they can be overridden through the
// environment for experimentation without rebuilding.
type ScoreParams struct {
	Threshold int

	ShortCandidateLen        int
	ShortCandidatePartialMin int
	ShortCandidatePartialCap int

	StrongOverlapBoost int
	GoodOverlapBoost   int
	HalfOverlapBoost   int
	LowOverlapPenalty  int

	StrongOverlapRatio   float64
	StrongSignificantMin float64
	GoodOverlapRatio     float64
	HalfOverlapRatio     float64
	LowOverlapRatio      float64

	LengthDiffLimit      int
	LengthDiffPenaltyCap int

	FirstTokenWeakSim   int
	FirstTokenPenalty   int
	FirstTokenStrongSim int
	FirstTokenBonus     int

	FirstTokenEqualBoost int
	QueryPrefixBoost     int
	CandidatePrefixBoost int

	AcronymExactBoost     int
	AcronymExactFloor     int
	AcronymPartialBoost   int
	AcronymMissPenalty    int
	AcronymFirstBoost     int
	AcronymFirstPartBoost int

	ExactMatchScore int
}

func DefaultScoreParams() ScoreParams {
	return ScoreParams{
		Threshold: 70,

		ShortCandidateLen:        4,
		ShortCandidatePartialMin: 80,
		ShortCandidatePartialCap: 60,

		StrongOverlapBoost: 40,
		GoodOverlapBoost:   30,
		HalfOverlapBoost:   15,
		LowOverlapPenalty:  25,

		StrongOverlapRatio:   0.8,
		StrongSignificantMin: 0.5,
		GoodOverlapRatio:     0.7,
		HalfOverlapRatio:     0.5,
		LowOverlapRatio:      0.3,

		LengthDiffLimit:      10,
		LengthDiffPenaltyCap: 20,

		FirstTokenWeakSim:   60,
		FirstTokenPenalty:   20,
		FirstTokenStrongSim: 90,
		FirstTokenBonus:     10,

		FirstTokenEqualBoost: 25,
		QueryPrefixBoost:     20,
		CandidatePrefixBoost: 15,

		AcronymExactBoost:     50,
		AcronymExactFloor:     95,
		AcronymPartialBoost:   30,
		AcronymMissPenalty:    15,
		AcronymFirstBoost:     45,
		AcronymFirstPartBoost: 25,

		ExactMatchScore: 100,
	}
}

type Config struct {
	DBPath    string
	InputDir  string
	OutputDir string

	ReferenceCSVPath      string
	ReferenceNameColumn   string
	ReferenceTickerColumn string

	ReferenceURL          string
	ReferenceTimeoutMs    int
	ReferenceRateLimitRPS int

	NormalizeCacheSize int
	ResultCacheSize    int

	LogLevel string
	LogFile  string

	Score ScoreParams
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		InputDir:  getEnv("INPUT_DIR", "input"),
		OutputDir: getEnv("OUTPUT_DIR", "output"),

		ReferenceCSVPath:      getEnv("REFERENCE_CSV", filepath.Join("static", "Stock Tickers.csv")),
		ReferenceNameColumn:   getEnv("REFERENCE_NAME_COL", "Default"),
		ReferenceTickerColumn: getEnv("REFERENCE_TICKER_COL", "Bloom Ticker"),

		ReferenceURL:          getEnv("REFERENCE_URL", ""),
		ReferenceTimeoutMs:    getEnvInt("REFERENCE_TIMEOUT_MS", 30000),
		ReferenceRateLimitRPS: getEnvInt("REFERENCE_RATE_LIMIT_RPS", 5),

		NormalizeCacheSize: getEnvInt("NORMALIZE_CACHE_SIZE", 1000),
		ResultCacheSize:    getEnvInt("MATCH_CACHE_SIZE", 500),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		Score: loadScoreParams(),
	}

	return cfg, nil
}

func loadScoreParams() ScoreParams {
	p := DefaultScoreParams()
	p.Threshold = getEnvInt("MATCH_THRESHOLD", p.Threshold)
	p.StrongOverlapBoost = getEnvInt("MATCH_BOOST_STRONG_OVERLAP", p.StrongOverlapBoost)
	p.GoodOverlapBoost = getEnvInt("MATCH_BOOST_GOOD_OVERLAP", p.GoodOverlapBoost)
	p.HalfOverlapBoost = getEnvInt("MATCH_BOOST_HALF_OVERLAP", p.HalfOverlapBoost)
	p.LowOverlapPenalty = getEnvInt("MATCH_PENALTY_LOW_OVERLAP", p.LowOverlapPenalty)
	p.LengthDiffPenaltyCap = getEnvInt("MATCH_PENALTY_LENGTH_CAP", p.LengthDiffPenaltyCap)
	p.FirstTokenPenalty = getEnvInt("MATCH_PENALTY_FIRST_TOKEN", p.FirstTokenPenalty)
	p.FirstTokenBonus = getEnvInt("MATCH_BOOST_FIRST_TOKEN", p.FirstTokenBonus)
	p.FirstTokenEqualBoost = getEnvInt("MATCH_BOOST_FIRST_EQUAL", p.FirstTokenEqualBoost)
	p.QueryPrefixBoost = getEnvInt("MATCH_BOOST_QUERY_PREFIX", p.QueryPrefixBoost)
	p.CandidatePrefixBoost = getEnvInt("MATCH_BOOST_CANDIDATE_PREFIX", p.CandidatePrefixBoost)
	p.AcronymExactBoost = getEnvInt("MATCH_BOOST_ACRONYM", p.AcronymExactBoost)
	p.AcronymExactFloor = getEnvInt("MATCH_FLOOR_ACRONYM", p.AcronymExactFloor)
	p.AcronymPartialBoost = getEnvInt("MATCH_BOOST_ACRONYM_PARTIAL", p.AcronymPartialBoost)
	p.AcronymMissPenalty = getEnvInt("MATCH_PENALTY_ACRONYM_MISS", p.AcronymMissPenalty)
	p.AcronymFirstBoost = getEnvInt("MATCH_BOOST_ACRONYM_FIRST", p.AcronymFirstBoost)
	p.AcronymFirstPartBoost = getEnvInt("MATCH_BOOST_ACRONYM_FIRST_PARTIAL", p.AcronymFirstPartBoost)
	return p
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
