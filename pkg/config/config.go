package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for schemascan.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables always override YAML values.
//
// Every heuristic threshold of the inference engine lives here. The numeric
// defaults are tuned by example, not derived from a formal model - treat
// them as configuration, not fixed law.
type Config struct {
	// LogLevel is the zap log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// Workers bounds the per-dataset worker pool for the profiling and
	// key-detection stages. 1 disables parallelism.
	Workers int `yaml:"workers" env:"WORKERS" env-default:"4"`

	Cleaning      CleaningConfig     `yaml:"cleaning"`
	Profile       ProfileConfig      `yaml:"profile"`
	Keys          KeyConfig          `yaml:"keys"`
	Roles         RoleConfig         `yaml:"roles"`
	Relationships RelationshipConfig `yaml:"relationships"`
}

// CleaningConfig holds normalization thresholds.
type CleaningConfig struct {
	// DateTagThreshold is the minimum fraction of non-missing values that
	// must parse as dates for a text column to be tagged date-candidate.
	DateTagThreshold float64 `yaml:"date_tag_threshold" env:"CLEAN_DATE_TAG_THRESHOLD" env-default:"0.9"`
}

// ProfileConfig holds semantic-type decision thresholds.
type ProfileConfig struct {
	// IdentifierDistinctRatio is the minimum distinct ratio for a text
	// column to be considered identifier-like.
	IdentifierDistinctRatio float64 `yaml:"identifier_distinct_ratio" env:"PROFILE_IDENTIFIER_DISTINCT_RATIO" env-default:"0.95"`
	// IdentifierMaxAvgLength is the maximum average text length for the
	// identifier-like rule (36 admits UUIDs).
	IdentifierMaxAvgLength float64 `yaml:"identifier_max_avg_length" env:"PROFILE_IDENTIFIER_MAX_AVG_LENGTH" env-default:"36"`
	// SampleSize bounds the number of sample values kept per column.
	SampleSize int `yaml:"sample_size" env:"PROFILE_SAMPLE_SIZE" env-default:"5"`
}

// KeyConfig holds key-candidate detection thresholds.
type KeyConfig struct {
	// MissingRatioCeiling excludes columns with more missingness than this
	// from key candidacy outright - a key field should not be null.
	MissingRatioCeiling float64 `yaml:"missing_ratio_ceiling" env:"KEYS_MISSING_RATIO_CEILING" env-default:"0.05"`
	// ConfidenceThreshold is the uniqueness level at which a single column
	// counts as a confident key and pair search is skipped.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" env:"KEYS_CONFIDENCE_THRESHOLD" env-default:"0.98"`
	// MinConfidence is the floor below which a column is not reported as a
	// candidate at all.
	MinConfidence float64 `yaml:"min_confidence" env:"KEYS_MIN_CONFIDENCE" env-default:"0.9"`
	// MissingPenaltyWeight scales the missing-ratio penalty subtracted
	// from the uniqueness ratio.
	MissingPenaltyWeight float64 `yaml:"missing_penalty_weight" env:"KEYS_MISSING_PENALTY_WEIGHT" env-default:"1.0"`
	// MaxPairCombinations bounds the composite-key pair search.
	MaxPairCombinations int `yaml:"max_pair_combinations" env:"KEYS_MAX_PAIR_COMBINATIONS" env-default:"10"`
}

// RoleConfig holds table-role classification thresholds.
type RoleConfig struct {
	// ReferenceRowFloor is the row count below which an unkeyed dataset is
	// classified as reference.
	ReferenceRowFloor int `yaml:"reference_row_floor" env:"ROLES_REFERENCE_ROW_FLOOR" env-default:"10"`
	// FactNumericRatio is the numeric-column ratio above which a large
	// dataset is classified as fact.
	FactNumericRatio float64 `yaml:"fact_numeric_ratio" env:"ROLES_FACT_NUMERIC_RATIO" env-default:"0.5"`
	// FactRowFloor is the minimum row count for the fact rule.
	FactRowFloor int `yaml:"fact_row_floor" env:"ROLES_FACT_ROW_FLOOR" env-default:"100"`
}

// RelationshipConfig holds cross-dataset matching thresholds.
type RelationshipConfig struct {
	// MinMatchStrength is the emission threshold for candidates.
	MinMatchStrength float64 `yaml:"min_match_strength" env:"RELS_MIN_MATCH_STRENGTH" env-default:"0.3"`
	// NameWeight and OverlapWeight combine name similarity and value
	// overlap into match strength. NameWeight must stay below
	// MinMatchStrength so a name-only match (disjoint values) never
	// clears the emission threshold.
	NameWeight    float64 `yaml:"name_weight" env:"RELS_NAME_WEIGHT" env-default:"0.25"`
	OverlapWeight float64 `yaml:"overlap_weight" env:"RELS_OVERLAP_WEIGHT" env-default:"0.75"`
	// TextCardinalityRatioMax gates text-text comparisons: the larger
	// distinct count may exceed the smaller by at most this factor.
	TextCardinalityRatioMax float64 `yaml:"text_cardinality_ratio_max" env:"RELS_TEXT_CARDINALITY_RATIO_MAX" env-default:"3.0"`
}

// Load reads configuration from the given YAML file with environment
// variable overrides. A missing file is not an error; defaults and
// environment variables apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			return cfg, cfg.validate()
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Relationships.NameWeight+c.Relationships.OverlapWeight <= 0 {
		return fmt.Errorf("relationship weights must sum to a positive value")
	}
	if c.Relationships.NameWeight >= c.Relationships.MinMatchStrength {
		return fmt.Errorf("name_weight (%v) must be below min_match_strength (%v)",
			c.Relationships.NameWeight, c.Relationships.MinMatchStrength)
	}
	return nil
}

// Default returns a Config populated from environment defaults only.
// Intended for tests and library callers that do not use a config file.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// Defaults are compiled in; a failure here is a programming error.
		panic(err)
	}
	return cfg
}
