package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is empty because every variable carries the PULSE_ prefix in
// its envconfig tag; keeping the tags explicit makes grepping for a
// variable name trivial.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "PULSE_APP_ENV"
)

type Config struct {
	App       AppConfig
	Cleaning  CleaningConfig
	Simulator SimulatorConfig
	Dataset   DatasetConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Cleaning.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Simulator.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PULSE_APP_ENV" default:"development"`
	Port         string `envconfig:"PULSE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PULSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CleaningConfig carries the repair-policy constants. They are explicit
// configuration rather than package globals so tests can run the pipeline
// with different thresholds.
type CleaningConfig struct {
	// EpochYear is the earliest plausible order year; older timestamps are
	// treated as corrupted and their rows dropped.
	EpochYear int `envconfig:"PULSE_CLEAN_EPOCH_YEAR" default:"2020"`
	// UnitCostRatio is the fraction of selling price used when unit cost is
	// missing or exceeds price.
	UnitCostRatio float64 `envconfig:"PULSE_CLEAN_UNIT_COST_RATIO" default:"0.6"`
	// UnitCostFloor is the constant fallback when neither price nor a
	// column median is available.
	UnitCostFloor float64 `envconfig:"PULSE_CLEAN_UNIT_COST_FLOOR" default:"1"`
	// ReorderPointDefault fills a missing reorder_point.
	ReorderPointDefault int `envconfig:"PULSE_CLEAN_REORDER_POINT_DEFAULT" default:"10"`
	// LeadTimeDaysDefault fills a missing lead_time_days.
	LeadTimeDaysDefault int `envconfig:"PULSE_CLEAN_LEAD_TIME_DAYS_DEFAULT" default:"3"`
	// ExtremeMultiplier scales the 95th percentile to the bound beyond
	// which a numeric value is considered corrupted and capped.
	ExtremeMultiplier float64 `envconfig:"PULSE_CLEAN_EXTREME_MULTIPLIER" default:"4"`
	// CapMultiplier scales the 95th percentile to the value extreme
	// outliers are capped at. Must stay below ExtremeMultiplier.
	CapMultiplier float64 `envconfig:"PULSE_CLEAN_CAP_MULTIPLIER" default:"2.5"`
	// FuzzyThreshold is the similarity ratio above which a free-text enum
	// value is snapped to its closest canonical spelling.
	FuzzyThreshold float64 `envconfig:"PULSE_CLEAN_FUZZY_THRESHOLD" default:"0.85"`
}

func (c CleaningConfig) validate() error {
	if c.CapMultiplier <= 0 || c.ExtremeMultiplier <= c.CapMultiplier {
		return fmt.Errorf("cleaning config: extreme multiplier %v must exceed cap multiplier %v", c.ExtremeMultiplier, c.CapMultiplier)
	}
	if c.UnitCostRatio <= 0 || c.UnitCostRatio >= 1 {
		return fmt.Errorf("cleaning config: unit cost ratio %v must be in (0,1)", c.UnitCostRatio)
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("cleaning config: fuzzy threshold %v must be in [0,1]", c.FuzzyThreshold)
	}
	return nil
}

// SimulatorConfig carries the campaign model constants.
type SimulatorConfig struct {
	// DefaultElasticity applies when no single category is targeted or the
	// category has no entry in the elasticity table.
	DefaultElasticity float64 `envconfig:"PULSE_SIM_DEFAULT_ELASTICITY" default:"1.5"`
	// FulfillmentCostPerUnit is the flat AED handling cost per shipped unit.
	FulfillmentCostPerUnit float64 `envconfig:"PULSE_SIM_FULFILLMENT_COST_PER_UNIT" default:"2"`
	// PromoCostRevenueCap caps promo spend at this fraction of expected
	// revenue regardless of budget.
	PromoCostRevenueCap float64 `envconfig:"PULSE_SIM_PROMO_COST_REVENUE_CAP" default:"0.1"`
	// HighDiscountThreshold is the discount percentage above which the
	// brand-erosion warning fires.
	HighDiscountThreshold float64 `envconfig:"PULSE_SIM_HIGH_DISCOUNT_THRESHOLD" default:"30"`
}

func (s SimulatorConfig) validate() error {
	if s.PromoCostRevenueCap < 0 || s.PromoCostRevenueCap > 1 {
		return fmt.Errorf("simulator config: promo cost revenue cap %v must be in [0,1]", s.PromoCostRevenueCap)
	}
	if s.DefaultElasticity <= 0 {
		return fmt.Errorf("simulator config: default elasticity %v must be positive", s.DefaultElasticity)
	}
	return nil
}

// DatasetConfig governs ingestion limits and the demo fixture generator.
type DatasetConfig struct {
	MaxUploadBytes int64  `envconfig:"PULSE_DATASET_MAX_UPLOAD_BYTES" default:"26214400"`
	SampleSeed     uint64 `envconfig:"PULSE_DATASET_SAMPLE_SEED" default:"11"`
	SampleOrders   int    `envconfig:"PULSE_DATASET_SAMPLE_ORDERS" default:"600"`
}
