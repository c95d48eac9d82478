package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/options-analytics/src/batch"
	"github.com/jiaming2012/options-analytics/src/pricing"
)

var UnknownSolverErr = fmt.Errorf("unknown solver method")

type SolverConfigYAML struct {
	Method           string   `yaml:"method"`
	Lower            *float64 `yaml:"lower"`
	Upper            *float64 `yaml:"upper"`
	Precision        *float64 `yaml:"precision"`
	PutMaxIterations *int     `yaml:"put_max_iterations"`
	MaxIterations    *int     `yaml:"max_iterations"`
	UpperMargin      *float64 `yaml:"upper_margin"`
	Initial          *float64 `yaml:"initial"`
	Tolerance        *float64 `yaml:"tolerance"`
}

type VolatilityConfigYAML struct {
	Window         time.Duration `yaml:"window"`
	PeriodsPerYear float64       `yaml:"periods_per_year"`
}

type EngineConfig struct {
	RiskFreeRate        float64              `yaml:"risk_free_rate"`
	DividendRate        float64              `yaml:"dividend_rate"`
	Workers             int                  `yaml:"workers"`
	PremiumInUnderlying bool                 `yaml:"premium_in_underlying"`
	Solver              SolverConfigYAML     `yaml:"solver"`
	Volatility          VolatilityConfigYAML `yaml:"volatility"`
}

func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Workers: runtime.NumCPU(),
		Solver: SolverConfigYAML{
			Method: "bisection",
		},
		Volatility: VolatilityConfigYAML{
			Window:         30 * 24 * time.Hour,
			PeriodsPerYear: 8760,
		},
	}
}

// LoadEngineConfig reads a YAML file over the defaults. An empty path
// returns the defaults.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	if path == "" {
		return DefaultEngineConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadEngineConfig: failed to read %s: %w", path, err)
	}

	cfg, err := ParseEngineConfig(data)
	if err != nil {
		return nil, fmt.Errorf("LoadEngineConfig: %s: %w", path, err)
	}

	return cfg, nil
}

func ParseEngineConfig(data []byte) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal engine config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *EngineConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("EngineConfig.Validate: workers must be at least 1, found %d", c.Workers)
	}

	if c.Volatility.Window <= 0 {
		return fmt.Errorf("EngineConfig.Validate: volatility window must be positive, found %s", c.Volatility.Window)
	}

	if !(c.Volatility.PeriodsPerYear > 0) {
		return fmt.Errorf("EngineConfig.Validate: periods_per_year must be positive, found %v", c.Volatility.PeriodsPerYear)
	}

	if _, err := c.NewSolver(); err != nil {
		return fmt.Errorf("EngineConfig.Validate: %w", err)
	}

	return nil
}

func (c *EngineConfig) NewSolver() (pricing.VolatilitySolver, error) {
	s := c.Solver
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}

	switch strings.ToLower(strings.TrimSpace(s.Method)) {
	case "", "bisection":
		b := pricing.DefaultBisectionSolver()
		setFloat(&b.Lower, s.Lower)
		setFloat(&b.Upper, s.Upper)
		setFloat(&b.Precision, s.Precision)
		setInt(&b.PutMaxIterations, s.PutMaxIterations)
		setInt(&b.MaxIterations, s.MaxIterations)
		setFloat(&b.UpperMargin, s.UpperMargin)

		if !(b.Lower > 0) || !(b.Upper > b.Lower) {
			return nil, fmt.Errorf("invalid bisection bracket [%v, %v]", b.Lower, b.Upper)
		}

		return b, nil
	case "newton":
		n := pricing.DefaultNewtonSolver()
		setFloat(&n.Initial, s.Initial)
		setInt(&n.MaxIterations, s.MaxIterations)
		setFloat(&n.Tolerance, s.Tolerance)
		setFloat(&n.Lower, s.Lower)
		setFloat(&n.Upper, s.Upper)

		if !(n.Lower > 0) || !(n.Upper > n.Lower) {
			return nil, fmt.Errorf("invalid newton bounds [%v, %v]", n.Lower, n.Upper)
		}

		return n, nil
	default:
		return nil, fmt.Errorf("%q: %w", s.Method, UnknownSolverErr)
	}
}

func (c *EngineConfig) BatchOptions() batch.Options {
	return batch.Options{
		RiskFreeRate:        c.RiskFreeRate,
		DividendRate:        c.DividendRate,
		Workers:             c.Workers,
		PremiumInUnderlying: c.PremiumInUnderlying,
	}
}
