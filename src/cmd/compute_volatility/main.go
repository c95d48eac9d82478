package main

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/options-analytics/src/coingecko"
	"github.com/jiaming2012/options-analytics/src/config"
	"github.com/jiaming2012/options-analytics/src/logger"
	"github.com/jiaming2012/options-analytics/src/models"
	"github.com/jiaming2012/options-analytics/src/utils"
	"github.com/jiaming2012/options-analytics/src/volatility"
)

type Source string

const (
	PolygonSource   Source = "polygon"
	CoingeckoSource Source = "coingecko"
)

type RunArgs struct {
	InputPath      string
	Source         Source
	OutputPath     string
	Window         time.Duration
	PeriodsPerYear float64
	DVOLPath       string
}

type RunResult struct {
	Series volatility.Series
	// Correlation with the volatility index, when one was given.
	Correlation *float64
	Pairs       int
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/compute_volatility/main.go --input aggs.json --window 720h --periods-per-year 8760 --output vol.csv",
	Short: "Compute a realized volatility series from underlying price history",
	Run: func(cmd *cobra.Command, args []string) {
		input, err := cmd.Flags().GetString("input")
		if err != nil {
			log.Fatalf("error getting input: %v", err)
		}

		source, err := cmd.Flags().GetString("source")
		if err != nil {
			log.Fatalf("error getting source: %v", err)
		}

		output, err := cmd.Flags().GetString("output")
		if err != nil {
			log.Fatalf("error getting output: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		cfg, err := config.LoadEngineConfig(configPath)
		if err != nil {
			log.Fatalf("error loading config: %v", err)
		}

		window := cfg.Volatility.Window
		if cmd.Flags().Changed("window") {
			if window, err = cmd.Flags().GetDuration("window"); err != nil {
				log.Fatalf("error getting window: %v", err)
			}
		}

		periodsPerYear := cfg.Volatility.PeriodsPerYear
		if cmd.Flags().Changed("periods-per-year") {
			if periodsPerYear, err = cmd.Flags().GetFloat64("periods-per-year"); err != nil {
				log.Fatalf("error getting periods-per-year: %v", err)
			}
		}

		dvol, err := cmd.Flags().GetString("dvol")
		if err != nil {
			log.Fatalf("error getting dvol: %v", err)
		}

		result, err := Run(RunArgs{
			InputPath:      input,
			Source:         Source(source),
			OutputPath:     output,
			Window:         window,
			PeriodsPerYear: periodsPerYear,
			DVOLPath:       dvol,
		})

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		fmt.Printf("Computed %d realized volatility points\n", len(result.Series))
		if result.Correlation != nil {
			fmt.Printf("Correlation with volatility index: %.4f over %d points\n", *result.Correlation, result.Pairs)
		}
	},
}

func loadCandles(source Source, r io.Reader) (models.Candles, error) {
	switch source {
	case PolygonSource, "":
		return volatility.LoadPolygonAggregates(r)
	case CoingeckoSource:
		return coingecko.LoadMarketChart(r)
	default:
		return nil, fmt.Errorf("loadCandles: unknown source %q", source)
	}
}

func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return load(file)
}

func Run(args RunArgs) (RunResult, error) {
	if !(args.Window > 0) || !(args.PeriodsPerYear > 0) {
		return RunResult{}, fmt.Errorf("Run: window (%s) and periods per year (%v) must be positive", args.Window, args.PeriodsPerYear)
	}

	candles, err := loadFile(args.InputPath, func(r io.Reader) (models.Candles, error) {
		return loadCandles(args.Source, r)
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	series, err := volatility.FromCandles(candles, args.Window, args.PeriodsPerYear)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	if args.OutputPath != "" {
		if err := utils.WriteCSV(args.OutputPath, series.Records()); err != nil {
			return RunResult{}, fmt.Errorf("Run: %w", err)
		}
	}

	result := RunResult{Series: series}

	if args.DVOLPath != "" {
		index, err := loadFile(args.DVOLPath, volatility.LoadDeribitVolIndex)
		if err != nil {
			return RunResult{}, fmt.Errorf("Run: %w", err)
		}

		c, n, err := series.Correlate(index)
		if err != nil {
			return RunResult{}, fmt.Errorf("Run: %w", err)
		}

		result.Correlation = &c
		result.Pairs = n
	}

	return result, nil
}

func main() {
	logger.SetupFromEnv()

	runCmd.PersistentFlags().String("input", "", "Underlying price history JSON.")
	runCmd.PersistentFlags().String("source", string(PolygonSource), "Input format: polygon or coingecko.")
	runCmd.PersistentFlags().String("output", "", "Where to write the volatility CSV.")
	runCmd.PersistentFlags().String("config", "", "Engine config YAML for window defaults.")
	runCmd.PersistentFlags().Duration("window", 30*24*time.Hour, "Trailing window for the log returns.")
	runCmd.PersistentFlags().Float64("periods-per-year", 8760, "Sampling periods per year, e.g. 8760 for hourly.")
	runCmd.PersistentFlags().String("dvol", "", "Deribit volatility index JSON to correlate against.")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
