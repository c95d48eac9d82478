package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/options-analytics/src/config"
	"github.com/jiaming2012/options-analytics/src/deribit"
	"github.com/jiaming2012/options-analytics/src/logger"
	"github.com/jiaming2012/options-analytics/src/utils"
)

type RunArgs struct {
	InputPath  string
	ConfigPath string
	AsOf       time.Time
	Rate       float64
	CallsOnly  bool
}

type RunResult struct {
	Report *deribit.BenchReport
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/bench_greeks/main.go --input ticker_snapshot.json --as-of 2022-05-27T08:00:00Z",
	Short: "Compare engine greeks and implied volatility with a Deribit ticker snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		input, err := cmd.Flags().GetString("input")
		if err != nil {
			log.Fatalf("error getting input: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		asOfStr, err := cmd.Flags().GetString("as-of")
		if err != nil {
			log.Fatalf("error getting as-of: %v", err)
		}

		asOf := time.Now().UTC()
		if asOfStr != "" {
			if asOf, err = time.Parse(time.RFC3339, asOfStr); err != nil {
				log.Fatalf("error parsing as-of: %v", err)
			}
		}

		rate, err := cmd.Flags().GetFloat64("rate")
		if err != nil {
			log.Fatalf("error getting rate: %v", err)
		}

		callsOnly, err := cmd.Flags().GetBool("calls-only")
		if err != nil {
			log.Fatalf("error getting calls-only: %v", err)
		}

		if err := utils.InitEnvironmentVariables(utils.ProjectEnvDir()); err != nil {
			log.Fatalf("error loading environment variables: %v", err)
		}

		result, err := Run(RunArgs{
			InputPath:  input,
			ConfigPath: configPath,
			AsOf:       asOf,
			Rate:       rate,
			CallsOnly:  callsOnly,
		})

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		fmt.Print(result.Report.String())
	},
}

func Run(args RunArgs) (RunResult, error) {
	cfg, err := config.LoadEngineConfig(args.ConfigPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	solver, err := cfg.NewSolver()
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	file, err := os.Open(args.InputPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: failed to open %s: %w", args.InputPath, err)
	}
	defer file.Close()

	snapshot, err := deribit.LoadSnapshot(file)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	report, err := deribit.Bench(snapshot, deribit.BenchOptions{
		AsOf:         args.AsOf,
		RiskFreeRate: args.Rate,
		Solver:       solver,
		CallsOnly:    args.CallsOnly,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	return RunResult{Report: report}, nil
}

func main() {
	logger.SetupFromEnv()

	runCmd.PersistentFlags().String("input", "", "Ticker snapshot JSON keyed by instrument name.")
	runCmd.PersistentFlags().String("config", "", "Engine config YAML for the solver.")
	runCmd.PersistentFlags().String("as-of", "", "Snapshot time in RFC3339. Defaults to now.")
	runCmd.PersistentFlags().Float64("rate", 0, "Continuously compounded risk-free rate.")
	runCmd.PersistentFlags().Bool("calls-only", false, "Only benchmark calls.")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
