package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/options-analytics/src/batch"
	"github.com/jiaming2012/options-analytics/src/config"
	"github.com/jiaming2012/options-analytics/src/logger"
	"github.com/jiaming2012/options-analytics/src/telemetry"
	"github.com/jiaming2012/options-analytics/src/utils"
	"github.com/jiaming2012/options-analytics/src/volatility"
)

type RunArgs struct {
	InputPath      string
	OutputPath     string
	SkippedPath    string
	ConfigPath     string
	VolatilityPath string
	Workers        int
}

type RunResult struct {
	Report           *batch.Report
	FilledVolatility int
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/evaluate_greeks/main.go --input contracts.csv --output greeks.csv",
	Short: "Compute greeks and implied volatility for every row of a contract table",
	Run: func(cmd *cobra.Command, args []string) {
		input, err := cmd.Flags().GetString("input")
		if err != nil {
			log.Fatalf("error getting input: %v", err)
		}

		output, err := cmd.Flags().GetString("output")
		if err != nil {
			log.Fatalf("error getting output: %v", err)
		}

		skipped, err := cmd.Flags().GetString("skipped")
		if err != nil {
			log.Fatalf("error getting skipped: %v", err)
		}

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		volatilityPath, err := cmd.Flags().GetString("volatility")
		if err != nil {
			log.Fatalf("error getting volatility: %v", err)
		}

		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			log.Fatalf("error getting workers: %v", err)
		}

		if err := utils.InitEnvironmentVariables(utils.ProjectEnvDir()); err != nil {
			log.Fatalf("error loading environment variables: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		otelShutdown, err := telemetry.Setup(ctx, "evaluate_greeks")
		if err != nil {
			log.Fatalf("failed to setup telemetry: %v", err)
		}

		result, err := Run(ctx, RunArgs{
			InputPath:      input,
			OutputPath:     output,
			SkippedPath:    skipped,
			ConfigPath:     configPath,
			VolatilityPath: volatilityPath,
			Workers:        workers,
		})

		if shutdownErr := otelShutdown(context.Background()); shutdownErr != nil {
			log.Warnf("failed to shutdown telemetry: %v", shutdownErr)
		}

		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		if result.FilledVolatility > 0 {
			fmt.Printf("Filled volatility for %d rows\n", result.FilledVolatility)
		}

		fmt.Print(result.Report.String())
	},
}

func Run(ctx context.Context, args RunArgs) (RunResult, error) {
	if args.InputPath == "" || args.OutputPath == "" {
		return RunResult{}, errors.New("Run: input and output are required")
	}

	cfg, err := config.LoadEngineConfig(args.ConfigPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	if args.Workers > 0 {
		cfg.Workers = args.Workers
	}

	if cfg.RiskFreeRate, err = utils.GetEnvFloat("RISK_FREE_RATE", cfg.RiskFreeRate); err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	solver, err := cfg.NewSolver()
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	rowPtrs, err := utils.ReadCSV[batch.ContractRow](args.InputPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	rows := make([]batch.ContractRow, 0, len(rowPtrs))
	for _, r := range rowPtrs {
		rows = append(rows, *r)
	}

	log.Infof("Loaded %d rows from %s", len(rows), args.InputPath)

	filled := 0
	if args.VolatilityPath != "" {
		file, err := os.Open(args.VolatilityPath)
		if err != nil {
			return RunResult{}, fmt.Errorf("Run: failed to open %s: %w", args.VolatilityPath, err)
		}

		series, err := volatility.LoadDeribitVolIndex(file)
		file.Close()
		if err != nil {
			return RunResult{}, fmt.Errorf("Run: %w", err)
		}

		if rows, filled, err = batch.FillVolatility(rows, series); err != nil {
			return RunResult{}, fmt.Errorf("Run: %w", err)
		}
	}

	report, err := batch.NewEvaluator(solver, cfg.BatchOptions()).Evaluate(ctx, rows)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	if err := utils.WriteCSV(args.OutputPath, report.Records()); err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	if args.SkippedPath != "" {
		if err := utils.WriteCSV(args.SkippedPath, report.SkipRecords()); err != nil {
			return RunResult{}, fmt.Errorf("Run: %w", err)
		}
	}

	return RunResult{
		Report:           report,
		FilledVolatility: filled,
	}, nil
}

func main() {
	logger.SetupFromEnv()

	runCmd.PersistentFlags().String("input", "", "Contract table CSV.")
	runCmd.PersistentFlags().String("output", "", "Where to write the greeks CSV.")
	runCmd.PersistentFlags().String("skipped", "", "Where to write skipped rows, if set.")
	runCmd.PersistentFlags().String("config", "", "Engine config YAML. Defaults are used when empty.")
	runCmd.PersistentFlags().String("volatility", "", "Deribit volatility index JSON used to fill rows without volatility.")
	runCmd.PersistentFlags().Int("workers", 0, "Worker count. Overrides the config when positive.")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
