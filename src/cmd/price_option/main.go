package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/options-analytics/src/config"
	"github.com/jiaming2012/options-analytics/src/logger"
	"github.com/jiaming2012/options-analytics/src/pricing"
)

const daysPerYear = 365.0

type RunArgs struct {
	Spot       float64
	Strike     float64
	Rate       float64
	Dividend   float64
	Days       float64
	Volatility float64
	Price      float64
	IsPut      bool
	Method     string
}

type RunResult struct {
	Quote   pricing.Quote
	Metrics pricing.Metrics
}

func (r RunResult) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	display.WriteString(fmt.Sprintf("%s strike=%s spot=%s T=%.6f\n",
		r.Quote.Type, p.Sprintf("%.2f", r.Quote.Strike), p.Sprintf("%.2f", r.Quote.Underlying), r.Quote.Expiry))

	table := tablewriter.NewWriter(display)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetColumnSeparator("")

	iv := p.Sprintf("%.6f", r.Metrics.ImpliedVol)
	if !r.Metrics.IVConverged {
		iv += " (not converged)"
	}

	table.AppendBulk([][]string{
		{"fair value", fmt.Sprintf("$%s", p.Sprintf("%.4f", r.Metrics.FairValue))},
		{"delta", p.Sprintf("%.6f", r.Metrics.Delta)},
		{"gamma", p.Sprintf("%.8f", r.Metrics.Gamma)},
		{"vega", p.Sprintf("%.6f", r.Metrics.Vega)},
		{"theta", p.Sprintf("%.6f", r.Metrics.Theta)},
		{"rho", p.Sprintf("%.6f", r.Metrics.Rho)},
		{"implied vol", iv},
		{"iterations", fmt.Sprintf("%d", r.Metrics.IVIterations)},
	})

	table.Render()
	return display.String()
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/price_option/main.go --spot 20210 --strike 17000 --rate 0.04 --days 36 --vol 0.9835 --price 1018.2 --put",
	Short: "Price one contract and invert its market price",
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		var runArgs RunArgs
		var err error

		for name, dst := range map[string]*float64{
			"spot":     &runArgs.Spot,
			"strike":   &runArgs.Strike,
			"rate":     &runArgs.Rate,
			"dividend": &runArgs.Dividend,
			"days":     &runArgs.Days,
			"vol":      &runArgs.Volatility,
			"price":    &runArgs.Price,
		} {
			if *dst, err = flags.GetFloat64(name); err != nil {
				log.Fatalf("error getting %s: %v", name, err)
			}
		}

		if runArgs.IsPut, err = flags.GetBool("put"); err != nil {
			log.Fatalf("error getting put: %v", err)
		}

		if runArgs.Method, err = flags.GetString("method"); err != nil {
			log.Fatalf("error getting method: %v", err)
		}

		result, err := Run(runArgs)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		fmt.Print(result.String())
	},
}

func Run(args RunArgs) (RunResult, error) {
	cfg := config.DefaultEngineConfig()
	cfg.Solver.Method = args.Method

	solver, err := cfg.NewSolver()
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	optionType := pricing.Call
	if args.IsPut {
		optionType = pricing.Put
	}

	q := pricing.Quote{
		Underlying:  args.Spot,
		Strike:      args.Strike,
		Rate:        args.Rate,
		Dividend:    args.Dividend,
		Expiry:      args.Days / daysPerYear,
		Volatility:  args.Volatility,
		MarketPrice: args.Price,
		Type:        optionType,
	}

	metrics, err := pricing.ComputeMetrics(q, solver)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	return RunResult{Quote: q, Metrics: metrics}, nil
}

func main() {
	logger.SetupFromEnv()

	runCmd.PersistentFlags().Float64("spot", 0, "Underlying price.")
	runCmd.PersistentFlags().Float64("strike", 0, "Strike price.")
	runCmd.PersistentFlags().Float64("rate", 0, "Continuously compounded risk-free rate.")
	runCmd.PersistentFlags().Float64("dividend", 0, "Continuous dividend yield.")
	runCmd.PersistentFlags().Float64("days", 0, "Days to expiry.")
	runCmd.PersistentFlags().Float64("vol", 0, "Annualized volatility used for the greeks.")
	runCmd.PersistentFlags().Float64("price", 0, "Market price to invert.")
	runCmd.PersistentFlags().Bool("put", false, "Price a put instead of a call.")
	runCmd.PersistentFlags().String("method", "bisection", "Implied volatility solver: bisection or newton.")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
