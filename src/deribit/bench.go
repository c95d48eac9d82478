package deribit

import (
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/options-analytics/src/batch"
	"github.com/jiaming2012/options-analytics/src/pricing"
)

type BenchOptions struct {
	AsOf         time.Time
	RiskFreeRate float64
	Solver       pricing.VolatilitySolver
	CallsOnly    bool
}

type BenchRow struct {
	Instrument string
	Engine     pricing.Metrics
	Exchange   GreeksDTO
	ExchangeIV float64
}

type BenchSkip struct {
	Instrument string
	Reason     error
}

type FieldCorrelation struct {
	Field string
	Value float64
}

type BenchReport struct {
	AsOf         time.Time
	Rows         []BenchRow
	Skipped      []BenchSkip
	Correlations []FieldCorrelation
}

// Bench reprices every ticker at the exchange mark volatility and inverts the
// exchange premium, so the engine's greeks and implied volatility can be
// compared field by field with what the exchange reports.
func Bench(snapshot Snapshot, opts BenchOptions) (*BenchReport, error) {
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("Bench: empty snapshot")
	}

	solver := opts.Solver
	if solver == nil {
		solver = pricing.DefaultBisectionSolver()
	}

	report := &BenchReport{AsOf: opts.AsOf}
	for _, ticker := range snapshot {
		inst, err := ParseInstrument(ticker.InstrumentName)
		if err != nil {
			report.Skipped = append(report.Skipped, BenchSkip{Instrument: ticker.InstrumentName, Reason: err})
			continue
		}

		if opts.CallsOnly && inst.Type != pricing.Call {
			continue
		}

		expiry, err := batch.YearsToExpiry(opts.AsOf, inst.Expiry)
		if err != nil {
			report.Skipped = append(report.Skipped, BenchSkip{Instrument: ticker.InstrumentName, Reason: err})
			continue
		}

		q := pricing.Quote{
			Underlying:  ticker.UnderlyingPrice,
			Strike:      inst.Strike,
			Rate:        opts.RiskFreeRate,
			Expiry:      expiry,
			Volatility:  ticker.MarkIV / 100,
			MarketPrice: ticker.PremiumUSD(),
			Type:        inst.Type,
		}

		metrics, err := pricing.ComputeMetrics(q, solver)
		if err != nil {
			report.Skipped = append(report.Skipped, BenchSkip{Instrument: ticker.InstrumentName, Reason: err})
			continue
		}

		report.Rows = append(report.Rows, BenchRow{
			Instrument: ticker.InstrumentName,
			Engine:     metrics,
			Exchange:   ticker.Greeks,
			ExchangeIV: ticker.MarkIV / 100,
		})
	}

	for _, s := range report.Skipped {
		log.WithFields(log.Fields{
			"instrument": s.Instrument,
			"reason":     s.Reason,
		}).Warn("skipping ticker")
	}

	report.Correlations = report.correlate()

	return report, nil
}

func (r *BenchReport) correlate() []FieldCorrelation {
	if len(r.Rows) < 2 {
		return nil
	}

	fields := []struct {
		name     string
		engine   func(BenchRow) float64
		exchange func(BenchRow) float64
	}{
		{"delta", func(b BenchRow) float64 { return b.Engine.Delta }, func(b BenchRow) float64 { return b.Exchange.Delta }},
		{"gamma", func(b BenchRow) float64 { return b.Engine.Gamma }, func(b BenchRow) float64 { return b.Exchange.Gamma }},
		{"vega", func(b BenchRow) float64 { return b.Engine.Vega }, func(b BenchRow) float64 { return b.Exchange.Vega }},
		{"theta", func(b BenchRow) float64 { return b.Engine.Theta }, func(b BenchRow) float64 { return b.Exchange.Theta }},
		{"rho", func(b BenchRow) float64 { return b.Engine.Rho }, func(b BenchRow) float64 { return b.Exchange.Rho }},
		{"iv", func(b BenchRow) float64 { return b.Engine.ImpliedVol }, func(b BenchRow) float64 { return b.ExchangeIV }},
	}

	var out []FieldCorrelation
	for _, f := range fields {
		engine := make([]float64, len(r.Rows))
		exchange := make([]float64, len(r.Rows))
		for i, row := range r.Rows {
			engine[i] = f.engine(row)
			exchange[i] = f.exchange(row)
		}

		c, err := stats.Correlation(engine, exchange)
		if err != nil {
			log.Warnf("BenchReport.correlate: %s: %v", f.name, err)
			continue
		}

		out = append(out, FieldCorrelation{Field: f.name, Value: c})
	}

	return out
}

func (r *BenchReport) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	display.WriteString(fmt.Sprintf("Greeks as of %s (engine / exchange):\n", r.AsOf.Format(time.RFC3339)))

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"instrument", "value", "delta", "gamma", "vega", "theta", "rho", "iv"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	pair := func(format string, engine, exchange float64) string {
		return fmt.Sprintf("%s / %s", p.Sprintf(format, engine), p.Sprintf(format, exchange))
	}

	for _, row := range r.Rows {
		table.Append([]string{
			row.Instrument,
			fmt.Sprintf("$%s", p.Sprintf("%.2f", row.Engine.FairValue)),
			pair("%.4f", row.Engine.Delta, row.Exchange.Delta),
			pair("%.6f", row.Engine.Gamma, row.Exchange.Gamma),
			pair("%.4f", row.Engine.Vega, row.Exchange.Vega),
			pair("%.4f", row.Engine.Theta, row.Exchange.Theta),
			pair("%.4f", row.Engine.Rho, row.Exchange.Rho),
			pair("%.4f", row.Engine.ImpliedVol, row.ExchangeIV),
		})
	}

	table.Render()

	if len(r.Correlations) > 0 {
		display.WriteString("Correlation:\n")
		corr := tablewriter.NewWriter(display)
		corr.SetColumnSeparator("")
		for _, c := range r.Correlations {
			corr.Append([]string{c.Field, p.Sprintf("%.4f", c.Value)})
		}
		corr.Render()
	}

	if len(r.Skipped) > 0 {
		display.WriteString(fmt.Sprintf("Skipped %d tickers\n", len(r.Skipped)))
	}

	return display.String()
}
