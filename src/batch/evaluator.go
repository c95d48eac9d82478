package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/jiaming2012/options-analytics/src/pricing"
)

const instrumentationName = "github.com/jiaming2012/options-analytics/src/batch"

type Options struct {
	RiskFreeRate float64
	DividendRate float64
	Workers      int
	// PremiumInUnderlying marks c_close as quoted in units of the underlying,
	// as Deribit does. It is multiplied by u_close before inversion.
	PremiumInUnderlying bool
}

func DefaultOptions() Options {
	return Options{Workers: 1}
}

type Evaluator struct {
	Solver  pricing.VolatilitySolver
	Options Options
}

func NewEvaluator(solver pricing.VolatilitySolver, opts Options) *Evaluator {
	return &Evaluator{
		Solver:  solver,
		Options: opts,
	}
}

type outcome struct {
	result *Result
	skip   *Skip
}

type instruments struct {
	priced        metric.Int64Counter
	skipped       metric.Int64Counter
	lowConfidence metric.Int64Counter
}

func newInstruments() (*instruments, error) {
	meter := otel.Meter(instrumentationName)

	priced, err := meter.Int64Counter("options.rows.priced", metric.WithDescription("rows with greeks and implied volatility"))
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter("options.rows.skipped", metric.WithDescription("rows skipped, by reason"))
	if err != nil {
		return nil, err
	}

	lowConfidence, err := meter.Int64Counter("options.rows.low_confidence", metric.WithDescription("rows whose implied volatility did not converge"))
	if err != nil {
		return nil, err
	}

	return &instruments{
		priced:        priced,
		skipped:       skipped,
		lowConfidence: lowConfidence,
	}, nil
}

// Evaluate prices every row and returns the results in row order. Bad rows
// are skipped and reported; only a cancelled context fails the batch.
func (e *Evaluator) Evaluate(ctx context.Context, rows []ContractRow) (*Report, error) {
	runID := uuid.New()

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "batch.Evaluate")
	defer span.End()

	span.SetAttributes(
		attribute.String("run_id", runID.String()),
		attribute.Int("rows", len(rows)),
	)

	solver := e.Solver
	if solver == nil {
		solver = pricing.DefaultBisectionSolver()
	}

	workers := e.Options.Workers
	if workers < 1 {
		workers = 1
	}

	if workers > len(rows) && len(rows) > 0 {
		workers = len(rows)
	}

	outcomes := make([]outcome, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(rows); i += workers {
				if err := gctx.Err(); err != nil {
					return err
				}

				outcomes[i] = e.evaluateRow(i, rows[i], solver)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch cancelled")
		return nil, fmt.Errorf("Evaluator.Evaluate: run %s: %w", runID, err)
	}

	report := &Report{RunID: runID}
	for _, o := range outcomes {
		if o.skip != nil {
			report.addSkip(*o.skip)
			continue
		}

		report.addResult(*o.result)
	}

	for _, s := range report.Skipped {
		log.WithFields(log.Fields{
			"run":      runID,
			"row":      s.Index,
			"contract": s.ContractID,
			"t":        s.Timestamp,
			"reason":   s.Reason,
		}).Warn("skipping row")
	}

	if inst, err := newInstruments(); err != nil {
		log.Warnf("Evaluator.Evaluate: failed to create instruments: %v", err)
	} else {
		report.record(ctx, inst)
	}

	span.SetAttributes(
		attribute.Int("results", len(report.Results)),
		attribute.Int("skipped", len(report.Skipped)),
		attribute.Int("low_confidence", report.LowConfidence),
	)
	span.SetStatus(codes.Ok, "batch evaluated")

	log.WithFields(log.Fields{
		"run":               runID,
		"rows":              len(rows),
		"results":           len(report.Results),
		"domain_errors":     report.DomainErrors,
		"numeric_anomalies": report.NumericAnomalies,
		"low_confidence":    report.LowConfidence,
	}).Info("batch evaluated")

	return report, nil
}

func (e *Evaluator) evaluateRow(i int, row ContractRow, solver pricing.VolatilitySolver) outcome {
	skip := func(err error) outcome {
		return outcome{skip: &Skip{
			Index:      i,
			ContractID: row.Contract,
			Timestamp:  row.Timestamp,
			Reason:     err,
			Kind:       classify(err),
		}}
	}

	q, err := row.ToQuote(e.Options)
	if err != nil {
		return skip(err)
	}

	metrics, err := pricing.ComputeMetrics(q, solver)
	if err != nil {
		return skip(err)
	}

	return outcome{result: &Result{
		Index:         i,
		ContractID:    row.Contract,
		Timestamp:     row.Timestamp,
		Metrics:       metrics,
		LowConfidence: !metrics.IVConverged,
	}}
}

func classify(err error) SkipKind {
	switch {
	case errors.Is(err, pricing.DomainErr):
		return SkipDomainError
	case errors.Is(err, pricing.NumericAnomalyErr):
		return SkipNumericAnomaly
	default:
		return SkipOther
	}
}
