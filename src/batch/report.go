package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/options-analytics/src/pricing"
)

type SkipKind string

const (
	SkipDomainError    SkipKind = "domain_error"
	SkipNumericAnomaly SkipKind = "numeric_anomaly"
	SkipOther          SkipKind = "error"
)

type Result struct {
	Index      int
	ContractID string
	Timestamp  int64
	pricing.Metrics
	// LowConfidence is set when the implied volatility did not converge.
	LowConfidence bool
}

type Skip struct {
	Index      int
	ContractID string
	Timestamp  int64
	Reason     error
	Kind       SkipKind
}

type Report struct {
	RunID            uuid.UUID
	Results          []Result
	Skipped          []Skip
	DomainErrors     int
	NumericAnomalies int
	LowConfidence    int
}

func (r *Report) addResult(res Result) {
	r.Results = append(r.Results, res)
	if res.LowConfidence {
		r.LowConfidence++
	}
}

func (r *Report) addSkip(s Skip) {
	r.Skipped = append(r.Skipped, s)
	switch s.Kind {
	case SkipDomainError:
		r.DomainErrors++
	case SkipNumericAnomaly:
		r.NumericAnomalies++
	}
}

func (r *Report) record(ctx context.Context, inst *instruments) {
	inst.priced.Add(ctx, int64(len(r.Results)))
	inst.lowConfidence.Add(ctx, int64(r.LowConfidence))

	bySkipKind := map[SkipKind]int64{}
	for _, s := range r.Skipped {
		bySkipKind[s.Kind]++
	}

	for kind, n := range bySkipKind {
		inst.skipped.Add(ctx, n, metric.WithAttributes(attribute.String("reason", string(kind))))
	}
}

type ResultRecord struct {
	Row           int     `csv:"row"`
	Contract      string  `csv:"contract"`
	Timestamp     int64   `csv:"t"`
	FairValue     float64 `csv:"fair_value"`
	Delta         float64 `csv:"delta"`
	Gamma         float64 `csv:"gamma"`
	Vega          float64 `csv:"vega"`
	Theta         float64 `csv:"theta"`
	Rho           float64 `csv:"rho"`
	ImpliedVol    float64 `csv:"iv"`
	IVIterations  int     `csv:"iv_iterations"`
	IVConverged   bool    `csv:"iv_converged"`
	IVClamped     bool    `csv:"iv_clamped"`
	LowConfidence bool    `csv:"low_confidence"`
}

type SkipRecord struct {
	Row       int    `csv:"row"`
	Contract  string `csv:"contract"`
	Timestamp int64  `csv:"t"`
	Kind      string `csv:"kind"`
	Reason    string `csv:"reason"`
}

func (r *Report) Records() []*ResultRecord {
	records := make([]*ResultRecord, 0, len(r.Results))
	for _, res := range r.Results {
		records = append(records, &ResultRecord{
			Row:           res.Index,
			Contract:      res.ContractID,
			Timestamp:     res.Timestamp,
			FairValue:     res.FairValue,
			Delta:         res.Delta,
			Gamma:         res.Gamma,
			Vega:          res.Vega,
			Theta:         res.Theta,
			Rho:           res.Rho,
			ImpliedVol:    res.ImpliedVol,
			IVIterations:  res.IVIterations,
			IVConverged:   res.IVConverged,
			IVClamped:     res.IVClamped,
			LowConfidence: res.LowConfidence,
		})
	}

	return records
}

func (r *Report) SkipRecords() []*SkipRecord {
	records := make([]*SkipRecord, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		records = append(records, &SkipRecord{
			Row:       s.Index,
			Contract:  s.ContractID,
			Timestamp: s.Timestamp,
			Kind:      string(s.Kind),
			Reason:    s.Reason.Error(),
		})
	}

	return records
}

func (r *Report) String() string {
	display := &strings.Builder{}
	p := message.NewPrinter(language.English)

	display.WriteString(fmt.Sprintf("Run %s:\n", r.RunID))

	table := tablewriter.NewWriter(display)
	table.SetHeader([]string{"priced", "low confidence", "domain errors", "numeric anomalies", "other skips"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	other := len(r.Skipped) - r.DomainErrors - r.NumericAnomalies
	table.Append([]string{
		p.Sprintf("%d", len(r.Results)),
		p.Sprintf("%d", r.LowConfidence),
		p.Sprintf("%d", r.DomainErrors),
		p.Sprintf("%d", r.NumericAnomalies),
		p.Sprintf("%d", other),
	})

	table.Render()
	return display.String()
}
