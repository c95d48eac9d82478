package deribit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jiaming2012/options-analytics/src/pricing"
)

// Deribit options expire at 08:00 UTC.
const expiryHour = 8

var InvalidInstrumentErr = fmt.Errorf("invalid instrument name")

var expiryPattern = regexp.MustCompile(`^(\d{1,2})([A-Z]{3})(\d{2})$`)

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// Instrument is a parsed option name such as BTC-1JUL22-12000-C.
type Instrument struct {
	Currency string
	Expiry   time.Time
	Strike   float64
	Type     pricing.OptionType
}

func ParseInstrument(name string) (Instrument, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 4 {
		return Instrument{}, fmt.Errorf("ParseInstrument: %q has %d parts: %w", name, len(parts), InvalidInstrumentErr)
	}

	match := expiryPattern.FindStringSubmatch(parts[1])
	if match == nil {
		return Instrument{}, fmt.Errorf("ParseInstrument: %q has expiry %q: %w", name, parts[1], InvalidInstrumentErr)
	}

	day, _ := strconv.Atoi(match[1])
	month, ok := months[match[2]]
	if !ok {
		return Instrument{}, fmt.Errorf("ParseInstrument: %q has month %q: %w", name, match[2], InvalidInstrumentErr)
	}
	year, _ := strconv.Atoi(match[3])

	expiry := time.Date(2000+year, month, day, expiryHour, 0, 0, 0, time.UTC)
	if expiry.Day() != day {
		return Instrument{}, fmt.Errorf("ParseInstrument: %q has no day %d in %s: %w", name, day, match[2], InvalidInstrumentErr)
	}

	strike, err := strconv.ParseFloat(strings.ReplaceAll(parts[2], "d", "."), 64)
	if err != nil || !(strike > 0) {
		return Instrument{}, fmt.Errorf("ParseInstrument: %q has strike %q: %w", name, parts[2], InvalidInstrumentErr)
	}

	var optionType pricing.OptionType
	switch parts[3] {
	case "C":
		optionType = pricing.Call
	case "P":
		optionType = pricing.Put
	default:
		return Instrument{}, fmt.Errorf("ParseInstrument: %q has option type %q: %w", name, parts[3], InvalidInstrumentErr)
	}

	return Instrument{
		Currency: parts[0],
		Expiry:   expiry,
		Strike:   strike,
		Type:     optionType,
	}, nil
}

// String formats the instrument the way Deribit names it, e.g. BTC-13MAR26-75000-C.
func (i Instrument) String() string {
	expiry := i.Expiry.UTC()
	optType := "C"
	if i.Type == pricing.Put {
		optType = "P"
	}

	strike := strings.ReplaceAll(strconv.FormatFloat(i.Strike, 'f', -1, 64), ".", "d")

	return fmt.Sprintf("%s-%d%s%s-%s-%s",
		strings.ToUpper(i.Currency),
		expiry.Day(),
		strings.ToUpper(expiry.Format("Jan")),
		expiry.Format("06"),
		strike,
		optType,
	)
}
