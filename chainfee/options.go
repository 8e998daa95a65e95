package chainfee

import (
	"fmt"
	"strings"
)

// FeeOption is a named confirmation speed.
type FeeOption string

const (
	// FeeOptionAverage targets confirmation within 6 blocks.
	FeeOptionAverage FeeOption = "average"

	// FeeOptionFast targets confirmation within 3 blocks.
	FeeOptionFast FeeOption = "fast"

	// FeeOptionFastest targets confirmation in the next block.
	FeeOptionFastest FeeOption = "fastest"
)

// FeeOptions lists every option from slowest to fastest.
var FeeOptions = []FeeOption{
	FeeOptionAverage, FeeOptionFast, FeeOptionFastest,
}

// Target returns the confirmation target of the option.
func (o FeeOption) Target() uint32 {
	switch o {
	case FeeOptionFastest:
		return 1
	case FeeOptionFast:
		return 3
	default:
		return 6
	}
}

// ParseFeeOption parses an option name, case insensitively.
func ParseFeeOption(s string) (FeeOption, error) {
	o := FeeOption(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range FeeOptions {
		if o == known {
			return o, nil
		}
	}

	return "", fmt.Errorf("unknown fee option %q", s)
}

// FeeRates maps every fee option to a rate.
type FeeRates map[FeeOption]SatPerVByte

// EstimateFeeRates asks the estimator for the rate of every option.
func EstimateFeeRates(e Estimator) (FeeRates, error) {
	rates := make(FeeRates, len(FeeOptions))
	for _, o := range FeeOptions {
		rate, err := e.EstimateFeePerVByte(o.Target())
		if err != nil {
			return nil, fmt.Errorf("unable to estimate %v fee: %w",
				o, err)
		}
		rates[o] = rate
	}

	return rates, nil
}

// FeeRatesFromTable picks the rate of every option out of a fee table.
func FeeRatesFromTable(table FeeTable) FeeRates {
	rates := make(FeeRates, len(FeeOptions))
	for _, o := range FeeOptions {
		if e, ok := table.Entry(o.Target()); ok {
			rates[o] = e.FeeRate
		}
	}

	return rates
}
