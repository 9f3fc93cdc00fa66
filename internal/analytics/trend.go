package analytics

import (
	"fmt"

	"fuelpulse/pkg/contracts/domain"
)

// Trend fits an ordinary least-squares line through the last window
// defined values of the chosen column, in date order, and classifies its
// slope. Records where the column is undefined are skipped before the
// window is taken, so the window counts usable points.
//
// Fewer than two usable points is not an error: the result carries a nil
// slope and the "not enough data" direction, which consumers render as-is
// rather than coercing to flat.
func Trend(records []domain.DerivedRecord, col domain.Column, window int) (domain.TrendResult, error) {
	if window < 2 {
		return domain.TrendResult{}, fmt.Errorf("trend window must be at least 2, got %d", window)
	}

	values := make([]float64, 0, window)
	for _, r := range records {
		if v, ok := r.Value(col); ok {
			values = append(values, v)
		}
	}
	if len(values) > window {
		values = values[len(values)-window:]
	}

	result := domain.TrendResult{
		Column: col,
		Window: window,
		Points: len(values),
	}

	if len(values) < 2 {
		result.Direction = domain.TrendNotEnoughData
		return result, nil
	}

	slope := olsSlope(values)
	result.Slope = &slope
	result.Direction = classify(slope, col)
	return result, nil
}

// olsSlope fits y = a + b*x over x = 0..n-1 and returns b.
func olsSlope(values []float64) float64 {
	n := float64(len(values))

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	// The denominator is zero only for n < 2, which Trend rules out.
	return (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
}

// classify maps a slope sign to direction wording. Spread columns widen or
// narrow; price and percentage columns increase or decrease.
func classify(slope float64, col domain.Column) domain.TrendDirection {
	switch {
	case slope > 0:
		if col.IsSpread() {
			return domain.TrendWidening
		}
		return domain.TrendIncreasing
	case slope < 0:
		if col.IsSpread() {
			return domain.TrendNarrowing
		}
		return domain.TrendDecreasing
	default:
		return domain.TrendFlat
	}
}
