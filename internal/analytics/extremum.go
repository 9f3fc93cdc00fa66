package analytics

import (
	"fmt"

	"fuelpulse/pkg/contracts/domain"
)

// FindExtremum returns the single record attaining the maximum or minimum
// value of the chosen column. Records where the column is undefined (nil
// MoM/YoY) do not participate. Ties resolve to the first occurrence in
// ascending-date order, which for a sorted input is the earlier record.
//
// An empty input, or one where the column is defined nowhere, yields
// domain.ErrEmptySeries.
func FindExtremum(records []domain.DerivedRecord, col domain.Column, kind domain.ExtremumKind) (domain.DerivedRecord, error) {
	var (
		best     domain.DerivedRecord
		bestVal  float64
		found    bool
		wantsMax = kind == domain.ExtremumMax
	)

	for _, r := range records {
		v, ok := r.Value(col)
		if !ok {
			continue
		}
		if !found || (wantsMax && v > bestVal) || (!wantsMax && v < bestVal) {
			best, bestVal, found = r, v, true
		}
	}

	if !found {
		return domain.DerivedRecord{}, fmt.Errorf("extremum %s of %s: %w", kind, col, domain.ErrEmptySeries)
	}
	return best, nil
}

// yearlyMean extracts the requested mean column from a yearly summary.
// Only the three price columns have yearly means.
func yearlyMean(s domain.YearlySummary, col domain.Column) (float64, error) {
	switch col {
	case domain.ColumnCityPrice:
		return s.MeanCityPrice, nil
	case domain.ColumnStateAvg:
		return s.MeanStateAvg, nil
	case domain.ColumnNationalAvg:
		return s.MeanNationalAvg, nil
	}
	return 0, fmt.Errorf("column %s has no yearly mean", col)
}

// ExtremeYear finds the year whose annual mean of the chosen price column
// is highest (ExtremumMax) or lowest (ExtremumMin). Incomplete years are
// excluded: a partial year must never be reported as an annual record
// holder. With no complete year present the result is
// domain.ErrEmptySeries. Ties resolve to the earliest year.
func ExtremeYear(yearly []domain.YearlySummary, col domain.Column, kind domain.ExtremumKind) (domain.YearlySummary, error) {
	var (
		best     domain.YearlySummary
		bestVal  float64
		found    bool
		wantsMax = kind == domain.ExtremumMax
	)

	for _, s := range yearly {
		if !s.Complete {
			continue
		}
		v, err := yearlyMean(s, col)
		if err != nil {
			return domain.YearlySummary{}, err
		}
		if !found || (wantsMax && v > bestVal) || (!wantsMax && v < bestVal) {
			best, bestVal, found = s, v, true
		}
	}

	if !found {
		return domain.YearlySummary{}, fmt.Errorf("%s year by %s: no complete year: %w", kind, col, domain.ErrEmptySeries)
	}
	return best, nil
}

// Latest returns the KPI snapshot of the most recent month. It must be
// called with the full derived series, not a filtered one: the dashboard's
// headline numbers always describe the latest observed month regardless of
// any display filter.
func Latest(derived []domain.DerivedRecord) (domain.LatestSnapshot, error) {
	if len(derived) == 0 {
		return domain.LatestSnapshot{}, fmt.Errorf("latest snapshot: %w", domain.ErrEmptySeries)
	}

	last := derived[len(derived)-1]
	return domain.LatestSnapshot{
		Date:             last.Date,
		YearMonth:        last.YearMonthLabel,
		CityPrice:        last.CityPrice,
		StateAvg:         last.StateAvg,
		NationalAvg:      last.NationalAvg,
		SpreadVsState:    last.SpreadVsState,
		SpreadVsNational: last.SpreadVsNational,
		MoMPct:           last.MoMPct,
		YoYPct:           last.YoYPct,
	}, nil
}
