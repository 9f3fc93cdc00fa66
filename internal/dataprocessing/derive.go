package dataprocessing

import (
	"sort"

	"fuelpulse/pkg/contracts/domain"
)

// Derive computes the derived fields over a full, sorted, deduplicated
// series. The result is index-parallel to the input. mode selects how the
// year-ago neighbor is located; the zero value selects calendar matching.
//
// Derive must never be handed a filtered slice: MoM and YoY reference
// neighboring rows, and a display filter would silently remove the true
// neighbor. Filtering happens downstream on the derived records.
func Derive(records []domain.PriceRecord, mode domain.YoYMode) []domain.DerivedRecord {
	derived := make([]domain.DerivedRecord, len(records))

	for i, r := range records {
		derived[i] = domain.DerivedRecord{
			PriceRecord:      r,
			SpreadVsState:    r.CityPrice - r.StateAvg,
			SpreadVsNational: r.CityPrice - r.NationalAvg,
			YearMonthLabel:   r.YearMonth(),
		}

		if i >= 1 {
			derived[i].MoMPct = pctChange(r.CityPrice, records[i-1].CityPrice)
		}

		if prev, ok := yearAgo(records, i, mode); ok {
			derived[i].YoYPct = pctChange(r.CityPrice, prev.CityPrice)
		}
	}

	return derived
}

// yearAgo locates the year-ago neighbor of row i, or reports that none
// exists.
func yearAgo(records []domain.PriceRecord, i int, mode domain.YoYMode) (domain.PriceRecord, bool) {
	if mode == domain.YoYModePositional {
		if i < 12 {
			return domain.PriceRecord{}, false
		}
		return records[i-12], true
	}

	// Calendar mode: exact same month one year earlier. The series is
	// sorted with unique months, so a binary search suffices.
	want := records[i].Date.AddDate(-1, 0, 0)
	j := sort.Search(i, func(k int) bool {
		return !records[k].Date.Before(want)
	})
	if j < i && records[j].Date.Equal(want) {
		return records[j], true
	}
	return domain.PriceRecord{}, false
}

// pctChange is the single place fractional change is computed. A zero
// denominator yields nil, the shared "undefined" marker, never Inf or NaN.
func pctChange(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := (current - previous) / previous
	return &v
}
