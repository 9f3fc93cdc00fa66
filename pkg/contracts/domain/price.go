package domain

import (
	"fmt"
	"math"
	"time"
)

// PriceRecord is one month of observed prices: the tracked city alongside
// its state and national benchmarks, all in USD per gallon. Date is
// normalized to the first instant of the month in UTC and is unique across
// a loaded series.
type PriceRecord struct {
	Date        time.Time `json:"date" csv:"date" validate:"required"`
	CityPrice   float64   `json:"city_price" csv:"city_price" validate:"required"`
	StateAvg    float64   `json:"state_avg" csv:"state_avg" validate:"required"`
	NationalAvg float64   `json:"national_avg" csv:"national_avg" validate:"required"`
}

// Year returns the calendar year of the record.
func (r PriceRecord) Year() int {
	return r.Date.Year()
}

// Month returns the calendar month of the record.
func (r PriceRecord) Month() time.Month {
	return r.Date.Month()
}

// YearMonth returns the "2006-01" label used in exports and chart axes.
func (r PriceRecord) YearMonth() string {
	return r.Date.Format("2006-01")
}

// Valid reports whether all three prices are finite numbers.
func (r PriceRecord) Valid() bool {
	for _, v := range []float64{r.CityPrice, r.StateAvg, r.NationalAvg} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// DerivedRecord is a PriceRecord plus the fields computed once over the
// full sorted series. SpreadVsState and SpreadVsNational are always
// defined. MoMPct and YoYPct are nil when the required neighbor is missing
// or its city price is exactly zero; they are fractional changes, so -0.5
// means a 50% drop. Consumers render nil as "n/a", never as 0%.
type DerivedRecord struct {
	PriceRecord

	SpreadVsState    float64  `json:"spread_vs_state" csv:"spread_vs_state"`
	SpreadVsNational float64  `json:"spread_vs_national" csv:"spread_vs_national"`
	MoMPct           *float64 `json:"mom_pct" csv:"mom_pct"`
	YoYPct           *float64 `json:"yoy_pct" csv:"yoy_pct"`
	YearMonthLabel   string   `json:"year_month" csv:"year_month"`
}

// Column identifies a numeric field of a DerivedRecord for extremum and
// trend queries.
type Column string

const (
	ColumnCityPrice        Column = "city_price"
	ColumnStateAvg         Column = "state_avg"
	ColumnNationalAvg      Column = "national_avg"
	ColumnSpreadVsState    Column = "spread_vs_state"
	ColumnSpreadVsNational Column = "spread_vs_national"
	ColumnMoMPct           Column = "mom_pct"
	ColumnYoYPct           Column = "yoy_pct"
)

// Columns lists every queryable column.
func Columns() []Column {
	return []Column{
		ColumnCityPrice,
		ColumnStateAvg,
		ColumnNationalAvg,
		ColumnSpreadVsState,
		ColumnSpreadVsNational,
		ColumnMoMPct,
		ColumnYoYPct,
	}
}

// ParseColumn validates a column name from an external caller.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns() {
		if s == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown column %q", s)
}

// Value returns the column's value for the record. The second return is
// false when the column is undefined for this record (nil MoM/YoY).
func (r DerivedRecord) Value(col Column) (float64, bool) {
	switch col {
	case ColumnCityPrice:
		return r.CityPrice, true
	case ColumnStateAvg:
		return r.StateAvg, true
	case ColumnNationalAvg:
		return r.NationalAvg, true
	case ColumnSpreadVsState:
		return r.SpreadVsState, true
	case ColumnSpreadVsNational:
		return r.SpreadVsNational, true
	case ColumnMoMPct:
		if r.MoMPct == nil {
			return 0, false
		}
		return *r.MoMPct, true
	case ColumnYoYPct:
		if r.YoYPct == nil {
			return 0, false
		}
		return *r.YoYPct, true
	}
	return 0, false
}

// IsSpread reports whether the column measures a gap against a benchmark.
// Trend wording depends on it: spreads widen or narrow, everything else
// increases or decreases.
func (c Column) IsSpread() bool {
	return c == ColumnSpreadVsState || c == ColumnSpreadVsNational
}
