package domain

import "time"

// YearlySummary is the mean of each price column over one calendar year.
// Count is the number of contributing months; Complete is true only for a
// full 12-month year. Incomplete years stay visible in listings but are
// excluded from best/worst-year queries.
type YearlySummary struct {
	Year            int     `json:"year"`
	MeanCityPrice   float64 `json:"mean_city_price"`
	MeanStateAvg    float64 `json:"mean_state_avg"`
	MeanNationalAvg float64 `json:"mean_national_avg"`
	Count           int     `json:"count"`
	Complete        bool    `json:"complete"`
}

// SeasonalSummary is the mean city price for one calendar month across all
// years present in the queried slice. Sequences of these are always ordered
// January through December.
type SeasonalSummary struct {
	Month         time.Month `json:"-"`
	MonthName     string     `json:"month"`
	MeanCityPrice float64    `json:"mean_city_price"`
	Count         int        `json:"count"`
}

// HeatCell is one (year, month) cell of the seasonality heatmap: the mean
// city price for that month. Only combinations present in the data are
// emitted; a missing month is a missing cell, not a zero.
type HeatCell struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"-"`
	MonthName     string     `json:"month"`
	MeanCityPrice float64    `json:"mean_city_price"`
}

// LatestSnapshot is the KPI view of the most recent month in the full
// series, independent of any display filter.
type LatestSnapshot struct {
	Date             time.Time `json:"date"`
	YearMonth        string    `json:"year_month"`
	CityPrice        float64   `json:"city_price"`
	StateAvg         float64   `json:"state_avg"`
	NationalAvg      float64   `json:"national_avg"`
	SpreadVsState    float64   `json:"spread_vs_state"`
	SpreadVsNational float64   `json:"spread_vs_national"`
	MoMPct           *float64  `json:"mom_pct"`
	YoYPct           *float64  `json:"yoy_pct"`
}
