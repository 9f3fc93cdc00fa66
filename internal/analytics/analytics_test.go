package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelpulse/internal/dataprocessing"
	"fuelpulse/pkg/contracts/domain"
)

// series builds consecutive monthly derived records starting at start.
// Benchmarks track the city price at fixed offsets so spreads are stable.
func series(start time.Time, cityPrices ...float64) []domain.DerivedRecord {
	records := make([]domain.PriceRecord, len(cityPrices))
	for i, p := range cityPrices {
		records[i] = domain.PriceRecord{
			Date:        start.AddDate(0, i, 0),
			CityPrice:   p,
			StateAvg:    p - 0.10,
			NationalAvg: p + 0.20,
		}
	}
	return dataprocessing.Derive(records, domain.YoYModeCalendar)
}

var jan2020 = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

func intPtr(v int) *int              { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestFilter(t *testing.T) {
	// Two full years.
	prices := make([]float64, 24)
	for i := range prices {
		prices[i] = 2.00 + 0.01*float64(i)
	}
	derived := series(jan2020, prices...)

	tests := []struct {
		name   string
		filter domain.RangeFilter
		want   int
	}{
		{name: "zero filter selects all", filter: domain.RangeFilter{}, want: 24},
		{name: "year bounds", filter: domain.RangeFilter{YearFrom: intPtr(2021), YearTo: intPtr(2021)}, want: 12},
		{name: "month set", filter: domain.RangeFilter{Months: []time.Month{time.June, time.July}}, want: 4},
		{name: "empty month set selects all", filter: domain.RangeFilter{Months: []time.Month{}}, want: 24},
		{
			name: "predicates AND together",
			filter: domain.RangeFilter{
				YearFrom: intPtr(2021),
				Months:   []time.Month{time.June},
			},
			want: 1,
		},
		{
			name: "date bounds",
			filter: domain.RangeFilter{
				DateFrom: timePtr(time.Date(2021, time.November, 1, 0, 0, 0, 0, time.UTC)),
			},
			want: 2,
		},
		{name: "disjoint range is empty", filter: domain.RangeFilter{YearFrom: intPtr(2030)}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(derived, tt.filter)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFilter_KeepsFullSeriesDerivedValues(t *testing.T) {
	derived := series(jan2020, 2.00, 2.10, 2.20, 2.30)
	filtered := Filter(derived, domain.RangeFilter{Months: []time.Month{time.March}})

	require.Len(t, filtered, 1)
	require.NotNil(t, filtered[0].MoMPct, "filtering must keep the MoM computed on the full series")
	assert.InDelta(t, (2.20-2.10)/2.10, *filtered[0].MoMPct, 1e-12)
}

func TestYearly(t *testing.T) {
	// Full 2020 plus three months of 2021.
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 2.00
	}
	derived := series(jan2020, prices...)

	yearly := Yearly(derived)
	require.Len(t, yearly, 2)

	assert.Equal(t, 2020, yearly[0].Year)
	assert.Equal(t, 12, yearly[0].Count)
	assert.True(t, yearly[0].Complete)
	assert.InDelta(t, 2.00, yearly[0].MeanCityPrice, 1e-12)
	assert.InDelta(t, 1.90, yearly[0].MeanStateAvg, 1e-12)
	assert.InDelta(t, 2.20, yearly[0].MeanNationalAvg, 1e-12)

	assert.Equal(t, 2021, yearly[1].Year)
	assert.Equal(t, 3, yearly[1].Count)
	assert.False(t, yearly[1].Complete)
}

func TestYearly_Empty(t *testing.T) {
	assert.Empty(t, Yearly(nil))
}

func TestSeasonal(t *testing.T) {
	// Jan 2020 = 2.00, Jan 2021 = 3.00, plus Feb 2020 only.
	derived := append(series(jan2020, 2.00, 2.50),
		series(jan2020.AddDate(1, 0, 0), 3.00)...)

	seasonal := Seasonal(derived)
	require.Len(t, seasonal, 2)

	assert.Equal(t, "January", seasonal[0].MonthName)
	assert.InDelta(t, 2.50, seasonal[0].MeanCityPrice, 1e-12)
	assert.Equal(t, 2, seasonal[0].Count)

	assert.Equal(t, "February", seasonal[1].MonthName)
	assert.InDelta(t, 2.50, seasonal[1].MeanCityPrice, 1e-12)
}

func TestSeasonal_OrderedJanToDecRegardlessOfInput(t *testing.T) {
	// Series starting in November wraps around the year boundary.
	derived := series(time.Date(2020, time.November, 1, 0, 0, 0, 0, time.UTC),
		2.00, 2.10, 2.20, 2.30)

	seasonal := Seasonal(derived)
	require.Len(t, seasonal, 4)
	assert.Equal(t, []string{"January", "February", "November", "December"},
		[]string{seasonal[0].MonthName, seasonal[1].MonthName, seasonal[2].MonthName, seasonal[3].MonthName})
}

func TestHeatmap(t *testing.T) {
	// 2020-11..2021-02: four cells across two years, no zero-filling.
	derived := series(time.Date(2020, time.November, 1, 0, 0, 0, 0, time.UTC),
		2.00, 2.10, 2.20, 2.30)

	cells := Heatmap(derived)
	require.Len(t, cells, 4)

	assert.Equal(t, 2020, cells[0].Year)
	assert.Equal(t, time.November, cells[0].Month)
	assert.InDelta(t, 2.00, cells[0].MeanCityPrice, 1e-12)

	assert.Equal(t, 2021, cells[2].Year)
	assert.Equal(t, time.January, cells[2].Month)
	assert.InDelta(t, 2.20, cells[2].MeanCityPrice, 1e-12)
}

func TestFindExtremum(t *testing.T) {
	derived := series(jan2020, 2.10, 2.50, 1.90, 2.50)

	max, err := FindExtremum(derived, domain.ColumnCityPrice, domain.ExtremumMax)
	require.NoError(t, err)
	assert.Equal(t, "2020-02", max.YearMonthLabel, "tie must resolve to the earlier month")

	min, err := FindExtremum(derived, domain.ColumnCityPrice, domain.ExtremumMin)
	require.NoError(t, err)
	assert.Equal(t, "2020-03", min.YearMonthLabel)
}

func TestFindExtremum_SkipsUndefinedValues(t *testing.T) {
	derived := series(jan2020, 2.00, 1.00, 3.00)

	// Row 0 has nil MoM; the extremum must come from rows 1-2.
	max, err := FindExtremum(derived, domain.ColumnMoMPct, domain.ExtremumMax)
	require.NoError(t, err)
	assert.Equal(t, "2020-03", max.YearMonthLabel)
}

func TestFindExtremum_Empty(t *testing.T) {
	_, err := FindExtremum(nil, domain.ColumnCityPrice, domain.ExtremumMax)
	require.ErrorIs(t, err, domain.ErrEmptySeries)

	// Defined nowhere: single row has no MoM.
	_, err = FindExtremum(series(jan2020, 2.00), domain.ColumnMoMPct, domain.ExtremumMax)
	require.ErrorIs(t, err, domain.ErrEmptySeries)
}

func TestExtremeYear_ExcludesIncompleteYears(t *testing.T) {
	// 2020 complete at 2.00; 2021 partial but much higher.
	prices := make([]float64, 15)
	for i := range prices {
		if i < 12 {
			prices[i] = 2.00
		} else {
			prices[i] = 9.00
		}
	}
	yearly := Yearly(series(jan2020, prices...))

	best, err := ExtremeYear(yearly, domain.ColumnCityPrice, domain.ExtremumMax)
	require.NoError(t, err)
	assert.Equal(t, 2020, best.Year, "partial 2021 must not be the record holder")
}

func TestExtremeYear_NoCompleteYear(t *testing.T) {
	yearly := Yearly(series(jan2020, 2.00, 2.10))
	_, err := ExtremeYear(yearly, domain.ColumnCityPrice, domain.ExtremumMax)
	require.ErrorIs(t, err, domain.ErrEmptySeries)
}

func TestExtremeYear_RejectsDerivedColumns(t *testing.T) {
	prices := make([]float64, 12)
	for i := range prices {
		prices[i] = 2.00
	}
	yearly := Yearly(series(jan2020, prices...))

	_, err := ExtremeYear(yearly, domain.ColumnMoMPct, domain.ExtremumMax)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no yearly mean")
}

func TestLatest(t *testing.T) {
	derived := series(jan2020, 2.00, 2.10, 2.31)

	snap, err := Latest(derived)
	require.NoError(t, err)
	assert.Equal(t, "2020-03", snap.YearMonth)
	assert.Equal(t, 2.31, snap.CityPrice)
	require.NotNil(t, snap.MoMPct)
	assert.InDelta(t, (2.31-2.10)/2.10, *snap.MoMPct, 1e-12)
	assert.Nil(t, snap.YoYPct)
}

func TestLatest_Empty(t *testing.T) {
	_, err := Latest(nil)
	require.ErrorIs(t, err, domain.ErrEmptySeries)
}

func TestTrend(t *testing.T) {
	tests := []struct {
		name      string
		prices    []float64
		column    domain.Column
		window    int
		wantSlope *float64
		wantDir   domain.TrendDirection
	}{
		{
			name:      "rising prices over exact window",
			prices:    []float64{1.0, 2.0, 3.0},
			column:    domain.ColumnCityPrice,
			window:    3,
			wantSlope: floatPtr(1.0),
			wantDir:   domain.TrendIncreasing,
		},
		{
			name:      "falling prices",
			prices:    []float64{3.0, 2.0, 1.0},
			column:    domain.ColumnCityPrice,
			window:    3,
			wantSlope: floatPtr(-1.0),
			wantDir:   domain.TrendDecreasing,
		},
		{
			name:      "flat",
			prices:    []float64{2.0, 2.0, 2.0, 2.0},
			column:    domain.ColumnCityPrice,
			window:    4,
			wantSlope: floatPtr(0.0),
			wantDir:   domain.TrendFlat,
		},
		{
			name:      "window smaller than series uses the tail",
			prices:    []float64{9.0, 1.0, 2.0, 3.0},
			column:    domain.ColumnCityPrice,
			window:    3,
			wantSlope: floatPtr(1.0),
			wantDir:   domain.TrendIncreasing,
		},
		{
			name:    "single point is not enough data",
			prices:  []float64{2.0},
			column:  domain.ColumnCityPrice,
			window:  6,
			wantDir: domain.TrendNotEnoughData,
		},
		{
			name:    "empty is not enough data",
			prices:  nil,
			column:  domain.ColumnCityPrice,
			window:  6,
			wantDir: domain.TrendNotEnoughData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Trend(series(jan2020, tt.prices...), tt.column, tt.window)
			require.NoError(t, err)

			assert.Equal(t, tt.wantDir, result.Direction)
			if tt.wantSlope == nil {
				assert.Nil(t, result.Slope)
			} else {
				require.NotNil(t, result.Slope)
				assert.InDelta(t, *tt.wantSlope, *result.Slope, 1e-12)
			}
		})
	}
}

func TestTrend_SpreadWording(t *testing.T) {
	// Spread widens as the city pulls away from the state benchmark.
	records := []domain.PriceRecord{
		{Date: jan2020, CityPrice: 2.00, StateAvg: 2.00, NationalAvg: 2.00},
		{Date: jan2020.AddDate(0, 1, 0), CityPrice: 2.20, StateAvg: 2.00, NationalAvg: 2.00},
		{Date: jan2020.AddDate(0, 2, 0), CityPrice: 2.40, StateAvg: 2.00, NationalAvg: 2.00},
	}
	derived := dataprocessing.Derive(records, domain.YoYModeCalendar)

	result, err := Trend(derived, domain.ColumnSpreadVsState, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.TrendWidening, result.Direction)

	// Shrink the spread for narrowing.
	for i := range records {
		records[i].StateAvg = records[i].CityPrice - 0.50 + 0.10*float64(i)
	}
	result, err = Trend(dataprocessing.Derive(records, domain.YoYModeCalendar), domain.ColumnSpreadVsState, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.TrendNarrowing, result.Direction)
}

func TestTrend_SkipsUndefinedBeforeWindow(t *testing.T) {
	// MoM is undefined on the first row only; the window must count
	// usable points, not raw rows.
	derived := series(jan2020, 2.00, 2.10, 2.20)

	result, err := Trend(derived, domain.ColumnMoMPct, 6)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Points)
	require.NotNil(t, result.Slope)
}

func TestTrend_InvalidWindow(t *testing.T) {
	_, err := Trend(series(jan2020, 2.00, 2.10), domain.ColumnCityPrice, 1)
	require.Error(t, err)
}

func floatPtr(v float64) *float64 { return &v }
