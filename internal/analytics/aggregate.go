package analytics

import (
	"sort"
	"time"

	"fuelpulse/pkg/contracts/domain"
)

// Yearly groups records by calendar year and means each price column,
// returning one summary per year in ascending year order. Count carries
// the number of contributing months; only a 12-month year is Complete.
func Yearly(records []domain.DerivedRecord) []domain.YearlySummary {
	type accum struct {
		city, state, national float64
		count                 int
	}

	byYear := make(map[int]*accum)
	for _, r := range records {
		a := byYear[r.Year()]
		if a == nil {
			a = &accum{}
			byYear[r.Year()] = a
		}
		a.city += r.CityPrice
		a.state += r.StateAvg
		a.national += r.NationalAvg
		a.count++
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]domain.YearlySummary, 0, len(years))
	for _, y := range years {
		a := byYear[y]
		n := float64(a.count)
		out = append(out, domain.YearlySummary{
			Year:            y,
			MeanCityPrice:   a.city / n,
			MeanStateAvg:    a.state / n,
			MeanNationalAvg: a.national / n,
			Count:           a.count,
			Complete:        a.count == 12,
		})
	}
	return out
}

// Seasonal groups records by calendar month across all years present and
// means the city price. The result is ordered January through December;
// months absent from the input are omitted.
func Seasonal(records []domain.DerivedRecord) []domain.SeasonalSummary {
	type accum struct {
		sum   float64
		count int
	}

	var byMonth [13]accum
	for _, r := range records {
		m := r.Month()
		byMonth[m].sum += r.CityPrice
		byMonth[m].count++
	}

	out := make([]domain.SeasonalSummary, 0, 12)
	for m := time.January; m <= time.December; m++ {
		a := byMonth[m]
		if a.count == 0 {
			continue
		}
		out = append(out, domain.SeasonalSummary{
			Month:         m,
			MonthName:     m.String(),
			MeanCityPrice: a.sum / float64(a.count),
			Count:         a.count,
		})
	}
	return out
}

// Heatmap groups records by (year, month) and means the city price,
// one cell per combination actually present, ordered year then month
// ascending. Absent combinations are omitted, never zero-filled.
func Heatmap(records []domain.DerivedRecord) []domain.HeatCell {
	type key struct {
		year  int
		month time.Month
	}
	type accum struct {
		sum   float64
		count int
	}

	byCell := make(map[key]*accum)
	for _, r := range records {
		k := key{year: r.Year(), month: r.Month()}
		a := byCell[k]
		if a == nil {
			a = &accum{}
			byCell[k] = a
		}
		a.sum += r.CityPrice
		a.count++
	}

	keys := make([]key, 0, len(byCell))
	for k := range byCell {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]domain.HeatCell, 0, len(keys))
	for _, k := range keys {
		a := byCell[k]
		out = append(out, domain.HeatCell{
			Year:          k.year,
			Month:         k.month,
			MonthName:     k.month.String(),
			MeanCityPrice: a.sum / float64(a.count),
		})
	}
	return out
}
