package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apierrors "fuelpulse/internal/errors"
	"fuelpulse/pkg/contracts/domain"
)

// parseRangeFilter builds a RangeFilter from query parameters. Supported
// parameters: year_from, year_to, months (comma-separated 1-12),
// date_from, date_to (both 2006-01-02).
func parseRangeFilter(r *http.Request) (domain.RangeFilter, error) {
	var filter domain.RangeFilter
	q := r.URL.Query()

	if v := q.Get("year_from"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return filter, apierrors.ErrValidation("year_from", fmt.Sprintf("invalid year: %s", v))
		}
		filter.YearFrom = &year
	}
	if v := q.Get("year_to"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return filter, apierrors.ErrValidation("year_to", fmt.Sprintf("invalid year: %s", v))
		}
		filter.YearTo = &year
	}
	if v := q.Get("months"); v != "" {
		for _, part := range strings.Split(v, ",") {
			m, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || m < 1 || m > 12 {
				return filter, apierrors.ErrValidation("months", fmt.Sprintf("invalid month: %s", part))
			}
			filter.Months = append(filter.Months, time.Month(m))
		}
	}
	if v := q.Get("date_from"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, apierrors.ErrValidation("date_from", "expected format 2006-01-02")
		}
		filter.DateFrom = &date
	}
	if v := q.Get("date_to"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, apierrors.ErrValidation("date_to", "expected format 2006-01-02")
		}
		filter.DateTo = &date
	}

	return filter, nil
}

// parseColumn reads the column query parameter, defaulting to city_price.
func parseColumn(r *http.Request) (domain.Column, error) {
	v := r.URL.Query().Get("column")
	if v == "" {
		return domain.ColumnCityPrice, nil
	}
	col, err := domain.ParseColumn(v)
	if err != nil {
		return "", apierrors.ErrValidation("column", err.Error())
	}
	return col, nil
}

// parseWindow reads the trend window parameter; zero means "use the
// configured default".
func parseWindow(r *http.Request) (int, error) {
	v := r.URL.Query().Get("window")
	if v == "" {
		return 0, nil
	}
	window, err := strconv.Atoi(v)
	if err != nil || window < 0 {
		return 0, apierrors.ErrValidation("window", fmt.Sprintf("invalid window: %s", v))
	}
	return window, nil
}
