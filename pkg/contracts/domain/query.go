package domain

import (
	"fmt"
	"time"
)

// RangeFilter restricts a derived series for display. Supplied predicates
// are ANDed; a nil bound or an empty month set matches everything, so the
// zero value selects the whole series. Filters apply only after derivation:
// MoM/YoY on each record keep the values computed over the full series.
type RangeFilter struct {
	YearFrom *int         `json:"year_from,omitempty" validate:"omitempty,min=1900,max=2200"`
	YearTo   *int         `json:"year_to,omitempty" validate:"omitempty,min=1900,max=2200"`
	Months   []time.Month `json:"months,omitempty" validate:"omitempty,dive,min=1,max=12"`
	DateFrom *time.Time   `json:"date_from,omitempty"`
	DateTo   *time.Time   `json:"date_to,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f RangeFilter) IsZero() bool {
	return f.YearFrom == nil && f.YearTo == nil && len(f.Months) == 0 &&
		f.DateFrom == nil && f.DateTo == nil
}

// Matches reports whether a record date passes every supplied predicate.
func (f RangeFilter) Matches(date time.Time) bool {
	if f.YearFrom != nil && date.Year() < *f.YearFrom {
		return false
	}
	if f.YearTo != nil && date.Year() > *f.YearTo {
		return false
	}
	if f.DateFrom != nil && date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && date.After(*f.DateTo) {
		return false
	}
	if len(f.Months) > 0 {
		found := false
		for _, m := range f.Months {
			if date.Month() == m {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Validate checks bound ordering on top of the struct tags.
func (f RangeFilter) Validate() error {
	if f.YearFrom != nil && f.YearTo != nil && *f.YearFrom > *f.YearTo {
		return fmt.Errorf("year_from %d after year_to %d", *f.YearFrom, *f.YearTo)
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return fmt.Errorf("date_from %s after date_to %s",
			f.DateFrom.Format("2006-01-02"), f.DateTo.Format("2006-01-02"))
	}
	return nil
}

// ExtremumKind selects the direction of an extremum query.
type ExtremumKind string

const (
	ExtremumMax ExtremumKind = "max"
	ExtremumMin ExtremumKind = "min"
)

// ParseExtremumKind validates an extremum kind from an external caller.
func ParseExtremumKind(s string) (ExtremumKind, error) {
	switch ExtremumKind(s) {
	case ExtremumMax, ExtremumMin:
		return ExtremumKind(s), nil
	}
	return "", fmt.Errorf("unknown extremum kind %q", s)
}

// YoYMode selects how the year-ago neighbor is located.
type YoYMode string

const (
	// YoYModeCalendar matches the exact same month one year earlier. This
	// is the default: with a gap in the series it refuses to compare
	// against a different calendar month.
	YoYModeCalendar YoYMode = "calendar"

	// YoYModePositional looks back exactly 12 rows regardless of calendar
	// gaps, matching the historical dashboard behavior.
	YoYModePositional YoYMode = "positional"
)

// ParseYoYMode validates a YoY mode; the empty string selects calendar.
func ParseYoYMode(s string) (YoYMode, error) {
	switch YoYMode(s) {
	case "":
		return YoYModeCalendar, nil
	case YoYModeCalendar, YoYModePositional:
		return YoYMode(s), nil
	}
	return "", fmt.Errorf("unknown yoy mode %q", s)
}

// TrendDirection classifies a fitted slope.
type TrendDirection string

const (
	TrendWidening      TrendDirection = "widening"
	TrendNarrowing     TrendDirection = "narrowing"
	TrendIncreasing    TrendDirection = "increasing"
	TrendDecreasing    TrendDirection = "decreasing"
	TrendFlat          TrendDirection = "flat"
	TrendNotEnoughData TrendDirection = "not enough data"
)

// TrendResult is the outcome of a short-window slope fit. Slope is nil
// when fewer than two usable points remain in the window, in which case
// Direction is TrendNotEnoughData.
type TrendResult struct {
	Column    Column         `json:"column"`
	Window    int            `json:"window"`
	Points    int            `json:"points"`
	Slope     *float64       `json:"slope"`
	Direction TrendDirection `json:"direction"`
}
