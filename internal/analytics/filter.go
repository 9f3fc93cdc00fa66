package analytics

import (
	"fuelpulse/pkg/contracts/domain"
)

// Filter returns the subsequence of derived records whose dates pass every
// supplied predicate of f. It never re-derives anything: MoM/YoY values on
// the result are the ones computed over the full series, which is exactly
// what display filtering requires.
//
// An empty result is valid; callers feeding it into a row-demanding query
// get domain.ErrEmptySeries from that query, not from here.
func Filter(derived []domain.DerivedRecord, f domain.RangeFilter) []domain.DerivedRecord {
	if f.IsZero() {
		return derived
	}

	out := make([]domain.DerivedRecord, 0, len(derived))
	for _, d := range derived {
		if f.Matches(d.Date) {
			out = append(out, d)
		}
	}
	return out
}
