// Package analytics implements the query side of the fuel-price engine:
// range filtering, yearly/seasonal/heatmap aggregation, extremum search,
// and short-window trend estimation.
//
// Every function takes its input slice explicitly; there is no shared
// state, so concurrent queries over the same derived series need no
// coordination. All functions accept filtered subsequences except where
// documented otherwise, and an empty input is a defined state: listings
// and aggregates return empty results, while row-demanding queries
// (extremum, best year) return domain.ErrEmptySeries.
package analytics
