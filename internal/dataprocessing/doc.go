// Package dataprocessing loads the monthly fuel-price dataset and computes
// the derived fields every other component consumes.
//
// The pipeline is deliberately small and strictly ordered:
//
//  1. Load: parse a CSV or XLSX file into validated PriceRecords. Rows with
//     unparseable dates or prices are dropped with a warning; a header
//     missing a required column is fatal.
//  2. Normalize: sort ascending by month, drop duplicate months keeping the
//     first occurrence in input order.
//  3. Derive: compute spreads and month-over-month / year-over-year
//     percentage changes over the full normalized series.
//
// Derivation must always see the full series. Percentage changes reference
// the immediately preceding row and the year-ago row, so computing them on
// a filtered slice would silently pick the wrong neighbor. Display filters
// therefore operate on []domain.DerivedRecord after this package is done.
//
// Undefined metrics (first row's MoM, the first year's YoY, a zero-valued
// denominator) are nil pointers, never 0, Inf, or NaN.
package dataprocessing
