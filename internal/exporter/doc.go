// Package exporter writes the engine's outputs back to disk and to HTTP
// download streams.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility.
//
// DerivedExporter: Serializes derived price records back to the input
// column layout with the computed columns appended. Undefined metrics
// become empty cells, never 0 or Inf.
//
// SummaryExporter: Writes the aggregate summaries (latest snapshot,
// yearly, seasonal, heatmap) as a single JSON document for the web
// frontend and the pipeline's export step.
package exporter
