package config

import "time"

// Well-known file and directory names. Directories are relative to the
// executable; GetPaths resolves them to absolute paths.
const (
	DefaultDataDir    = "data"
	DefaultExportsDir = "data/exports"
	DefaultLogsDir    = "logs"
	DefaultWebDir     = "web"

	DatasetFileName = "fuel_prices.csv"
	DerivedFileName = "fuel_prices_derived.csv"
	SummaryFileName = "fuel_summary.json"
)

// Timeouts shared between the server and the headless pipeline
const (
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultOperationTimeout = 10 * time.Minute
	WebSocketPingPeriod     = 30 * time.Second
	WebSocketPongWait       = 60 * time.Second
)
