// Package config provides centralized configuration management for the fuel
// analytics server and its command-line tools. It handles loading configuration
// from multiple sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FUEL_* for namespacing:
//
//	FUEL_SERVER_PORT=8080
//	FUEL_DATA_SOURCE_FILE=/srv/fuel/prices.xlsx
//	FUEL_LOGGING_LEVEL=info
//	FUEL_ANALYTICS_TREND_WINDOW=6
//	FUEL_ANALYTICS_YOY_MODE=calendar
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location:
//
//	paths, err := config.GetPaths()
//	derivedPath := paths.GetExportPath("fuel_prices_derived.csv")
//	logPath := paths.GetLogPath("server.log")
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Required fields are present
//	- Values are within acceptable ranges
//	- Analytics parameters (trend window, YoY mode) are usable
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// For testing, use config.Default() to create a configuration with sensible
// defaults that don't require environment variables or external resources.
package config
