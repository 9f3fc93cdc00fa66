// Package app provides application initialization and lifecycle management
// for the fuel price analytics server. It wires configuration, logging,
// telemetry, the dataset and operations services, and the HTTP transport
// into a single runnable unit.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Start the websocket hub and create the services
//	4. Warm-load the dataset (non-fatal if no source file exists yet)
//	5. Set up HTTP handlers and middleware
//	6. Configure and start the HTTP server
//	7. Set up graceful shutdown handlers
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM and ensures active requests complete,
// websocket connections close cleanly, and final telemetry is flushed.
// Initialization errors are returned to the caller; the package never
// calls os.Exit directly.
package app
