// Package app provides application initialization and lifecycle
// management for the training dashboard server. It wires configuration,
// logging, observability, the sheet fetch layer, the dashboard service,
// and the HTTP router together at startup and handles graceful
// shutdown.
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Create the sheet source, cache, and loader
//	4. Initialize the dashboard service
//	5. Set up HTTP handlers and middleware
//	6. Configure and start the HTTP server
//	7. Run the initial dataset refresh in the background
//
// All initialization errors are returned to the caller; the package
// does not call os.Exit() directly.
package app
