// Package app wires the accuracy dashboard together and manages the server
// lifecycle.
//
// NewCore builds the dataset pipeline (record store, change summarizer,
// chart renderer and dashboard service) and is shared with the CLI.
// NewApplication adds logging, OpenTelemetry, the chi router and the HTTP
// server on top of it.
//
// # Initialization Flow
//
//	1. Validate configuration
//	2. Initialize logging and observability
//	3. Build the core pipeline with metrics observers attached
//	4. Set up handlers and middleware
//	5. Optionally preload the default source, then serve
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	a, err := app.NewApplication(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// # Error Handling
//
// Initialization errors are returned to the caller. The package never calls
// os.Exit.
package app
