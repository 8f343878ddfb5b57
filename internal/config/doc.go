// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default()
//	2. A YAML file: $DASHBOARD_CONFIG, config.yaml or configs/config.yaml
//	3. Environment variables prefixed DASHBOARD_
//
// # Environment Variables
//
//	DASHBOARD_SERVER_PORT=8080
//	DASHBOARD_DATA_SOURCE=data/combined.csv
//	DASHBOARD_DATA_DUPLICATE_POLICY=reject
//	DASHBOARD_DATA_SHEETS_API_KEY=...
//	DASHBOARD_LOGGING_LEVEL=debug
//	DASHBOARD_SECURITY_RATE_LIMIT_RPS=20
//
// # File Format
//
//	server:
//	  port: 8080
//	data:
//	  source: sheets:1AbC.../Results!A1:D200
//	  duplicate_policy: last
//	chart:
//	  theme: westeros
package config
