package config

import "time"

// Application constants
const (
	AppName = "Accuracy Dashboard"

	// EnvPrefix namespaces every environment variable, e.g. DASHBOARD_SERVER_PORT
	EnvPrefix = "DASHBOARD"

	// EnvConfigFile points at an explicit YAML config file
	EnvConfigFile = "DASHBOARD_CONFIG"

	DefaultPort           = 8080
	DefaultDataDir        = "data"
	DefaultSource         = "data/combined.csv"
	DefaultLogFile        = "logs/dashboard.log"
	DefaultRequestTimeout = 30 * time.Second
	DefaultRenderTimeout  = 20 * time.Second

	DefaultChartWidth  = 900
	DefaultChartHeight = 450
	DefaultChartTheme  = "westeros"
)
