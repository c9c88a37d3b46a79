// Package config loads and validates the gateway's YAML configuration.
//
// Load reads a file over the built-in defaults, so a config file only
// needs the fields it wants to change and an empty path runs the gateway
// entirely on defaults:
//
//	cfg, err := config.Load("config.yaml")
//
// LoadWithEnv additionally overlays LIVCAP_* environment variables, which
// win over the file. The variable name spells out the field path, so
// LIVCAP_SERVER_PORT sets server.port and LIVCAP_TELEMETRY_LOGGING_LEVEL
// sets telemetry.logging.level. GEMINI_API_KEY fills in the backend key
// when nothing else provides one. Per-model limits stay file-only; a flat
// variable namespace cannot carry a map.
//
// Every load path ends in Validate, which collects all field problems
// rather than stopping at the first:
//
//	configuration validation failed with 2 errors:
//	  - server.port: port must be between 1 and 65535, got 99999
//	  - telemetry.logging.level: level must be one of debug, info, warn, error, got "loud"
//
// A small file for a local setup:
//
//	server:
//	  port: 11435
//
//	session:
//	  min_interval: 2s
//
//	usage:
//	  database: "data/usage.db"
//
//	limits:
//	  daily_cap: 500
//	  per_model:
//	    gemini-3.0-pro: 100
package config
