// Package config loads runtime configuration for the sessionkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string     REST API root, e.g. http://localhost:3000
//	-f string     SQLite file that keeps the refresh cookie
//	-t duration   refresh timeout
//	-share        share one refresh between concurrent 401s
//
// # JSON schema
//
// Durations use timex.Duration, so "10s", "1d" and a plain number of seconds
// all work:
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "cookie_store_path": "session.db",
//	  "refresh_timeout": "10s",
//	  "request_timeout": "30s",
//	  "share_refresh": false
//	}
package config
