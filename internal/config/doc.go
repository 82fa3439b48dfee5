// Package config loads the skylight TOML configuration.
//
// # Overview
//
// Configuration is optional. Load reads ~/.config/skylight/config.toml (or an
// explicit path) and fills every missing, blank or non-positive value with a
// default, so an absent file and an empty file behave the same.
//
// # Resolution Order
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/skylight/config.toml
//  3. If the file doesn't exist, use defaults
//  4. SKYLIGHT_API_KEY, when set, replaces api.api_key
//
// # Sections
//
//	[api]
//	endpoint          = "https://api.flickr.com/services/rest/"
//	api_key           = ""
//	page_size         = 10
//	timeout_ms        = 10000
//	probe_interval_ms = 15000
//
//	[gallery]
//	row_height         = 180   # target row height in pixels
//	load_threshold     = 360   # pixels from the bottom that trigger loading
//	query_debounce_ms  = 500
//	resize_debounce_ms = 250
//	cell_width         = 8     # pixels per terminal column
//	cell_height        = 16    # pixels per terminal row
//	device_scale       = 1.0
//
//	[cache]
//	redis_addr  = ""           # empty disables the response cache
//	redis_db    = 0
//	ttl_seconds = 600
//
//	[log]
//	file  = "~/.local/state/skylight/skylight.log"
//	level = "info"
//
//	[server]
//	addr = "127.0.0.1:8089"
//
// Durations are whole milliseconds (or seconds for the cache TTL) rather than
// duration strings. Paths starting with ~ are expanded and made absolute.
//
// # Error Handling
//
// A missing file is not an error. Unreadable files and invalid TOML are
// returned wrapped ("open config", "read config", "parse config").
package config
