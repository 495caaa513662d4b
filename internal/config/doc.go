// Package config loads seomate's startup configuration.
//
// # Resolution Order
//
//  1. Defaults (see below)
//  2. The TOML file at the given path, or ~/.config/seomate/config.toml
//  3. Variables from ./.env, loaded without overriding the environment
//  4. SEOMATE_API_BASE, SEOMATE_TOKEN, SEOMATE_LOG_LEVEL, SEOMATE_PAGE_SIZE
//
// A missing file is not an error. A file that exists but does not parse is.
//
// # Default Values
//
//   - api_base: http://localhost:8000
//   - page_size: 25 (one of 10, 25, 50, 100; anything else falls back)
//   - refresh_seconds: 30 (0 disables background refresh)
//   - ingest_count: 100 (1..10000)
//   - download_dir: ~/Downloads
//   - log_path: ~/.local/state/seomate/seomate.log
//   - log_level: info
//   - request_timeout_seconds: 0 (no client-side timeout; the transport governs)
//
// # TOML Format
//
//	api_base = "https://itemgate.example.com"
//	token = "eyJhbGciOi..."
//	page_size = 50
//	refresh_seconds = 60
//	download_dir = "~/exports"
//
// Every path accepts a leading ~ and is returned absolute.
package config
