// Package app provides the orchestration layer for seomate.
//
// # Overview
//
// This package wires configuration, logging, the ItemGate client, the
// session and the UI together. It is the composition root: every dependency
// is built here and handed down.
//
// # Startup
//
//  1. Load config (TOML file, then .env, then SEOMATE_* variables)
//  2. Apply flag overrides (-token, -refresh)
//  3. Open the file logger; fall back to a no-op logger if that fails
//  4. Load UI preferences (theme, page size)
//  5. Build auth.Credentials and the itemgate.Client
//  6. Build the session; if a token is held, load the user and fetch both lists
//  7. Start the background poller and run the TUI until exit
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()          Read config.toml + env
//	       ├─────> logging.New()          File-backed zap logger
//	       ├─────> itemgate.NewClient()   HTTP client with bearer token
//	       ├─────> session.New()          Store, tracker, cursors
//	       ├─────> ingest.NewRunner()     Streaming ingestion control
//	       ├─────> StartPoller()          Background refresh
//	       └─────> ui.Run()               TUI (blocks)
//
// # Background Refresh
//
// The poller calls Session.RefreshIdle every refresh_seconds. A tab with an
// active search keeps its results. Consecutive failures double the wait up
// to five minutes; one success resets it. A zero interval disables polling.
//
// # Error Handling
//
// Run returns an error only for an unreadable config file or an invalid API
// base URL. Everything after startup is reported through the session notice
// and the log file.
package app
