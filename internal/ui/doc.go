// Package ui implements the seomate terminal interface with Bubble Tea.
//
// # Architecture Overview
//
// Model is the root tea.Model. It holds no list data of its own: every
// render reads a session.TabView, so the optimistic placeholders, search
// overrides and page cursors all live in the session and the UI cannot
// drift from them. Network work runs inside tea.Cmd functions that call
// session methods and report back with an opDoneMsg.
//
// # Package Structure
//
//   - app.go: Model, modes, key handling, Run
//   - commands.go: tea.Cmd wrappers around session and ingest calls
//   - view.go: Header, list, detail pane, ingestion and log panels, footer
//   - keys.go: Key bindings and help
//   - theme.go: Color themes and derived lipgloss styles
//
// # Modes
//
//   - browse: Tabbed catalog/generated lists with pagination
//   - search: Text input applying a server-side filter to the active tab
//   - login: Email and password form, entered whenever no token is held
//   - ingest: Item count input plus the live progress stream
//   - import: Spreadsheet path input
//   - edit: Description and keyword editor for one generation
//   - logs: Server activity log for admins, local client log otherwise
//
// # Key Bindings
//
//   - tab, 1, 2: Switch tab
//   - j/k: Move selection
//   - h/l, pgup/pgdown: Previous/next page
//   - z: Cycle page size (10, 25, 50, 100)
//   - /: Search the active tab, esc clears
//   - g: Generate content for the selected catalog item
//   - e: Edit the selected generation, ctrl+s saves
//   - c: Copy description and keywords to the clipboard
//   - r: Refresh both lists
//   - i: Ingest catalog items
//   - u, x, b: Upload spreadsheet, export items, download backup
//   - L: Activity log
//   - T: Cycle theme
//   - O: Log out
//   - ?: Toggle full help
//   - q or ctrl+c: Quit
//
// Theme and page size are saved to the preferences file when changed.
package ui
