package ui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/seomate/seomate/internal/ingest"
	"github.com/seomate/seomate/internal/itemgate"
	"github.com/seomate/seomate/internal/logtail"
	"github.com/seomate/seomate/internal/state"
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// run executes fn off the update loop and reports back with opDoneMsg. The
// session records its own notices and errors; the message only wakes the UI.
func (m *Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	m.busy++
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m *Model) searchCmd(tab state.Tab, query string) tea.Cmd {
	sess := m.sess
	return m.run("search", func(ctx context.Context) error {
		return sess.Search(ctx, tab, query)
	})
}

func (m *Model) exportCmd(kind itemgate.ExportKind) tea.Cmd {
	sess := m.sess
	m.status = "Downloading"
	return m.run("export", func(ctx context.Context) error {
		_, err := sess.Export(ctx, kind)
		return err
	})
}

// logsCmd loads the server activity log for admins and the local client log
// for everyone else.
func (m *Model) logsCmd() tea.Cmd {
	ctx := m.ctx
	sess := m.sess
	logPath := m.logPath
	return func() tea.Msg {
		if sess.IsAdmin() {
			entries, err := sess.Logs(ctx)
			if err != nil {
				return logsMsg{err: err}
			}
			return logsMsg{lines: formatLogEntries(entries)}
		}
		if logPath == "" {
			return logsMsg{err: fmt.Errorf("no log file configured")}
		}
		lines, err := logtail.Tail(logPath, logTailLines)
		return logsMsg{lines: lines, err: err}
	}
}

func formatLogEntries(entries []itemgate.LogEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		ts := e.Timestamp
		if t := e.ParsedTime(); !t.IsZero() {
			ts = t.Format("2006-01-02 15:04:05")
		}
		line := fmt.Sprintf("%s %-8s %s", ts, e.Status, e.Action)
		if e.ItemID != "" {
			line += " #" + e.ItemID
		}
		if e.Message != "" {
			line += " " + e.Message
		}
		lines = append(lines, line)
	}
	return lines
}

// waitIngest blocks on the next ingestion event. A closed channel ends the
// chain.
func waitIngest(ch <-chan ingest.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ingestEventMsg{ev: ev, ch: ch}
	}
}
