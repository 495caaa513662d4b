package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/seomate/seomate/internal/itemgate"
	"github.com/seomate/seomate/internal/session"
	"github.com/seomate/seomate/internal/state"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

// View renders the whole screen.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	var body string
	switch m.mode {
	case modeLogin:
		body = m.renderLogin(width)
	case modeLogs:
		body = m.renderLogs(width)
	case modeEdit:
		body = m.renderEdit(width)
	default:
		body = m.renderBrowse(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		body,
		m.renderFooter(width),
	)
}

func (m Model) renderHeader(width int) string {
	logo := m.styles.Logo.Render("seomate")
	var tabs []string
	active := m.sess.ActiveTab()
	for _, tab := range state.Tabs {
		label := fmt.Sprintf("%s (%d)", tabTitle(tab), m.sess.View(tab).Total)
		if tab == active {
			tabs = append(tabs, m.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}
	left := logo + "  " + strings.Join(tabs, " ")

	var right []string
	if n := len(m.sess.Pending()); n > 0 {
		right = append(right, m.spinner.View()+m.styles.WarningText.Render(fmt.Sprintf("%d generating", n)))
	}
	if m.sess.Snapshot().IsOffline() {
		right = append(right, m.styles.DangerText.Render("offline"))
	}
	if user, ok := m.sess.User(); ok {
		label := user.Email
		if user.IsAdmin() {
			label += " (admin)"
		}
		right = append(right, m.styles.MutedText.Render(label))
	}
	rightText := strings.Join(right, "  ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(rightText) - 2
	if gap < 1 {
		gap = 1
	}
	return m.styles.Header.Width(width).Render(left + strings.Repeat(" ", gap) + rightText)
}

func (m Model) renderBrowse(width int) string {
	tab := m.sess.ActiveTab()
	view := m.sess.View(tab)

	var b strings.Builder
	if view.Query != "" {
		b.WriteString(m.styles.InfoText.Render(fmt.Sprintf("search: %q  (esc clears)", view.Query)))
		b.WriteString("\n")
	}
	if view.Err != nil {
		b.WriteString(m.styles.DangerText.Render(view.Err.Error()))
		b.WriteString("\n")
	}

	if view.Len() == 0 {
		b.WriteString(m.styles.MutedText.Render(emptyText(tab, view.Query)))
		b.WriteString("\n")
	}
	for i := 0; i < view.Len(); i++ {
		var row string
		if tab == state.TabGenerated {
			row = m.generatedRow(view.Generated[i], width-4)
		} else {
			row = m.catalogRow(view.Catalog[i], width-4)
		}
		if i == m.selected {
			row = m.styles.Selected.Width(width - 2).Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString(m.renderPager(view))

	if detail := m.renderDetail(view, width); detail != "" {
		b.WriteString("\n")
		b.WriteString(detail)
	}

	switch m.mode {
	case modeSearch:
		b.WriteString("\n" + m.styles.AccentText.Render("Search "+tabTitle(tab)) + "\n" + m.search.View())
	case modeIngest:
		b.WriteString("\n" + m.renderIngest(width))
	case modeImport:
		b.WriteString("\n" + m.styles.AccentText.Render("Upload spreadsheet") + "\n" + m.path.View())
	default:
		if m.runner != nil && m.runner.Running() {
			b.WriteString("\n" + m.renderIngest(width))
		}
	}
	return b.String()
}

func (m Model) catalogRow(item itemgate.CatalogItem, width int) string {
	marker := "  "
	if m.sess.IsPending(item.Key()) {
		marker = m.spinner.View()
	} else if item.HasGeneration {
		marker = "✓ "
	}
	id := fmt.Sprintf("%-8s", item.Key())
	price := fmt.Sprintf("%10.2f", item.Price)
	nameWidth := max(8, width-lipgloss.Width(marker)-len(id)-len(price)-3)
	name := truncate.StringWithTail(item.Name, uint(nameWidth), "…")
	return fmt.Sprintf("%s%s %-*s %s", marker, id, nameWidth, name, price)
}

func (m Model) generatedRow(item itemgate.GeneratedItem, width int) string {
	status := item.Status()
	badge := m.styles.StatusStyle(status).Render(fmt.Sprintf("%-10s", status))
	if item.Pending {
		badge = m.spinner.View() + badge
	}
	price := fmt.Sprintf("%10.2f", item.Price())
	nameWidth := max(8, width-lipgloss.Width(badge)-len(price)-2)
	name := item.Name()
	if name == "" {
		name = "item " + item.SourceKey().String()
	}
	name = truncate.StringWithTail(name, uint(nameWidth), "…")
	return fmt.Sprintf("%s %-*s %s", badge, nameWidth, name, price)
}

func (m Model) renderPager(view session.TabView) string {
	p := m.pager
	p.PerPage = max(1, view.PageSize)
	p.SetTotalPages(view.Total)
	p.Page = max(0, view.Page-1)
	label := fmt.Sprintf(" page %d/%d  %d per page  %d total", view.Page, view.TotalPages, view.PageSize, view.Total)
	return p.View() + m.styles.MutedText.Render(label)
}

func (m Model) renderDetail(view session.TabView, width int) string {
	if view.Tab != state.TabGenerated || m.selected >= len(view.Generated) {
		return ""
	}
	item := view.Generated[m.selected]
	wrap := max(20, width-6)

	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render(item.Name()))
	b.WriteString("\n")
	if item.Pending {
		b.WriteString(m.styles.WarningText.Render("Generating description..."))
		return m.styles.Panel.Width(width - 2).Render(b.String())
	}
	if desc := item.DescriptionText(); desc != "" {
		b.WriteString(wordwrap.String(desc, wrap))
	} else {
		b.WriteString(m.styles.MutedText.Render("No description yet"))
	}
	if kw := item.KeywordsText(); kw != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.InfoText.Render(wordwrap.String(kw, wrap)))
	}
	return m.styles.Panel.Width(width - 2).Render(b.String())
}

func (m Model) renderIngest(width int) string {
	var b strings.Builder
	title := "Catalog ingestion"
	if m.runner != nil {
		st := m.runner.Status()
		title += " [" + st.State.String() + "]"
	}
	b.WriteString(m.styles.AccentText.Render(title))
	b.WriteString("\n")
	if m.mode == modeIngest && (m.runner == nil || !m.runner.Running()) {
		b.WriteString(m.count.View())
		b.WriteString("\n")
	}

	lines := m.progress
	limit := max(3, m.bodyHeight()/3)
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	for _, line := range lines {
		b.WriteString(truncate.StringWithTail(line, uint(max(10, width-4)), "…"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderLogin(width int) string {
	title, hint := "Log in to ItemGate", "ctrl+r to create an account"
	if m.registering {
		title, hint = "Create an ItemGate account", "ctrl+r to log in instead"
	}
	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.email.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	if m.registering {
		b.WriteString("\n")
		b.WriteString(m.fullName.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.MutedText.Render("enter to continue, tab to switch field"))
	b.WriteString("\n")
	b.WriteString(m.styles.MutedText.Render(hint))
	return m.styles.Panel.Width(min(width-2, 60)).Render(b.String())
}

func (m Model) renderEdit(width int) string {
	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render("Edit generation " + m.editing.String()))
	b.WriteString("\n")
	b.WriteString(m.desc.View())
	b.WriteString("\n")
	b.WriteString(m.keywords.View())
	b.WriteString("\n")
	b.WriteString(m.styles.MutedText.Render("ctrl+s save, tab switch field, esc cancel"))
	return m.styles.Panel.Width(width - 2).Render(b.String())
}

func (m Model) renderLogs(width int) string {
	title := "Client log"
	if m.sess.IsAdmin() {
		title = "Activity log"
	}
	var b strings.Builder
	b.WriteString(m.styles.AccentText.Render(title))
	b.WriteString("\n")
	lines := m.logLines
	if len(lines) == 0 {
		b.WriteString(m.styles.MutedText.Render("No entries"))
	}
	limit := max(5, m.bodyHeight()-2)
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	for _, line := range lines {
		b.WriteString(truncate.StringWithTail(line, uint(max(10, width-4)), "…"))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderFooter(width int) string {
	msg := m.status
	if msg == "" {
		msg = m.sess.Notice()
	}
	if msg != "" && m.busy > 0 {
		msg = m.spinner.View() + msg
	}
	line := m.styles.Footer.Width(width).Render(msg)
	return line + "\n" + m.help.View(m.keys)
}

func (m Model) bodyHeight() int {
	h := m.height
	if h <= 0 {
		h = defaultHeight
	}
	return max(5, h-4)
}

func tabTitle(tab state.Tab) string {
	if tab == state.TabGenerated {
		return "Generated"
	}
	return "Catalog"
}

func emptyText(tab state.Tab, query string) string {
	if query != "" {
		return "No matches"
	}
	if tab == state.TabGenerated {
		return "Nothing generated yet"
	}
	return "Catalog is empty"
}
