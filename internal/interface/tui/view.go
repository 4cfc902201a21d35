package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	domorder "example.com/orderdesk/internal/domain/order"
	"example.com/orderdesk/internal/usecase/desk"
)

type styles struct {
	table    table.Styles
	title    lipgloss.Style
	operator lipgloss.Style
	filterOn lipgloss.Style
	filter   lipgloss.Style
	detail   lipgloss.Style
	label    lipgloss.Style
	status   lipgloss.Style
	errText  lipgloss.Style
	modal    lipgloss.Style
	button   lipgloss.Style
	buttonOn lipgloss.Style
	dropdown lipgloss.Style
	cursor   lipgloss.Style
}

var statusColors = map[domorder.Status]lipgloss.Color{
	domorder.StatusPending:    lipgloss.Color("214"),
	domorder.StatusProcessing: lipgloss.Color("39"),
	domorder.StatusDelivered:  lipgloss.Color("42"),
	domorder.StatusCancelled:  lipgloss.Color("196"),
}

var iconGlyphs = map[desk.Icon]string{
	desk.IconWarning: "⚠",
	desk.IconSuccess: "✓",
	desk.IconError:   "✗",
}

func defaultStyles() styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	return styles{
		table:    ts,
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		operator: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		filterOn: lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		filter: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")),
		detail: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		errText: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		modal: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).Padding(1, 3).Align(lipgloss.Center),
		button: lipgloss.NewStyle().Padding(0, 2).MarginRight(1).
			Background(lipgloss.Color("238")),
		buttonOn: lipgloss.NewStyle().Padding(0, 2).MarginRight(1).Bold(true).
			Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		dropdown: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("57")).Padding(0, 1),
		cursor: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Order", Width: 14},
		{Title: "Customer", Width: 18},
		{Title: "Email", Width: 24},
		{Title: "Total", Width: 9},
		{Title: "Discounted", Width: 10},
		{Title: "Date", Width: 10},
		{Title: "Status", Width: 10},
	}
}

func orderRow(o domorder.Order, expanded bool) table.Row {
	marker := "▸ "
	if expanded {
		marker = "▾ "
	}
	return table.Row{
		marker + o.ID,
		o.FullName,
		o.Email,
		o.TotalPrice.StringFixed(2),
		o.DiscountedPrice.StringFixed(2),
		domorder.FormatOrderDate(o.OrderDate, domorder.OrderDateLayout),
		string(o.Status),
	}
}

func (m Model) View() string {
	if len(m.confirms) > 0 {
		return m.place(m.renderConfirm(m.confirms[0].prompt))
	}
	if len(m.notices) > 0 {
		return m.place(m.renderNotice(m.notices[0]))
	}

	sections := []string{
		m.renderHeader(),
		m.renderFilters(),
		m.table.View(),
	}
	if m.dropdown != nil {
		sections = append(sections, m.renderDropdown())
	}
	if detail := m.renderDetail(); detail != "" {
		sections = append(sections, detail)
	}
	sections = append(sections, m.renderStatusBar(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) place(box string) string {
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderHeader() string {
	header := m.styles.title.Render("Order Management")
	if m.operator != "" {
		header += "  " + m.styles.operator.Render("signed in as "+m.operator)
	}
	return header
}

func (m Model) renderFilters() string {
	parts := make([]string, 0, len(domorder.Filters()))
	for _, f := range domorder.Filters() {
		if f == m.snap.Filter {
			parts = append(parts, m.styles.filterOn.Render(string(f)))
			continue
		}
		parts = append(parts, m.styles.filter.Render(string(f)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// visibleSelected is the expanded order when its row is on screen.
func (m Model) visibleSelected() (domorder.Order, bool) {
	if m.snap.SelectedID == "" {
		return domorder.Order{}, false
	}
	for _, o := range m.snap.Visible {
		if o.ID == m.snap.SelectedID {
			return o, true
		}
	}
	return domorder.Order{}, false
}

func (m Model) detailLines(o domorder.Order) []string {
	label := m.styles.label.Render
	status := lipgloss.NewStyle().Foreground(statusColors[o.Status]).Render(string(o.Status))
	lines := []string{
		fmt.Sprintf("%s %s   %s %s", label("Customer:"), o.FullName, label("Status:"), status),
		fmt.Sprintf("%s %s   %s %s", label("Email:"), o.Email, label("Phone:"), o.Phone),
		fmt.Sprintf("%s %s, %s %s", label("Address:"), o.Address, o.City, o.ZipCode),
		fmt.Sprintf("%s %s   %s %s   %s %s",
			label("Date:"), domorder.FormatOrderDate(o.OrderDate, domorder.OrderDateLayout),
			label("Total:"), o.TotalPrice.StringFixed(2),
			label("Discounted:"), o.DiscountedPrice.StringFixed(2)),
		label(fmt.Sprintf("Items (%d):", len(o.CartItems))),
	}
	for _, it := range o.CartItems {
		line := "  • " + it.ProductName
		if it.ImageURL != "" {
			line += "  " + label(it.ImageURL)
		}
		lines = append(lines, line)
	}
	return lines
}

func (m Model) renderDetail() string {
	o, ok := m.visibleSelected()
	if !ok {
		return ""
	}
	return m.styles.detail.Render(strings.Join(m.detailLines(o), "\n"))
}

// detailHeight is the number of lines the detail panel takes, borders
// included.
func (m Model) detailHeight() int {
	o, ok := m.visibleSelected()
	if !ok {
		return 0
	}
	return len(m.detailLines(o)) + 2
}

func (m Model) renderDropdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status for %s\n", m.dropdown.orderID)
	for i, s := range domorder.Statuses() {
		line := "  " + string(s)
		if s == m.dropdown.current {
			line += " (current)"
		}
		if i == m.dropdown.cursor {
			line = m.styles.cursor.Render("› " + strings.TrimPrefix(line, "  "))
		}
		b.WriteString(line)
		if i < len(domorder.Statuses())-1 {
			b.WriteByte('\n')
		}
	}
	return m.styles.dropdown.Render(b.String())
}

func (m Model) renderStatusBar() string {
	var parts []string
	switch {
	case m.loading:
		parts = append(parts, m.spinner.View()+" loading orders")
	case m.snap.Loaded:
		parts = append(parts, fmt.Sprintf("%d of %d orders", len(m.snap.Visible), m.snap.Total))
	}
	if m.inFlight > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", m.inFlight))
	}
	bar := m.styles.status.Render(strings.Join(parts, "  "))
	if m.snap.LoadErr != nil && !m.loading {
		bar += "  " + m.styles.errText.Render("Fetch failed: "+m.snap.LoadErr.Error()+" (r to retry)")
	}
	return bar
}

func (m Model) renderConfirm(p desk.Prompt) string {
	confirm, cancel := m.styles.button, m.styles.buttonOn
	if m.confirmFocus {
		confirm, cancel = m.styles.buttonOn, m.styles.button
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		confirm.Render(p.ConfirmLabel),
		cancel.Render(p.CancelLabel),
	)
	return m.styles.modal.Render(lipgloss.JoinVertical(lipgloss.Center,
		m.styles.title.Render(iconGlyphs[p.Icon]+" "+p.Title),
		"",
		p.Text,
		"",
		buttons,
	))
}

func (m Model) renderNotice(n desk.Notice) string {
	title := m.styles.title
	if n.Level == desk.LevelError {
		title = m.styles.errText
	}
	return m.styles.modal.Render(lipgloss.JoinVertical(lipgloss.Center,
		title.Render(iconGlyphs[n.Level.Icon()]+" "+n.Title),
		"",
		n.Text,
		"",
		m.styles.buttonOn.Render("OK"),
	))
}
