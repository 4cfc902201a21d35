// Package tui renders the order management screen in the terminal.
package tui

import (
	"context"
	"errors"
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	domorder "example.com/orderdesk/internal/domain/order"
	"example.com/orderdesk/internal/usecase/desk"
)

type focusRegion int

const (
	focusTable focusRegion = iota
	focusDropdown
)

// chrome is the number of lines around the table: header, filter bar,
// status bar and help.
const chrome = 6

// loadedMsg is sent when a fetch of every order completes.
type loadedMsg struct {
	err error
}

// mutationResultMsg is sent when a status update or delete completes.
// Notices about the outcome arrive separately through the bridge.
type mutationResultMsg struct {
	err error
}

// statusDropdown is the per-order status selector.
type statusDropdown struct {
	orderID string
	current domorder.Status
	cursor  int
}

func (d *statusDropdown) selected() domorder.Status {
	return domorder.Statuses()[d.cursor]
}

type Model struct {
	ctx    context.Context
	desk   *desk.Desk
	bridge *Bridge
	keys   KeyMap
	styles styles

	table   table.Model
	help    help.Model
	spinner spinner.Model

	operator string
	width    int
	height   int

	snap     desk.Snapshot
	loading  bool
	inFlight int

	focus    focusRegion
	dropdown *statusDropdown

	confirms     []confirmRequest
	confirmFocus bool
	notices      []desk.Notice
}

type Option func(*Model)

// WithOperator shows who is logged in in the header.
func WithOperator(name string) Option {
	return func(m *Model) { m.operator = name }
}

func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

// New builds the screen over d. The desk should have been created with
// b as its notifier so outcome notices reach the modal.
func New(ctx context.Context, d *desk.Desk, b *Bridge, opts ...Option) Model {
	m := Model{
		ctx:     ctx,
		desk:    d,
		bridge:  b,
		keys:    DefaultKeyMap(),
		styles:  defaultStyles(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
	}
	for _, opt := range opts {
		opt(&m)
	}

	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithKeyMap(m.keys.tableKeys()),
	)
	t.SetStyles(m.styles.table)
	m.table = t
	m.sync()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.bridge.listen(), m.spinner.Tick)
}

func (m Model) loadCmd() tea.Cmd {
	d, ctx := m.desk, m.ctx
	return func() tea.Msg {
		return loadedMsg{err: d.Load(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case len(m.confirms) > 0:
			return m.handleConfirmKeys(msg)
		case len(m.notices) > 0:
			return m.handleNoticeKeys(msg)
		case m.focus == focusDropdown:
			return m.handleDropdownKeys(msg)
		}
		return m.handleTableKeys(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case loadedMsg:
		m.loading = false
		m.sync()

	case mutationResultMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		m.sync()

	case confirmMsg:
		if len(m.confirms) == 0 {
			m.confirmFocus = true
		}
		m.confirms = append(m.confirms, confirmRequest(msg))
		return m, m.bridge.listen()

	case noticeMsg:
		m.notices = append(m.notices, msg.notice)
		return m, m.bridge.listen()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleTableKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.bridge.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()

	case key.Matches(msg, m.keys.NextFilter):
		m.cycleFilter(1)

	case key.Matches(msg, m.keys.PrevFilter):
		m.cycleFilter(-1)

	case key.Matches(msg, m.keys.Toggle):
		if o, ok := m.cursorOrder(); ok {
			m.desk.Toggle(o.ID)
			m.sync()
		}

	case key.Matches(msg, m.keys.Status):
		if o, ok := m.cursorOrder(); ok {
			m.openDropdown(o)
		}

	case key.Matches(msg, m.keys.Delete):
		if o, ok := m.cursorOrder(); ok {
			m.inFlight++
			return m, m.deleteCmd(o.ID)
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.loadCmd(), m.spinner.Tick)

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleDropdownKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(domorder.Statuses())
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.bridge.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.closeDropdown()

	case key.Matches(msg, m.keys.Up):
		m.dropdown.cursor = (m.dropdown.cursor + n - 1) % n

	case key.Matches(msg, m.keys.Down):
		m.dropdown.cursor = (m.dropdown.cursor + 1) % n

	case key.Matches(msg, m.keys.Select):
		dd := *m.dropdown
		m.closeDropdown()
		// Picking the current value is not a change.
		if dd.selected() == dd.current {
			return m, nil
		}
		m.inFlight++
		return m, m.updateStatusCmd(dd.orderID, dd.selected())
	}
	return m, nil
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.bridge.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		m.answer(true)
	case key.Matches(msg, m.keys.Cancel):
		m.answer(false)
	case key.Matches(msg, m.keys.Switch):
		m.confirmFocus = !m.confirmFocus
	case key.Matches(msg, m.keys.Select):
		m.answer(m.confirmFocus)
	}
	return m, nil
}

func (m Model) handleNoticeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.bridge.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Select), key.Matches(msg, m.keys.Cancel):
		m.notices = m.notices[1:]
	}
	return m, nil
}

// answer resolves the front confirm request. The reply channel is
// buffered so this never blocks the loop.
func (m *Model) answer(ok bool) {
	req := m.confirms[0]
	m.confirms = m.confirms[1:]
	req.reply <- ok
	m.confirmFocus = true
}

func (m Model) updateStatusCmd(id string, status domorder.Status) tea.Cmd {
	d, ctx := m.desk, m.ctx
	return func() tea.Msg {
		return mutationResultMsg{err: d.UpdateStatus(ctx, id, status)}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	d, ctx, b := m.desk, m.ctx, m.bridge
	return func() tea.Msg {
		err := d.Delete(ctx, id, b)
		if errors.Is(err, desk.ErrCancelled) {
			err = nil
		}
		return mutationResultMsg{err: err}
	}
}

func (m *Model) cycleFilter(step int) {
	filters := domorder.Filters()
	i := slices.Index(filters, m.desk.Filter())
	next := filters[(i+step+len(filters))%len(filters)]
	if err := m.desk.SetFilter(next); err != nil {
		return
	}
	m.table.SetCursor(0)
	m.sync()
}

func (m *Model) openDropdown(o domorder.Order) {
	cursor := slices.Index(domorder.Statuses(), o.Status)
	if cursor < 0 {
		cursor = 0
	}
	m.dropdown = &statusDropdown{orderID: o.ID, current: o.Status, cursor: cursor}
	m.focus = focusDropdown
}

func (m *Model) closeDropdown() {
	m.dropdown = nil
	m.focus = focusTable
}

// cursorOrder is the visible order under the table cursor.
func (m Model) cursorOrder() (domorder.Order, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.snap.Visible) {
		return domorder.Order{}, false
	}
	return m.snap.Visible[i], true
}

// sync pulls a fresh snapshot from the desk and rebuilds the rows.
func (m *Model) sync() {
	m.snap = m.desk.Snapshot()
	rows := make([]table.Row, 0, len(m.snap.Visible))
	for _, o := range m.snap.Visible {
		rows = append(rows, orderRow(o, o.ID == m.snap.SelectedID))
	}
	m.table.SetRows(rows)
	switch c := m.table.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		m.table.SetCursor(0)
	case c >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	}
	m.resize()
}

func (m *Model) resize() {
	if m.height == 0 {
		return
	}
	h := m.height - chrome - m.detailHeight()
	if m.help.ShowAll {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
	m.table.SetWidth(m.width)
	m.help.Width = m.width
}
