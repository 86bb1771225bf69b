// Package browse provides the interactive Bubble Tea catalog browser.
package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cdshelf/internal/catalog"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	tableBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#4ECDC4"))
)

// Focus selects which widget receives keystrokes.
type Focus int

const (
	FocusSearch Focus = iota
	FocusTable
)

var columnWidths = []int{28, 20, 9, 14, 12, 8}

// ChangedMsg is delivered when the store reports a change.
type ChangedMsg struct {
	Event catalog.ChangeEvent
}

// changeFeed forwards store events to the program. At most one event is
// queued; a queued refresh reads the whole list anyway.
type changeFeed struct {
	mu     sync.Mutex
	ch     chan catalog.ChangeEvent
	closed bool
}

func newChangeFeed() *changeFeed {
	return &changeFeed{ch: make(chan catalog.ChangeEvent, 1)}
}

func (f *changeFeed) send(ev catalog.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- ev:
	default:
	}
}

// close releases any waitForChange receiver. Safe to call more than once.
func (f *changeFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// Model is the Bubble Tea model for the catalog browser.
type Model struct {
	ctx       context.Context
	store     *catalog.Store
	formatter *catalog.Formatter

	search  textinput.Model
	table   table.Model
	focus   Focus
	visible []catalog.Record

	pending *catalog.Record
	status  string
	err     error

	changes     *changeFeed
	unsubscribe func()

	width  int
	height int
}

// New builds a browser bound to store. Call Close when done to stop
// listening for store changes.
func New(ctx context.Context, store *catalog.Store, formatter *catalog.Formatter) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Placeholder = "Buscar por título, autor ou gênero"
	ti.Prompt = "/ "
	ti.CharLimit = 120
	ti.Width = 50
	ti.Focus()

	columns := make([]table.Column, len(catalog.Headers))
	for i, h := range catalog.Headers {
		columns[i] = table.Column{Title: h, Width: columnWidths[i]}
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#1A1A1A")).
		Background(lipgloss.Color("#4ECDC4"))
	tbl.SetStyles(styles)

	changes := newChangeFeed()
	unsubscribe := store.Subscribe(changes.send)

	m := Model{
		ctx:         ctx,
		store:       store,
		formatter:   formatter,
		search:      ti,
		table:       tbl,
		focus:       FocusSearch,
		changes:     changes,
		unsubscribe: unsubscribe,
	}
	m.refresh()
	return m
}

// Close stops listening for store changes and ends the pending wait.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	if m.changes != nil {
		m.changes.close()
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForChange(m.changes.ch))
}

func waitForChange(ch <-chan catalog.ChangeEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ChangedMsg{Event: ev}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if h := msg.Height - 12; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case ChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes.ch)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.pending != nil {
			return m.updateConfirm(msg)
		}
		if m.focus == FocusTable {
			return m.updateTable(msg)
		}
		return m.updateSearch(msg)
	}

	var cmd tea.Cmd
	if m.focus == FocusSearch {
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "enter", "down":
		m.setFocus(FocusTable)
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.refresh()
	}
	return m, cmd
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab", "/":
		m.setFocus(FocusSearch)
		return m, textinput.Blink
	case "f":
		m.toggleFavorite()
		return m, nil
	case "d":
		if rec, ok := m.Selected(); ok {
			m.pending = &rec
			m.status = ""
			m.err = nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "s":
		rec := *m.pending
		m.pending = nil
		if _, err := m.store.Delete(m.ctx, rec.ID); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("%q excluído", rec.Title)
		m.refresh()
	case "n", "esc":
		m.pending = nil
		m.status = "exclusão cancelada"
	}
	return m, nil
}

func (m *Model) toggleFavorite() {
	rec, ok := m.Selected()
	if !ok {
		return
	}
	rec.Favorite = !rec.Favorite
	if _, err := m.store.Update(m.ctx, rec.ID, rec); err != nil {
		m.err = err
		return
	}
	m.err = nil
	if rec.Favorite {
		m.status = fmt.Sprintf("%q marcado como favorito", rec.Title)
	} else {
		m.status = fmt.Sprintf("%q desmarcado como favorito", rec.Title)
	}
	m.refresh()
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	if f == FocusTable {
		m.search.Blur()
		m.table.Focus()
		return
	}
	m.table.Blur()
	m.search.Focus()
}

// refresh rebuilds the visible list, keeping the selected record when it is
// still visible.
func (m *Model) refresh() {
	selectedID := ""
	if rec, ok := m.Selected(); ok {
		selectedID = rec.ID
	}

	m.visible = m.store.DisplayList(m.search.Value())
	rows := make([]table.Row, len(m.visible))
	cursor := m.table.Cursor()
	for i, r := range m.visible {
		rows[i] = table.Row(m.formatter.Row(r))
		if r.ID == selectedID {
			cursor = i
		}
	}
	m.table.SetRows(rows)
	switch {
	case len(rows) == 0:
		cursor = 0
	case cursor >= len(rows):
		cursor = len(rows) - 1
	case cursor < 0:
		cursor = 0
	}
	m.table.SetCursor(cursor)
}

// Selected returns the record under the table cursor.
func (m Model) Selected() (catalog.Record, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return catalog.Record{}, false
	}
	return m.visible[i], true
}

// Visible returns the filtered, sorted list currently shown.
func (m Model) Visible() []catalog.Record {
	return m.visible
}

// Focused returns the widget receiving keystrokes.
func (m Model) Focused() Focus {
	return m.focus
}

// Pending returns the record awaiting delete confirmation, if any.
func (m Model) Pending() (catalog.Record, bool) {
	if m.pending == nil {
		return catalog.Record{}, false
	}
	return *m.pending, true
}

// Err returns the error from the last store operation, if any.
func (m Model) Err() error {
	return m.err
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cdshelf"))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	b.WriteString(tableBorderStyle.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Total de CDs: %d", len(m.visible))))
	b.WriteString("\n")

	switch {
	case m.pending != nil:
		b.WriteString(warningStyle.Render(fmt.Sprintf("Tem certeza que deseja excluir %q? (y/n)", m.pending.Title)))
	case m.err != nil:
		b.WriteString(errorStyle.Render(describeError(m.err)))
	case m.status != "":
		b.WriteString(successStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) helpText() string {
	switch {
	case m.pending != nil:
		return "y: confirmar • n/esc: cancelar"
	case m.focus == FocusTable:
		return "↑/↓: navegar • f: favorito • d: excluir • tab: buscar • q: sair"
	default:
		return "digite para filtrar • tab/enter: lista • esc: sair"
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "registro não encontrado (alterado em outro lugar?)"
	default:
		return "erro: " + err.Error()
	}
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, store *catalog.Store, formatter *catalog.Formatter) error {
	m := New(ctx, store, formatter)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
