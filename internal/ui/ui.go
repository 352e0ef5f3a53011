package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/seisiun/tunelog/internal/clipboard"
	"github.com/seisiun/tunelog/internal/document"
	"github.com/seisiun/tunelog/internal/models"
	"github.com/seisiun/tunelog/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SetListView ViewState = iota
	PillListView
)

// noticeLog collects reconciler notifications.
type noticeLog struct {
	mu   sync.Mutex
	last string
}

func (n *noticeLog) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last = message
}

func (n *noticeLog) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// Model represents the TUI application state.
//
// It is also the selection and cursor collaborator of the clipboard
// reconciler: whatever the highlight rests on is what copy and cut take, and
// pastes land relative to it.
type Model struct {
	ctx         context.Context
	view        ViewState
	manager     *document.Manager
	rec         *clipboard.Reconciler
	notices     *noticeLog
	width       int
	height      int
	setList     list.Model
	pillList    list.Model
	selectedSet int
	status      string
	help        help.Model
	keys        keyMap
}

// pasteDoneMsg carries a settled match batch back to the update loop, where
// it is applied. The command goroutine itself never mutates the document.
type pasteDoneMsg struct {
	batch  *clipboard.PasteBatch
	result clipboard.PasteResult
}

var (
	_ clipboard.Selection = (*Model)(nil)
	_ clipboard.Cursor    = (*Model)(nil)
)

// NewModel creates a new TUI model editing the given manager's document.
func NewModel(ctx context.Context, manager *document.Manager, board clipboard.Board, matcher services.Matcher, logger *log.Logger) *Model {
	m := &Model{
		ctx:     ctx,
		view:    SetListView,
		manager: manager,
		notices: &noticeLog{},
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.rec = clipboard.NewReconciler(clipboard.Opts{
		Manager:   manager,
		Selection: m,
		Cursor:    m,
		Board:     board,
		Matcher:   matcher,
		Notifier:  m.notices,
		Logger:    logger,
	})
	m.setList = newList("Tune Sets")
	m.pillList = newList("")
	m.refresh()
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Selected implements [clipboard.Selection]: the highlighted set in the set
// view, or the single highlighted pill in the pill view.
func (m *Model) Selected() ([]models.TuneSet, bool) {
	doc := m.manager.Document()
	switch m.view {
	case SetListView:
		i := m.setList.Index()
		if i < 0 || i >= len(doc) {
			return nil, false
		}
		return []models.TuneSet{doc[i]}, true
	case PillListView:
		if m.selectedSet >= len(doc) {
			return nil, false
		}
		set := doc[m.selectedSet]
		j := m.pillList.Index()
		if j < 0 || j >= len(set) {
			return nil, false
		}
		return []models.TuneSet{{set[j]}}, true
	}
	return nil, false
}

// Position implements [clipboard.Cursor]: pastes land after the highlighted
// set or pill.
func (m *Model) Position() (models.Position, bool) {
	switch m.view {
	case SetListView:
		i := m.setList.Index()
		if i < 0 {
			return models.Position{}, false
		}
		return models.Position{SetIndex: i + 1, Relation: models.NewSet}, true
	case PillListView:
		j := m.pillList.Index()
		if j < 0 {
			return models.Position{}, false
		}
		return models.Position{SetIndex: m.selectedSet, PillIndex: j, Relation: models.After}, true
	}
	return models.Position{}, false
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.setList.SetSize(msg.Width-4, msg.Height-8)
		m.pillList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case pasteDoneMsg:
		msg.batch.Apply(msg.result)
		m.status = m.notices.Last()
		m.refresh()
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.enter):
		if m.view == SetListView {
			if i := m.setList.Index(); i >= 0 && i < m.manager.SetCount() {
				m.selectedSet = i
				m.view = PillListView
				m.refresh()
			}
			return m, nil
		}

	case key.Matches(msg, m.keys.back):
		if m.view == PillListView {
			m.view = SetListView
			m.refresh()
			return m, nil
		}

	case key.Matches(msg, m.keys.copy):
		m.finish(m.rec.Copy())
		return m, nil

	case key.Matches(msg, m.keys.cut):
		m.finish(m.rec.Cut())
		return m, nil

	case key.Matches(msg, m.keys.paste):
		return m.startPaste()

	case key.Matches(msg, m.keys.del):
		m.finish(m.removeHighlighted())
		return m, nil

	case key.Matches(msg, m.keys.undo):
		if err := m.manager.Undo(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Undid 1 change"
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.redo):
		if err := m.manager.Redo(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Redid 1 change"
		}
		m.refresh()
		return m, nil
	}

	return m.updateLists(msg)
}

// finish absorbs the outcome of a synchronous clipboard or edit operation.
func (m *Model) finish(err error) {
	if err != nil {
		m.status = err.Error()
	} else {
		m.status = m.notices.Last()
	}
	m.refresh()
}

// startPaste applies the structural splice on the update loop. Only the match
// batch, which touches no document state, runs on a command goroutine; its
// settled result comes back as a pasteDoneMsg and is applied here.
func (m *Model) startPaste() (tea.Model, tea.Cmd) {
	batch, err := m.rec.PasteStaged()
	if err != nil {
		m.status = err.Error()
		m.refresh()
		return m, nil
	}
	m.refresh()

	if !batch.Pending() {
		m.status = m.notices.Last()
		return m, nil
	}

	m.status = "Matching pasted tunes…"
	return m, func() tea.Msg {
		return pasteDoneMsg{batch: batch, result: batch.Resolve(m.ctx)}
	}
}

func (m *Model) removeHighlighted() error {
	switch m.view {
	case SetListView:
		return m.manager.RemoveSet(m.setList.Index())
	case PillListView:
		return m.manager.RemovePill(m.selectedSet, m.pillList.Index())
	}
	return nil
}

// refresh rebuilds both lists from the manager's current document, keeping
// the highlight in place where possible.
func (m *Model) refresh() {
	doc := m.manager.Document()

	setItems := make([]list.Item, len(doc))
	for i, set := range doc {
		setItems[i] = setItem{index: i, set: set}
	}
	cursor := m.setList.Index()
	m.setList.SetItems(setItems)
	if cursor >= len(setItems) {
		cursor = len(setItems) - 1
	}
	if cursor >= 0 {
		m.setList.Select(cursor)
	}

	if m.selectedSet >= len(doc) {
		m.selectedSet = 0
		m.view = SetListView
	}
	if m.selectedSet < len(doc) {
		set := doc[m.selectedSet]
		pillItems := make([]list.Item, len(set))
		for j, pill := range set {
			pillItems[j] = pillItem{pill: pill}
		}
		cursor := m.pillList.Index()
		m.pillList.SetItems(pillItems)
		m.pillList.Title = fmt.Sprintf("Set %d", m.selectedSet+1)
		if cursor >= len(pillItems) {
			cursor = len(pillItems) - 1
		}
		if cursor >= 0 {
			m.pillList.Select(cursor)
		}
	}
	if m.width > 0 {
		m.setList.SetSize(m.width-4, m.height-8)
		m.pillList.SetSize(m.width-4, m.height-8)
	}
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SetListView:
		m.setList, cmd = m.setList.Update(msg)
	case PillListView:
		m.pillList, cmd = m.pillList.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SetListView:
		body = m.setList.View()
	case PillListView:
		body = m.pillList.View()
	}

	status := m.status
	if status != "" {
		status = styles.ok.Render(status)
	}

	helpKeys := []key.Binding{m.keys.copy, m.keys.cut, m.keys.paste, m.keys.undo, m.keys.redo, m.keys.quit}
	if m.view == SetListView {
		helpKeys = append([]key.Binding{m.keys.enter}, helpKeys...)
	} else {
		helpKeys = append([]key.Binding{m.keys.back}, helpKeys...)
	}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", body, status, helpView)
}
