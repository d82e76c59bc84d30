// Package viewer is the interactive terminal tree viewer.
package viewer

import (
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/mcncl/jsontree/internal/clipboard"
	"github.com/mcncl/jsontree/internal/logging"
	"github.com/mcncl/jsontree/internal/render"
	"github.com/mcncl/jsontree/internal/value"
)

// Model is the bubbletea model of one viewer.
type Model struct {
	opts   Options
	keys   keyMap
	help   help.Model
	styles styles
	logger *log.Logger
	copier *clipboard.Copier

	root  value.Value
	gen   uint64
	store *store
	tree  *render.Node
	lines []render.Line

	cursor   int
	width    int
	height   int
	viewport viewport.Model
	rowStart []int
	rows     int

	copied  bool
	copySeq int

	resizeSeq     int
	contentHeight int
	boxExpandable bool
	boxExpanded   bool
}

// New creates a viewer showing root.
func New(root value.Value, opts Options) Model {
	opts = opts.withDefaults()

	m := Model{
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		styles:   newStyles(opts.Theme),
		logger:   opts.Logger,
		copier:   opts.Clipboard,
		viewport: viewport.New(0, 0),
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if m.copier == nil && opts.Copyable != nil {
		m.copier = clipboard.MustNew(clipboard.Options{Output: os.Stdout, Logger: m.logger})
	}
	m.keys.Copy.SetEnabled(opts.Copyable != nil)
	m.keys.Box.SetEnabled(false)
	m.boxExpanded = opts.BoxExpanded

	m.reset(root)
	return m
}

// Init starts the reveal of the initial tree.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.pendingCmds(), m.resized())
}

// SetRoot replaces the displayed value. Node state is discarded and continuations scheduled
// for the previous value are ignored.
func (m Model) SetRoot(v value.Value) (Model, tea.Cmd) {
	m.reset(v)
	return m, tea.Batch(m.pendingCmds(), m.resized())
}

func (m *Model) reset(v value.Value) {
	m.gen++
	m.root = v
	m.store = newStore(m.opts.Render)
	m.cursor = 0
	m.viewport.SetYOffset(0)
	m.rebuild()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, tea.Batch(m.remeasure(), m.resized())

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ToggleMsg:
		return m.toggle(msg.Path)

	case SetRootMsg:
		return m.SetRoot(msg.Value)

	case revealMsg:
		return m.reveal(msg)

	case measureMsg:
		return m.measure(msg)

	case copyResultMsg:
		return m.copyResult(msg)

	case copyResetMsg:
		if msg.seq == m.copySeq {
			m.copied = false
			m.layout()
		}
		return m, nil

	case ResizedMsg:
		return m.debounceResize()

	case boxSettleMsg:
		return m.settleBox(msg)

	case KeyClickedMsg:
		m.logger.Info("key clicked", "key", msg.Key, "path", msg.Path)
		return m, nil

	case CopiedMsg:
		m.logger.Info("copied", "id", msg.Event.ID, "bytes", len(msg.Event.Text))
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.viewport.Height)
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.viewport.Height)
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-len(m.lines))
	case key.Matches(msg, m.keys.End):
		m.moveCursor(len(m.lines))
	case key.Matches(msg, m.keys.Toggle):
		if n := m.current(); n != nil {
			return m.toggle(n.Path)
		}
	case key.Matches(msg, m.keys.Activate):
		return m.activate()
	case key.Matches(msg, m.keys.Copy):
		return m.copy()
	case key.Matches(msg, m.keys.Box):
		if m.boxExpandable {
			m.boxExpanded = !m.boxExpanded
			m.layout()
		}
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.layout()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) current() *render.Node {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return nil
	}
	return m.lines[m.cursor].Node
}

// activate emits KeyClickedMsg for a member, or toggles a key-less composite.
func (m Model) activate() (tea.Model, tea.Cmd) {
	n := m.current()
	if n == nil {
		return m, nil
	}
	if n.Key.Valid {
		clicked := KeyClickedMsg{Key: n.Key.Name, Path: n.Path}
		return m, func() tea.Msg { return clicked }
	}
	if n.Variant.Complex() {
		return m.toggle(n.Path)
	}
	return m, nil
}

func (m Model) toggle(p render.Path) (tea.Model, tea.Cmd) {
	n := m.tree.Find(p)
	if n == nil {
		return m, nil
	}
	st, ok := m.store.nodes[p]
	if !ok {
		return m, nil
	}

	switch {
	case n.Variant.Complex():
		// preview mode has no carets; only the ellipsis can open a node
		if !n.Toggle && !n.Ellipsis {
			return m, nil
		}
		st.expanded = !st.expanded
		if !st.expanded {
			dropped := m.store.unmountBelow(p)
			m.logger.Debug("collapsed", "path", p, "unmounted", dropped)
		}
	case n.Measurable() && st.canOverflow:
		st.stringExpanded = !st.stringExpanded
	default:
		return m, nil
	}

	m.rebuild()
	return m, tea.Batch(m.pendingCmds(), m.resized())
}

// rebuild re-renders the tree from the store and lays it out.
func (m *Model) rebuild() {
	m.tree = render.Tree(m.root, m.opts.Render, m.store)
	m.lines = render.Lines(m.tree)
	m.clampCursor()
	m.layout()
}

// Text returns the plain text of the tree as currently shown.
func (m Model) Text() string {
	return render.Text(m.tree)
}

// Copied reports whether the copied acknowledgment is showing.
func (m Model) Copied() bool { return m.copied }

// BoxExpandable reports whether the boxed frame offers to expand.
func (m Model) BoxExpandable() bool { return m.boxExpandable }

// BoxExpanded reports whether the boxed frame is expanded.
func (m Model) BoxExpanded() bool { return m.boxExpanded }
