package viewer

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/mcncl/jsontree/internal/render"
)

// pendingCmds schedules reveal and measurement for nodes mounted since the last call.
func (m Model) pendingCmds() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.store.drainMounted() {
		st, ok := m.store.nodes[p]
		if !ok {
			continue
		}
		n := m.tree.Find(p)
		if n == nil {
			continue
		}
		switch {
		case n.Variant.Complex():
			st.total = n.Total
			if st.revealed < st.total {
				cmds = append(cmds, m.revealCmd(p, st.mount))
			}
		case n.Measurable() && !st.measured:
			cmds = append(cmds, m.measureCmd(p, st.mount))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) revealCmd(p render.Path, mount uint64) tea.Cmd {
	msg := revealMsg{gen: m.gen, path: p, mount: mount}
	return func() tea.Msg { return msg }
}

func (m Model) measureCmd(p render.Path, mount uint64) tea.Cmd {
	msg := measureMsg{gen: m.gen, path: p, mount: mount}
	return func() tea.Msg { return msg }
}

// reveal appends one child and schedules the next step. Steps from an older root or an
// unmounted node are dropped.
func (m Model) reveal(msg revealMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen {
		m.logger.Debug("stale reveal", "path", msg.path, "gen", msg.gen)
		return m, nil
	}
	st, ok := m.store.lookup(msg.path, msg.mount)
	if !ok || st.revealed >= st.total {
		return m, nil
	}

	st.revealed++
	var next tea.Cmd
	if st.revealed < st.total {
		next = m.revealCmd(msg.path, msg.mount)
	}

	// collapsed nodes keep revealing without a redraw
	if n := m.tree.Find(msg.path); n == nil || !n.Expanded {
		return m, next
	}
	m.rebuild()
	return m, tea.Batch(m.pendingCmds(), next, m.resized())
}

// measure decides once whether a string needs more than one row. Without a known width the
// node stays unmeasured until the first window size arrives.
func (m Model) measure(msg measureMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || m.width <= 0 {
		return m, nil
	}
	st, ok := m.store.lookup(msg.path, msg.mount)
	if !ok || st.measured {
		return m, nil
	}
	st.measured = true

	for _, l := range m.lines {
		if l.Node.Path != msg.path || l.Closing {
			continue
		}
		if ansi.StringWidth(l.String()) > m.treeWidth() {
			st.canOverflow = true
			m.rebuild()
			return m, m.resized()
		}
		break
	}
	return m, nil
}

// remeasure schedules measurement of every visible string still unmeasured.
func (m Model) remeasure() tea.Cmd {
	var cmds []tea.Cmd
	m.tree.Walk(func(n *render.Node) {
		if !n.Measurable() {
			return
		}
		if st, ok := m.store.nodes[n.Path]; ok && !st.measured {
			cmds = append(cmds, m.measureCmd(n.Path, st.mount))
		}
	})
	return tea.Batch(cmds...)
}
