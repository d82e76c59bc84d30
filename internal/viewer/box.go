package viewer

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// resized emits a resize signal for the boxed frame.
func (m Model) resized() tea.Cmd {
	if !m.opts.Boxed {
		return nil
	}
	return func() tea.Msg { return ResizedMsg{} }
}

// debounceResize restarts the settle timer; only the last signal in a burst re-measures.
func (m Model) debounceResize() (tea.Model, tea.Cmd) {
	if !m.opts.Boxed {
		return m, nil
	}
	m.resizeSeq++
	seq := m.resizeSeq
	return m, tea.Tick(ResizeDebounce, func(time.Time) tea.Msg { return boxSettleMsg{seq: seq} })
}

func (m Model) settleBox(msg boxSettleMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.resizeSeq {
		return m, nil
	}
	m.contentHeight = m.rows
	expandable := m.contentHeight >= m.opts.BoxThreshold
	if expandable != m.boxExpandable {
		m.logger.Debug("box", "height", m.contentHeight, "expandable", expandable)
	}
	m.boxExpandable = expandable
	if !expandable {
		m.boxExpanded = false
	}
	m.keys.Box.SetEnabled(expandable)
	m.layout()
	return m, nil
}
