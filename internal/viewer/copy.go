package viewer

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcncl/jsontree/internal/value"
)

// copy serializes the whole value and writes it to the clipboard off the event loop. A
// trigger while the acknowledgment is showing does nothing.
func (m Model) copy() (tea.Model, tea.Cmd) {
	if m.opts.Copyable == nil || m.copier == nil || m.copied {
		return m, nil
	}
	text, ok := value.MarshalIndent(m.root, "  ")
	if !ok || text == "" {
		m.logger.Debug("nothing to copy", "kind", m.root.Kind())
		return m, nil
	}

	copier := m.copier
	return m, func() tea.Msg {
		ev, ok := copier.Copy(text)
		return copyResultMsg{event: ev, ok: ok}
	}
}

func (m Model) copyResult(msg copyResultMsg) (tea.Model, tea.Cmd) {
	if !msg.ok {
		m.logger.Debug("copy failed")
		return m, nil
	}
	if m.copied {
		return m, nil
	}

	m.copied = true
	m.copySeq++
	seq := m.copySeq
	ev := msg.event
	m.layout()
	return m, tea.Batch(
		func() tea.Msg { return CopiedMsg{Event: ev} },
		tea.Tick(m.opts.Copyable.Timeout, func(time.Time) tea.Msg { return copyResetMsg{seq: seq} }),
	)
}
