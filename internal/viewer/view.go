package viewer

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mcncl/jsontree/internal/render"
)

// treeWidth is the number of columns available to tree lines. Zero means unknown.
func (m Model) treeWidth() int {
	w := m.width
	if m.opts.Boxed {
		w -= m.styles.Frame.GetHorizontalFrameSize()
	}
	if m.width > 0 && w < 1 {
		w = 1
	}
	return w
}

func (m Model) chromeHeight() int {
	h := lipgloss.Height(m.help.View(m.keys)) + 1 // status line
	if m.opts.Copyable != nil {
		h++
	}
	if m.opts.Boxed {
		h += m.styles.Frame.GetVerticalFrameSize()
		if m.boxExpandable {
			h++
		}
	}
	return h
}

// layout renders the lines into the viewport, wrapping them to the available width.
func (m *Model) layout() {
	width := m.treeWidth()
	m.rowStart = make([]int, len(m.lines))
	rendered := make([]string, len(m.lines))
	row := 0
	for i, l := range m.lines {
		m.rowStart[i] = row
		s := m.renderLine(l, i == m.cursor)
		if width > 0 {
			s = ansi.Hardwrap(s, width, true)
		}
		rendered[i] = s
		row += strings.Count(s, "\n") + 1
	}
	m.rows = row

	height := m.height - m.chromeHeight()
	if m.opts.Boxed && !m.boxExpanded && height > m.opts.BoxHeight {
		height = m.opts.BoxHeight
	}
	if height < 1 {
		height = 1
	}
	m.viewport.Width = width
	m.viewport.Height = height
	m.viewport.SetContent(strings.Join(rendered, "\n"))
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	if len(m.rowStart) == 0 {
		return
	}
	top := m.rowStart[m.cursor]
	bottom := m.rows
	if m.cursor+1 < len(m.rowStart) {
		bottom = m.rowStart[m.cursor+1]
	}
	switch {
	case top < m.viewport.YOffset:
		m.viewport.SetYOffset(top)
	case bottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

func (m Model) renderLine(l render.Line, selected bool) string {
	if selected {
		return m.styles.Cursor.Render(l.String())
	}

	var sb strings.Builder
	sb.WriteString(l.Indentation())
	for _, seg := range l.Segments {
		switch seg.Kind {
		case render.SegmentToggle:
			sb.WriteString(m.styles.Toggle.Render(seg.Text))
		case render.SegmentKey:
			sb.WriteString(m.styles.Key.Render(seg.Text))
		case render.SegmentBracket, render.SegmentComma:
			sb.WriteString(m.styles.Bracket.Render(seg.Text))
		case render.SegmentEllipsis:
			sb.WriteString(m.styles.Ellipsis.Render(seg.Text))
		case render.SegmentScalar:
			if seg.Link != "" {
				sb.WriteString(ansi.SetHyperlink(seg.Link))
				sb.WriteString(m.styles.Link.Render(seg.Text))
				sb.WriteString(ansi.ResetHyperlink())
				continue
			}
			sb.WriteString(m.styles.scalar(l.Node.Variant, l.Node.Integer).Render(seg.Text))
		}
	}
	return sb.String()
}

// status describes the line under the cursor: its path and any tooltip.
func (m Model) status() string {
	if m.cursor >= len(m.lines) {
		return ""
	}
	l := m.lines[m.cursor]
	parts := []string{string(l.Node.Path)}
	for _, seg := range l.Segments {
		if seg.Tooltip != "" {
			parts = append(parts, seg.Tooltip)
		}
		if seg.Link != "" {
			parts = append(parts, seg.Link)
		}
	}
	return strings.Join(parts, "  ")
}

// View renders the viewer.
func (m Model) View() string {
	var sections []string

	if c := m.opts.Copyable; c != nil {
		label := c.CopyText
		if m.copied {
			label = c.CopiedText
		}
		button := m.styles.Button.Render("[" + label + "]")
		pos := lipgloss.Right
		if c.Align == "left" {
			pos = lipgloss.Left
		}
		sections = append(sections, lipgloss.PlaceHorizontal(m.width, pos, button))
	}

	tree := m.viewport.View()
	if m.opts.Boxed {
		tree = m.styles.Frame.Render(tree)
	}
	sections = append(sections, tree)

	if m.opts.Boxed && m.boxExpandable {
		more := "▼ expand (b)"
		if m.boxExpanded {
			more = "▲ collapse (b)"
		}
		sections = append(sections, m.styles.More.Render(more))
	}

	sections = append(sections, m.styles.Status.Render(ansi.Truncate(m.status(), m.width, "…")))
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
