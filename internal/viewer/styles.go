package viewer

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mcncl/jsontree/internal/value"
)

// Theme selects a color palette.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type styles struct {
	Key      lipgloss.Style
	Bracket  lipgloss.Style
	Toggle   lipgloss.Style
	Ellipsis lipgloss.Style
	Comma    lipgloss.Style

	String   lipgloss.Style
	Number   lipgloss.Style
	Boolean  lipgloss.Style
	Empty    lipgloss.Style
	Function lipgloss.Style
	RegExp   lipgloss.Style
	Link     lipgloss.Style

	Cursor lipgloss.Style
	Button lipgloss.Style
	Status lipgloss.Style
	Frame  lipgloss.Style
	More   lipgloss.Style
}

func newStyles(theme Theme) styles {
	key := lipgloss.Color("#111111")
	bracket := lipgloss.Color("#525252")
	if theme == ThemeDark {
		key = lipgloss.Color("#FFFFFF")
		bracket = lipgloss.Color("#ABB2BF")
	}

	return styles{
		Key:      lipgloss.NewStyle().Foreground(key),
		Bracket:  lipgloss.NewStyle().Foreground(bracket),
		Toggle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")),
		Ellipsis: lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")).Background(lipgloss.Color("#EEEEEE")),
		Comma:    lipgloss.NewStyle().Foreground(bracket),

		String:   lipgloss.NewStyle().Foreground(lipgloss.Color("#42B983")),
		Number:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FC1E70")),
		Boolean:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FC1E70")),
		Empty:    lipgloss.NewStyle().Foreground(lipgloss.Color("#E08331")),
		Function: lipgloss.NewStyle().Foreground(lipgloss.Color("#067BCA")),
		RegExp:   lipgloss.NewStyle().Foreground(lipgloss.Color("#C41A16")),
		Link:     lipgloss.NewStyle().Foreground(lipgloss.Color("#42B983")).Underline(true),

		Cursor: lipgloss.NewStyle().Reverse(true),
		Button: lipgloss.NewStyle().Foreground(lipgloss.Color("#49B3FF")),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color("#AEAFAD")),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		More: lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
	}
}

func (s styles) scalar(v value.Variant, integer bool) lipgloss.Style {
	switch v {
	case value.VariantString, value.VariantDate:
		return s.String
	case value.VariantNumber:
		if integer {
			return s.Number
		}
		return s.Number.Italic(true)
	case value.VariantBoolean:
		return s.Boolean
	case value.VariantEmpty:
		return s.Empty
	case value.VariantFunction:
		return s.Function
	case value.VariantRegExp:
		return s.RegExp
	}
	return lipgloss.NewStyle()
}
