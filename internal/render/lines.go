package render

import (
	"strings"
)

// Indent is the per-depth indentation of text output.
const Indent = "  "

// Caret glyphs for expanded and collapsed nodes.
const (
	CaretOpen   = "▾"
	CaretClosed = "▸"
)

// SegmentKind tells the styling layer what a segment shows.
type SegmentKind int

const (
	SegmentToggle SegmentKind = iota
	SegmentKey
	SegmentBracket
	SegmentEllipsis
	SegmentScalar
	SegmentComma
)

// Segment is one styled run of text on a line.
type Segment struct {
	Kind    SegmentKind
	Text    string
	Link    string
	Tooltip string
}

// Line is one display row of a rendered tree.
type Line struct {
	// Node owns the line. A composite's closing bracket sits on its own line with Closing set.
	Node     *Node
	Closing  bool
	Segments []Segment
}

// Indentation returns the leading whitespace of the line.
func (l Line) Indentation() string {
	return strings.Repeat(Indent, l.Node.Depth)
}

// String returns the line's plain text, indentation included.
func (l Line) String() string {
	var sb strings.Builder
	sb.WriteString(l.Indentation())
	for _, s := range l.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Lines flattens a rendered tree into display lines.
func Lines(root *Node) []Line {
	var lines []Line
	appendLines(&lines, root, true)
	return lines
}

// Text returns the visible text of a rendered tree.
func Text(root *Node) string {
	lines := Lines(root)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

func appendLines(lines *[]Line, n *Node, last bool) {
	head := Line{Node: n}
	if n.Toggle {
		caret := CaretClosed
		if n.Expanded {
			caret = CaretOpen
		}
		head.Segments = append(head.Segments, Segment{Kind: SegmentToggle, Text: caret + " "})
	}
	if n.Key.Valid {
		head.Segments = append(head.Segments, Segment{Kind: SegmentKey, Text: n.Key.Name + ": "})
	}

	if !n.Variant.Complex() {
		head.Segments = append(head.Segments, Segment{
			Kind:    SegmentScalar,
			Text:    n.Visible(),
			Link:    n.Link,
			Tooltip: n.Tooltip,
		})
		*lines = append(*lines, withComma(head, last))
		return
	}

	head.Segments = append(head.Segments, Segment{Kind: SegmentBracket, Text: n.Open})
	if !n.Expanded || n.Total == 0 {
		if n.Ellipsis {
			head.Segments = append(head.Segments, Segment{Kind: SegmentEllipsis, Text: "...", Tooltip: n.Tooltip})
		}
		head.Segments = append(head.Segments, Segment{Kind: SegmentBracket, Text: n.Close})
		*lines = append(*lines, withComma(head, last))
		return
	}

	*lines = append(*lines, head)
	for i, c := range n.Children {
		appendLines(lines, c, i == len(n.Children)-1)
	}
	tail := Line{Node: n, Closing: true, Segments: []Segment{{Kind: SegmentBracket, Text: n.Close}}}
	*lines = append(*lines, withComma(tail, last))
}

func withComma(l Line, last bool) Line {
	if !last {
		l.Segments = append(l.Segments, Segment{Kind: SegmentComma, Text: ","})
	}
	return l
}
