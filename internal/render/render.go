// Package render turns value trees into display nodes. Rendering is pure: everything that
// changes between frames comes in through State, and the viewer feeds change requests back
// as messages.
package render

import (
	"fmt"
	"strings"

	"github.com/mcncl/jsontree/internal/value"
)

// Key is an optional member key label.
type Key struct {
	Name  string
	Valid bool
}

// KeyOf returns a present key label.
func KeyOf(name string) Key { return Key{Name: name, Valid: true} }

// NoKey is the absent key label of the root and of array elements.
var NoKey = Key{}

// Node is one rendered value.
type Node struct {
	Path    Path
	Depth   int
	Variant value.Variant
	Key     Key

	// Toggle is set when the node shows an expand/collapse caret.
	Toggle   bool
	Expanded bool

	Open, Close string
	// Ellipsis is shown in place of hidden content.
	Ellipsis bool
	// Tooltip is the hover text for the ellipsis, or the source of a function.
	Tooltip string

	// Total is the number of children the composite value holds.
	Total    int
	Children []*Node

	Text     string
	Quoted   bool
	Integer  bool
	Link     string
	Overflow Overflow

	Value value.Value
}

// Tree renders a whole value from the root.
func Tree(v value.Value, cfg Config, st State) *Node {
	return Render(v, NoKey, Root, 0, cfg, st.Expanded(Root, 0), st)
}

// Render renders v at path and depth. expanded applies to composites only; children read
// their own expansion from st.
func Render(v value.Value, key Key, path Path, depth int, cfg Config, expanded bool, st State) *Node {
	n := &Node{
		Path:    path,
		Depth:   depth,
		Variant: value.Classify(v),
		Key:     key,
		Value:   v,
	}

	if n.Variant.Complex() {
		renderComposite(n, v, cfg, expanded, st)
	} else {
		renderScalar(n, v, cfg, st)
	}
	return n
}

func renderComposite(n *Node, v value.Value, cfg Config, expanded bool, st State) {
	n.Toggle = !cfg.PreviewMode
	n.Expanded = expanded
	n.Total = v.Len()
	if n.Variant == value.VariantArray {
		n.Open, n.Close = "[", "]"
	} else {
		n.Open, n.Close = "{", "}"
	}

	if !expanded {
		if n.Total > 0 {
			n.Ellipsis = true
			n.Tooltip = cfg.EllipsisTooltip(v)
		}
		return
	}

	children := cfg.Children(v, n.Path)
	shown := st.Revealed(n.Path, len(children))
	if shown > len(children) {
		shown = len(children)
	}
	n.Children = make([]*Node, 0, shown)
	for _, c := range children[:shown] {
		n.Children = append(n.Children, Render(c.Value, c.Key, c.Path, n.Depth+1, cfg, st.Expanded(c.Path, n.Depth+1), st))
	}
}

// EllipsisTooltip is the hover text of a collapsed, non-empty composite. Object keys are
// listed in display order.
func (c Config) EllipsisTooltip(v value.Value) string {
	if v.Kind() == value.KindArray {
		return fmt.Sprintf("click to reveal %d hidden items", v.Len())
	}
	members := c.Members(v)
	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = m.Key
	}
	return fmt.Sprintf("click to reveal object content (keys: %s)", strings.Join(keys, ", "))
}

// Find returns the node at path within the rendered tree rooted at n.
func (n *Node) Find(path Path) *Node {
	if n.Path == path {
		return n
	}
	if !n.Path.Contains(path) {
		return nil
	}
	for _, c := range n.Children {
		if found := c.Find(path); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits n and every rendered descendant in display order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
