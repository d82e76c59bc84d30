package viewer

import (
	"github.com/mcncl/jsontree/internal/clipboard"
	"github.com/mcncl/jsontree/internal/render"
	"github.com/mcncl/jsontree/internal/value"
)

// ToggleMsg asks the viewer to expand or collapse the node at Path. For a string that
// overflows it toggles the text instead.
type ToggleMsg struct {
	Path render.Path
}

// KeyClickedMsg reports that a member key label was activated.
type KeyClickedMsg struct {
	Key  string
	Path render.Path
}

// CopiedMsg reports a successful copy of the whole value.
type CopiedMsg struct {
	Event clipboard.Event
}

// ResizedMsg signals that the tree's rendered height may have changed.
type ResizedMsg struct{}

// SetRootMsg replaces the displayed value.
type SetRootMsg struct {
	Value value.Value
}

// revealMsg appends one more child to a composite.
type revealMsg struct {
	gen   uint64
	path  render.Path
	mount uint64
}

// measureMsg runs the one-shot overflow measurement of a string-like scalar.
type measureMsg struct {
	gen   uint64
	path  render.Path
	mount uint64
}

type copyResultMsg struct {
	event clipboard.Event
	ok    bool
}

type copyResetMsg struct {
	seq int
}

type boxSettleMsg struct {
	seq int
}
