package viewer

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/mcncl/jsontree/internal/clipboard"
	"github.com/mcncl/jsontree/internal/render"
)

const (
	DefaultBoxThreshold = 250
	DefaultBoxHeight    = 20
	DefaultCopyTimeout  = 2 * time.Second

	// ResizeDebounce is how long the boxed frame waits for resize signals to settle.
	ResizeDebounce = 200 * time.Millisecond
)

// CopyOptions enables the copy affordance.
type CopyOptions struct {
	CopyText   string
	CopiedText string
	// Timeout is how long the copied acknowledgment stays up.
	Timeout time.Duration
	// Align places the button: left or right.
	Align string
}

// Options configures a viewer.
type Options struct {
	Render render.Config
	Theme  Theme

	// Copyable enables copying the whole value when non-nil.
	Copyable *CopyOptions
	// Clipboard overrides the system clipboard copier.
	Clipboard *clipboard.Copier

	Boxed bool
	// BoxExpanded starts the boxed frame expanded.
	BoxExpanded bool
	// BoxThreshold is the content height, in rows, at which the frame offers to expand.
	BoxThreshold int
	// BoxHeight limits the frame while it is not expanded.
	BoxHeight int

	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Theme == "" {
		o.Theme = ThemeLight
	}
	if o.Render.DateFormatter == nil {
		o.Render.DateFormatter = render.LocaleString
	}
	if o.BoxThreshold <= 0 {
		o.BoxThreshold = DefaultBoxThreshold
	}
	if o.BoxHeight <= 0 {
		o.BoxHeight = DefaultBoxHeight
	}
	if o.Copyable != nil {
		c := *o.Copyable
		if c.CopyText == "" {
			c.CopyText = "copy"
		}
		if c.CopiedText == "" {
			c.CopiedText = "copied!"
		}
		if c.Timeout <= 0 {
			c.Timeout = DefaultCopyTimeout
		}
		if c.Align == "" {
			c.Align = "right"
		}
		o.Copyable = &c
	}
	return o
}
