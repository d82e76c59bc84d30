// Package clipboard copies text to the system clipboard, falling back to an OSC 52 terminal
// sequence when no system clipboard is available.
package clipboard

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mcncl/jsontree/internal/errors"
)

// Action is what a copy trigger does with the text.
type Action string

const (
	ActionCopy Action = "copy"
	ActionCut  Action = "cut"
)

// Target is a text-bearing element a Copier reads from instead of the text passed to Copy.
type Target struct {
	Text     string
	Disabled bool
	ReadOnly bool
}

// Options configures a Copier.
type Options struct {
	// Action defaults to ActionCopy.
	Action Action
	Target *Target
	// Output receives the OSC 52 fallback sequence. Nil disables the fallback.
	Output io.Writer
	// Write replaces the system clipboard. Defaults to atotto/clipboard.
	Write  func(string) error
	Logger *log.Logger
}

// Event describes a successful copy.
type Event struct {
	ID     string
	Action Action
	Text   string
	Time   time.Time
}

// Copier performs copy and cut actions.
type Copier struct {
	action Action
	target *Target
	output io.Writer
	write  func(string) error
	logger *log.Logger
}

// New validates opts and returns a Copier. Setup errors are returned, never deferred to Copy.
func New(opts Options) (*Copier, error) {
	action := opts.Action
	if action == "" {
		action = ActionCopy
	}
	if action != ActionCopy && action != ActionCut {
		return nil, errors.NewClipboardError(
			fmt.Sprintf(`action must be either "copy" or "cut", got %q`, action),
			errors.ErrInvalidAction,
		)
	}

	if t := opts.Target; t != nil {
		if action == ActionCopy && t.Disabled {
			return nil, errors.NewClipboardError(
				`cannot copy from a disabled target, use a non-disabled element`,
				errors.ErrInvalidTarget,
			)
		}
		if action == ActionCut && (t.Disabled || t.ReadOnly) {
			return nil, errors.NewClipboardError(
				`cannot cut from a disabled or read-only target`,
				errors.ErrInvalidTarget,
			)
		}
	}

	c := &Copier{
		action: action,
		target: opts.Target,
		output: opts.Output,
		write:  opts.Write,
		logger: opts.Logger,
	}
	if c.write == nil {
		c.write = systemWrite
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c, nil
}

// MustNew is like New but panics on invalid options.
func MustNew(opts Options) *Copier {
	c, err := New(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Action returns the configured action.
func (c *Copier) Action() Action { return c.action }

// Copy writes text to the clipboard. With a target, the target's text is used and a cut
// clears it. Failures are logged and reported as false; empty text is never copied.
func (c *Copier) Copy(text string) (Event, bool) {
	if c.target != nil {
		text = c.target.Text
	}
	if text == "" {
		return Event{}, false
	}

	if err := c.write(text); err != nil {
		c.logger.Debug("system clipboard unavailable", "err", err)
		if !c.fallback(text) {
			return Event{}, false
		}
	}

	if c.action == ActionCut && c.target != nil {
		c.target.Text = ""
	}
	return Event{
		ID:     uuid.NewString(),
		Action: c.action,
		Text:   text,
		Time:   time.Now(),
	}, true
}

func (c *Copier) fallback(text string) bool {
	if c.output == nil {
		return false
	}
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if os.Getenv("STY") != "" {
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(c.output); err != nil {
		c.logger.Debug("osc52 write failed", "err", err)
		return false
	}
	return true
}

func systemWrite(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility found")
	}
	return clipboard.WriteAll(text)
}
