package viewer

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsontree/internal/clipboard"
	"github.com/mcncl/jsontree/internal/render"
	"github.com/mcncl/jsontree/internal/value"
)

func sample() value.Value {
	return value.Object(
		value.M("a", value.Number(1)),
		value.M("b", value.Array(value.Number(1), value.Number(2), value.Number(3))),
	)
}

// drain runs cmd and every command it leads to, feeding the messages back into the model.
// Messages the model emits for a host are collected.
func drain(t *testing.T, m Model, cmd tea.Cmd) (Model, []tea.Msg) {
	t.Helper()
	var emitted []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 10000, "message loop did not settle")
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if msg == nil {
			continue
		}
		switch msg.(type) {
		case CopiedMsg, KeyClickedMsg:
			emitted = append(emitted, msg)
		}
		next, c2 := m.Update(msg)
		m = next.(Model)
		queue = append(queue, c2)
	}
	return m, emitted
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, []tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	return drain(t, next.(Model), cmd)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialRevealCompletes(t *testing.T) {
	m := New(sample(), Options{Render: render.DefaultConfig()})
	assert.Equal(t, "▾ {\n}", m.Text(), "nothing is revealed before the first step")

	m, _ = drain(t, m, m.Init())
	assert.Equal(t, "▾ {\n  a: 1,\n  ▸ b: [...]\n}", m.Text())
}

func TestToggle(t *testing.T) {
	m := New(sample(), Options{Render: render.DefaultConfig()})
	m, _ = drain(t, m, m.Init())
	before := m.Text()

	m, _ = send(t, m, ToggleMsg{Path: "$.b"})
	assert.Equal(t, "▾ {\n  a: 1,\n  ▾ b: [\n    1,\n    2,\n    3\n  ]\n}", m.Text())

	m, _ = send(t, m, ToggleMsg{Path: "$.b"})
	assert.Equal(t, before, m.Text())
}

func TestToggleWithKeyboard(t *testing.T) {
	m := New(sample(), Options{Render: render.DefaultConfig()})
	m, _ = drain(t, m, m.Init())

	m, _ = send(t, m, runes(" "))
	assert.Equal(t, "▸ {...}", m.Text())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "▾ {\n  a: 1,\n  ▸ b: [...]\n}", m.Text())
}

func TestCollapseUnmountsDescendants(t *testing.T) {
	v := value.Object(value.M("o", value.Object(value.M("p", value.Object(value.M("q", value.String("deep")))))))
	m := New(v, Options{Render: render.Config{ExpandDepth: 3}})
	m, _ = drain(t, m, m.Init())
	require.Contains(t, m.store.nodes, render.Path("$.o.p"))
	require.Contains(t, m.store.nodes, render.Path("$.o.p.q"))
	oldMount := m.store.nodes["$.o.p"].mount

	m, _ = send(t, m, ToggleMsg{Path: "$.o"})
	assert.NotContains(t, m.store.nodes, render.Path("$.o.p"))
	assert.NotContains(t, m.store.nodes, render.Path("$.o.p.q"))
	assert.Contains(t, m.store.nodes, render.Path("$.o"))

	m, _ = send(t, m, ToggleMsg{Path: "$.o"})
	require.Contains(t, m.store.nodes, render.Path("$.o.p"))
	assert.NotEqual(t, oldMount, m.store.nodes["$.o.p"].mount)
	assert.Contains(t, m.Text(), `q: "deep"`)
}

func TestStaleRevealIsDiscarded(t *testing.T) {
	m := New(sample(), Options{Render: render.DefaultConfig()})

	var stale []revealMsg
	var collect func(tea.Cmd)
	collect = func(c tea.Cmd) {
		if c == nil {
			return
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			for _, inner := range msg {
				collect(inner)
			}
		case revealMsg:
			stale = append(stale, msg)
		}
	}
	collect(m.Init())
	require.NotEmpty(t, stale)

	other := value.Array(value.String("x"), value.String("y"))
	m, cmd := m.SetRoot(other)
	before := m.Text()

	for _, msg := range stale {
		next, c := m.Update(msg)
		m = next.(Model)
		assert.Nil(t, c)
	}
	assert.Equal(t, before, m.Text())

	m, _ = drain(t, m, cmd)
	assert.Equal(t, "▾ [\n  \"x\",\n  \"y\"\n]", m.Text())
}

func TestCopyAcknowledgment(t *testing.T) {
	var writes []string
	copier := clipboard.MustNew(clipboard.Options{Write: func(s string) error {
		writes = append(writes, s)
		return nil
	}})
	m := New(sample(), Options{
		Render:    render.DefaultConfig(),
		Copyable:  &CopyOptions{Timeout: time.Hour},
		Clipboard: copier,
	})
	m, _ = drain(t, m, m.Init())

	// two triggers before the first result arrives
	next, first := m.Update(runes("c"))
	m = next.(Model)
	next, second := m.Update(runes("c"))
	m = next.(Model)
	require.NotNil(t, first)
	require.NotNil(t, second)

	var copied int
	for _, c := range []tea.Cmd{first, second} {
		next, ack := m.Update(c())
		m = next.(Model)
		if ack == nil {
			continue
		}
		batch := ack().(tea.BatchMsg)
		// the first command is the event; the second is the hour-long reset timer
		if _, ok := batch[0]().(CopiedMsg); ok {
			copied++
		}
	}
	assert.Equal(t, 1, copied)
	assert.True(t, m.Copied())
	assert.Contains(t, m.View(), "[copied!]")
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    1,\n    2,\n    3\n  ]\n}", writes[0])

	// a trigger while acknowledged is a no-op
	_, cmd := m.Update(runes("c"))
	assert.Nil(t, cmd)

	next, _ = m.Update(copyResetMsg{seq: m.copySeq})
	m = next.(Model)
	assert.False(t, m.Copied())
	assert.Contains(t, m.View(), "[copy]")
}

func TestCopyWithoutJSONForm(t *testing.T) {
	copier := clipboard.MustNew(clipboard.Options{Write: func(string) error { return nil }})
	m := New(value.Undefined(), Options{Copyable: &CopyOptions{}, Clipboard: copier})

	_, cmd := m.Update(runes("c"))
	assert.Nil(t, cmd)
}

func TestKeyClicked(t *testing.T) {
	m := New(sample(), Options{Render: render.DefaultConfig()})
	m, _ = drain(t, m, m.Init())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, KeyClickedMsg{Key: "a", Path: "$.a"}, cmd())

	// enter on the key-less root toggles it
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyHome})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "▸ {...}", m.Text())
}

func TestOverflowMeasurement(t *testing.T) {
	long := strings.Repeat("word ", 20)
	v := value.Object(value.M("s", value.String(long)), value.M("t", value.String("short")))
	m := New(v, Options{Render: render.DefaultConfig()})
	m, _ = drain(t, m, m.Init())
	assert.NotContains(t, m.Text(), "▾ s:", "no measurement before the width is known")

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Contains(t, m.Text(), `  ▾ s: "`+long+`",`)
	assert.Contains(t, m.Text(), `  t: "short"`)

	m, _ = send(t, m, ToggleMsg{Path: "$.s"})
	assert.Contains(t, m.Text(), "  ▸ s: ...,")

	// measurement is one-shot
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 400, Height: 20})
	assert.Contains(t, m.Text(), "  ▸ s: ...,")
}

func TestPreviewModeEllipsisOpens(t *testing.T) {
	m := New(sample(), Options{Render: render.Config{ExpandDepth: 5, PreviewMode: true}})
	m, _ = drain(t, m, m.Init())
	assert.Equal(t, "{...}", m.Text())

	m, _ = send(t, m, ToggleMsg{Path: "$"})
	assert.Equal(t, "{\n  a: 1,\n  b: [...]\n}", m.Text())

	// no caret, so an open node stays open
	m, _ = send(t, m, ToggleMsg{Path: "$"})
	assert.Equal(t, "{\n  a: 1,\n  b: [...]\n}", m.Text())
}

func TestBoxedFrame(t *testing.T) {
	items := make([]value.Value, 12)
	for i := range items {
		items[i] = value.Number(float64(i))
	}
	m := New(value.Array(items...), Options{
		Render:       render.DefaultConfig(),
		Boxed:        true,
		BoxThreshold: 10,
		BoxHeight:    4,
	})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 30})
	m, _ = drain(t, m, m.Init())

	require.True(t, m.BoxExpandable())
	assert.Equal(t, 4, m.viewport.Height)
	assert.Contains(t, m.View(), "▼ expand (b)")

	m, _ = send(t, m, runes("b"))
	assert.Greater(t, m.viewport.Height, 4)
	assert.Contains(t, m.View(), "▲ collapse (b)")

	// collapsing the root shrinks the content below the threshold
	m, _ = send(t, m, ToggleMsg{Path: "$"})
	assert.False(t, m.BoxExpandable())
}

func TestBoxedFrameStartsExpanded(t *testing.T) {
	items := make([]value.Value, 12)
	for i := range items {
		items[i] = value.Number(float64(i))
	}
	m := New(value.Array(items...), Options{
		Render:       render.DefaultConfig(),
		Boxed:        true,
		BoxExpanded:  true,
		BoxThreshold: 10,
		BoxHeight:    4,
	})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 40, Height: 30})
	m, _ = drain(t, m, m.Init())

	require.True(t, m.BoxExpandable())
	assert.True(t, m.BoxExpanded())
	assert.Greater(t, m.viewport.Height, 4)
	assert.Contains(t, m.View(), "▲ collapse (b)")

	m, _ = send(t, m, runes("b"))
	assert.False(t, m.BoxExpanded())
	assert.Equal(t, 4, m.viewport.Height)
}

func TestDebounceKeepsLastSignal(t *testing.T) {
	m := New(sample(), Options{Render: render.DefaultConfig(), Boxed: true, BoxThreshold: 1})
	next, _ := m.Update(ResizedMsg{})
	m = next.(Model)
	next, _ = m.Update(ResizedMsg{})
	m = next.(Model)

	next, _ = m.Update(boxSettleMsg{seq: m.resizeSeq - 1})
	m = next.(Model)
	assert.False(t, m.BoxExpandable(), "superseded signal must not settle")

	next, _ = m.Update(boxSettleMsg{seq: m.resizeSeq})
	m = next.(Model)
	assert.True(t, m.BoxExpandable())
}
