package render

import (
	"sort"
	"time"
	"unicode/utf16"

	"github.com/mcncl/jsontree/internal/value"
)

// DefaultExpandDepth is the number of levels expanded when a tree first mounts.
const DefaultExpandDepth = 1

// Config is the immutable per-viewer rendering configuration shared by every node.
type Config struct {
	ExpandDepth   int
	SortKeys      bool
	PreviewMode   bool
	DateFormatter func(time.Time) string
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		ExpandDepth:   DefaultExpandDepth,
		DateFormatter: LocaleString,
	}
}

// LocaleString formats t like Date#toLocaleString in the en-US locale.
func LocaleString(t time.Time) string {
	return t.Local().Format("1/2/2006, 3:04:05 PM")
}

// InitiallyExpanded reports whether a node at depth starts expanded when it mounts.
func (c Config) InitiallyExpanded(depth int) bool {
	if c.PreviewMode {
		return false
	}
	return depth < c.ExpandDepth
}

func (c Config) formatDate(t time.Time) string {
	if c.DateFormatter == nil {
		return LocaleString(t)
	}
	return c.DateFormatter(t)
}

// Child is one child of a composite value, in display order.
type Child struct {
	Key   Key
	Path  Path
	Value value.Value
}

// Members returns the members of an object in display order. Members follow insertion order
// unless SortKeys is set, in which case keys are sorted by UTF-16 code units.
func (c Config) Members(v value.Value) []value.Member {
	members := v.Members()
	if !c.SortKeys {
		return members
	}
	members = append([]value.Member(nil), members...)
	sort.SliceStable(members, func(i, j int) bool { return keyLess(members[i].Key, members[j].Key) })
	return members
}

// keyLess orders keys the way a JavaScript string comparison does, which differs from byte
// order for characters outside the Basic Multilingual Plane.
func keyLess(a, b string) bool {
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}

// Children lists the children of a composite value at path in display order.
func (c Config) Children(v value.Value, path Path) []Child {
	switch v.Kind() {
	case value.KindArray:
		items := v.Items()
		out := make([]Child, len(items))
		for i, item := range items {
			out[i] = Child{Path: path.Index(i), Value: item}
		}
		return out
	case value.KindObject:
		members := c.Members(v)
		out := make([]Child, len(members))
		for i, m := range members {
			out[i] = Child{Key: KeyOf(m.Key), Path: path.Key(m.Key), Value: m.Value}
		}
		return out
	}
	return nil
}
