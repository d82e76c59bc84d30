package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mcncl/jsontree/internal/value"
)

// Path addresses a node from the root: $, $.a, $.b[2], $["odd key"].
type Path string

// Root is the path of the root node.
const Root Path = "$"

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Key returns the path of the member named k.
func (p Path) Key(k string) Path {
	if identifier.MatchString(k) {
		return p + Path("."+k)
	}
	return p + Path("["+value.Quote(k)+"]")
}

// Index returns the path of the i-th element.
func (p Path) Index(i int) Path {
	return p + Path("["+strconv.Itoa(i)+"]")
}

// Contains reports whether q is p or lies below p.
func (p Path) Contains(q Path) bool {
	if p == q {
		return true
	}
	if !strings.HasPrefix(string(q), string(p)) {
		return false
	}
	next := q[len(p)]
	return next == '.' || next == '['
}

func (p Path) String() string { return string(p) }
