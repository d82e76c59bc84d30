// Package value defines the JSON-compatible value model rendered by the tree viewer.
//
// A Value is a tagged union over the ten kinds a viewer can display. Besides the six JSON kinds
// it carries Undefined, Date, RegExp and Function so host applications can hand the viewer
// values that never went through a JSON encoder. The zero Value is Undefined.
package value

import (
	"fmt"
	"regexp"
	"time"
)

// Kind identifies which member of the union a Value holds.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindDate
	KindRegExp
	KindArray
	KindObject
	KindFunction
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBool:      "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindDate:      "date",
	KindRegExp:    "regexp",
	KindArray:     "array",
	KindObject:    "object",
	KindFunction:  "function",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON-compatible value.
type Value struct {
	kind    Kind
	b       bool
	n       float64
	s       string
	t       time.Time
	re      *regexp.Regexp
	items   []Value
	members []Member
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, n: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Date returns a date value.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// RegExp returns a regular expression value. A nil pattern yields Null.
func RegExp(re *regexp.Regexp) Value {
	if re == nil {
		return Null()
	}
	return Value{kind: KindRegExp, re: re, s: re.String()}
}

// Function returns an opaque callable value described by its source text.
func Function(source string) Value { return Value{kind: KindFunction, s: source} }

// Array returns an array of the given items.
func Array(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindArray, items: cp}
}

// Object returns an object with members in the given order. A repeated key keeps its first
// position and takes the last value, as JSON.parse does.
func Object(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{kind: KindObject, members: out}
}

// M is shorthand for building a Member.
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

func (v Value) Kind() Kind { return v.kind }

// IsComposite reports whether v has children (Array or Object).
func (v Value) IsComposite() bool {
	return v.kind == KindArray || v.kind == KindObject
}

func (v Value) Bool() bool { return v.b }

func (v Value) Float() float64 { return v.n }

// Str returns the text of a String, the source of a RegExp or Function, and "" otherwise.
func (v Value) Str() string { return v.s }

func (v Value) Time() time.Time { return v.t }

func (v Value) Pattern() *regexp.Regexp { return v.re }

// Items returns the elements of an Array. The slice must not be modified.
func (v Value) Items() []Value { return v.items }

// Members returns the members of an Object in insertion order. The slice must not be modified.
func (v Value) Members() []Member { return v.members }

// Len returns the number of children of a composite value and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	}
	return 0
}

// Keys returns object keys in insertion order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Get returns the member value for key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep equality. Numbers compare by value, dates by instant, regexps by source.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString, KindRegExp, KindFunction:
		return a.s == b.s
	case KindDate:
		return a.t.Equal(b.t)
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for i := range a.members {
			if a.members[i].Key != b.members[i].Key || !Equal(a.members[i].Value, b.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
