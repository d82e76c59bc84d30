package value

import "math"

// Variant is the rendering variant chosen for a value.
type Variant int

const (
	VariantEmpty Variant = iota // null or undefined
	VariantArray
	VariantDate
	VariantRegExp
	VariantObject
	VariantNumber
	VariantString
	VariantBoolean
	VariantFunction
)

var variantNames = [...]string{
	VariantEmpty:    "undefined",
	VariantArray:    "array",
	VariantDate:     "date",
	VariantRegExp:   "regexp",
	VariantObject:   "object",
	VariantNumber:   "number",
	VariantString:   "string",
	VariantBoolean:  "boolean",
	VariantFunction: "function",
}

func (v Variant) String() string { return variantNames[v] }

// Complex reports whether the variant has children and an expand toggle.
func (v Variant) Complex() bool {
	return v == VariantArray || v == VariantObject
}

// Classify picks the rendering variant of v. The checks run in a fixed order and the first
// match wins: empty, array, date, regexp, object, number, string, boolean, function.
func Classify(v Value) Variant {
	switch {
	case v.kind == KindNull || v.kind == KindUndefined:
		return VariantEmpty
	case v.kind == KindArray:
		return VariantArray
	case v.kind == KindDate:
		return VariantDate
	case v.kind == KindRegExp:
		return VariantRegExp
	case v.kind == KindObject:
		return VariantObject
	case v.kind == KindNumber:
		return VariantNumber
	case v.kind == KindString:
		return VariantString
	case v.kind == KindBool:
		return VariantBoolean
	default:
		return VariantFunction
	}
}

// IsInteger reports whether a Number holds an integral value. It only affects styling.
func IsInteger(v Value) bool {
	if v.kind != KindNumber {
		return false
	}
	f := v.n
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}
