package value

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// isoLayout is the Date#toISOString layout.
const isoLayout = "2006-01-02T15:04:05.000Z"

// FormatNumber formats f the way JavaScript's Number#toString does: plain decimal notation for
// magnitudes in [1e-6, 1e21) and exponent notation otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	mant, expStr, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	exp, _ := strconv.Atoi(expStr)
	digits := strings.Replace(mant, ".", "", 1)
	k, n := len(digits), exp+1

	var out string
	switch {
	case k <= n && n <= 21:
		out = digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		out = digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		out = "0." + strings.Repeat("0", -n) + digits
	default:
		out = digits[:1]
		if k > 1 {
			out += "." + digits[1:]
		}
		e := n - 1
		if e < 0 {
			out += "e-" + strconv.Itoa(-e)
		} else {
			out += "e+" + strconv.Itoa(e)
		}
	}
	return sign + out
}

// Marshal is MarshalIndent without indentation.
func Marshal(v Value) (string, bool) {
	return MarshalIndent(v, "")
}

// MarshalIndent serializes v with JSON.stringify semantics: dates become ISO-8601 strings,
// regexps become {}, and undefined or function values are dropped from objects and written as
// null inside arrays. ok is false when v itself has no JSON form.
func MarshalIndent(v Value, indent string) (string, bool) {
	if omitted(v) {
		return "", false
	}
	var sb strings.Builder
	writeValue(&sb, v, indent, "")
	return sb.String(), true
}

func omitted(v Value) bool {
	return v.kind == KindUndefined || v.kind == KindFunction
}

func writeValue(sb *strings.Builder, v Value, indent, prefix string) {
	switch v.kind {
	case KindNull, KindUndefined, KindFunction:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			sb.WriteString("null")
			return
		}
		sb.WriteString(FormatNumber(v.n))
	case KindString:
		sb.WriteString(Quote(v.s))
	case KindDate:
		sb.WriteString(Quote(v.t.UTC().Format(isoLayout)))
	case KindRegExp:
		sb.WriteString("{}")
	case KindArray:
		writeArray(sb, v, indent, prefix)
	case KindObject:
		writeObject(sb, v, indent, prefix)
	}
}

func writeArray(sb *strings.Builder, v Value, indent, prefix string) {
	if len(v.items) == 0 {
		sb.WriteString("[]")
		return
	}
	inner := prefix + indent
	sb.WriteByte('[')
	for i, item := range v.items {
		if i > 0 {
			sb.WriteByte(',')
		}
		if indent != "" {
			sb.WriteString("\n" + inner)
		}
		writeValue(sb, item, indent, inner)
	}
	if indent != "" {
		sb.WriteString("\n" + prefix)
	}
	sb.WriteByte(']')
}

func writeObject(sb *strings.Builder, v Value, indent, prefix string) {
	inner := prefix + indent
	sep := ":"
	if indent != "" {
		sep = ": "
	}
	written := 0
	sb.WriteByte('{')
	for _, m := range v.members {
		if omitted(m.Value) {
			continue
		}
		if written > 0 {
			sb.WriteByte(',')
		}
		if indent != "" {
			sb.WriteString("\n" + inner)
		}
		sb.WriteString(Quote(m.Key))
		sb.WriteString(sep)
		writeValue(sb, m.Value, indent, inner)
		written++
	}
	if written > 0 && indent != "" {
		sb.WriteString("\n" + prefix)
	}
	sb.WriteByte('}')
}

// Quote returns s as a JSON string literal without HTML escaping.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
