package render

import (
	"regexp"

	"github.com/mcncl/jsontree/internal/value"
)

// FunctionGlyph is shown in place of a function value.
const FunctionGlyph = "<function>"

var linkPattern = regexp.MustCompile(`^([hH][tT]{2}[pP]://|[hH][tT]{2}[pP][sS]://)(([A-Za-z0-9\-~]+)\.)+([A-Za-z0-9\-~/])+$`)

// IsLink reports whether s is shown as a clickable link.
func IsLink(s string) bool {
	return linkPattern.MatchString(s)
}

func renderScalar(n *Node, v value.Value, cfg Config, st State) {
	switch n.Variant {
	case value.VariantEmpty:
		if v.Kind() == value.KindNull {
			n.Text = "null"
		} else {
			n.Text = "undefined"
		}
	case value.VariantNumber:
		n.Text = value.FormatNumber(v.Float())
		n.Integer = value.IsInteger(v)
	case value.VariantBoolean:
		if v.Bool() {
			n.Text = "true"
		} else {
			n.Text = "false"
		}
	case value.VariantDate:
		n.Text = `"` + cfg.formatDate(v.Time()) + `"`
		n.Quoted = true
	case value.VariantString:
		n.Text = `"` + v.Str() + `"`
		n.Quoted = true
		if IsLink(v.Str()) {
			n.Link = v.Str()
		}
		n.Overflow = st.Overflow(n.Path)
	case value.VariantRegExp:
		n.Text = "/" + v.Str() + "/"
		if IsLink(n.Text) {
			n.Link = n.Text
		}
		n.Overflow = st.Overflow(n.Path)
	case value.VariantFunction:
		n.Text = FunctionGlyph
		n.Tooltip = v.Str()
	}
	n.Toggle = n.Overflow.CanOverflow
	n.Expanded = !n.Overflow.Collapsed
}

// Visible returns the scalar text as currently shown, honoring a collapsed overflow.
func (n *Node) Visible() string {
	if n.Overflow.CanOverflow && n.Overflow.Collapsed {
		return "..."
	}
	return n.Text
}

// Measurable reports whether the node is a string-like scalar subject to overflow measurement.
func (n *Node) Measurable() bool {
	return n.Variant == value.VariantString || n.Variant == value.VariantRegExp
}
