package render

import (
	"html"
	"strings"

	"github.com/mcncl/jsontree/internal/value"
)

// HTMLOptions controls the frame around an HTML rendering.
type HTMLOptions struct {
	Theme string
	// CopyLabel enables the copy button when non-empty.
	CopyLabel string
	// CopyText is the text carried by the copy button.
	CopyText string
	Boxed    bool
	// BoxExpanded starts a boxed frame expanded.
	BoxExpanded bool
}

// BoxThreshold is the content height, in pixels, at which a boxed frame offers to expand.
const BoxThreshold = 250

// Stylesheet styles the markup produced by HTML.
const Stylesheet = `.jv-container{box-sizing:border-box;position:relative;font-family:Consolas,Menlo,Courier,monospace;font-size:14px}
.jv-container.jv-light{background:#fff;color:#525252}
.jv-container.jv-dark{background:#282c34;color:#fff}
.jv-container.boxed .jv-code{max-height:300px;overflow:hidden;border:1px solid #eee;border-radius:6px}
.jv-container.boxed:has(.jv-more input:checked) .jv-code{max-height:none;overflow:visible}
.jv-more{display:block;text-align:center;cursor:pointer;color:#999;font-size:12px;padding:4px}
.jv-more input{display:none}
.jv-more span::after{content:"expand ▾"}
.jv-more input:checked+span::after{content:"collapse ▴"}
.jv-code{padding:10px 20px}
.jv-node{margin-left:1.25em;line-height:1.6}
.jv-code>.jv-node{margin-left:0}
summary{cursor:pointer;list-style:none}
summary::-webkit-details-marker{display:none}
summary.jv-toggle::before{content:"▸ ";color:#999}
details[open]>summary.jv-toggle::before{content:"▾ "}
details[open]>summary .jv-close,details[open]>summary .jv-ellipsis,details[open]>summary .jv-comma{display:none}
.jv-ellipsis{display:inline-block;background:#eee;color:#999;border-radius:3px;padding:0 4px;margin:0 2px;font-size:.9em;line-height:1}
.jv-light .jv-key{color:#111}
.jv-dark .jv-key{color:#fff}
.jv-string,.jv-date{color:#42b983;word-break:break-word;white-space:normal}
.jv-number,.jv-boolean{color:#fc1e70}
.jv-null,.jv-undefined{color:#e08331}
.jv-function{color:#067bca}
.jv-regexp{color:#c41a16}
.jv-link{color:inherit}
.jv-tooltip{position:absolute;right:15px;top:10px}
.jv-button{cursor:pointer;color:#49b3ff;font-size:12px}
`

// HTML renders a tree as an HTML fragment. Composites become details elements so the static
// page keeps expand and collapse. Children of collapsed composites are rendered in their
// initial state.
func HTML(root *Node, cfg Config, opts HTMLOptions) string {
	theme := opts.Theme
	if theme == "" {
		theme = "light"
	}

	var sb strings.Builder
	sb.WriteString(`<div class="jv-container jv-` + html.EscapeString(theme))
	if opts.Boxed {
		sb.WriteString(" boxed")
	}
	sb.WriteString(`">`)
	if opts.CopyLabel != "" {
		sb.WriteString(`<div class="jv-tooltip right"><span class="jv-button" data-clipboard-text="`)
		sb.WriteString(html.EscapeString(opts.CopyText))
		sb.WriteString(`">` + html.EscapeString(opts.CopyLabel) + `</span></div>`)
	}
	sb.WriteString(`<div class="jv-code">`)
	writeHTMLNode(&sb, root, cfg, true)
	sb.WriteString(`</div>`)
	if opts.Boxed {
		sb.WriteString(`<label class="jv-more"><input type="checkbox"`)
		if opts.BoxExpanded {
			sb.WriteString(` checked`)
		}
		sb.WriteString(`><span></span></label>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

func writeHTMLNode(sb *strings.Builder, n *Node, cfg Config, last bool) {
	if !n.Variant.Complex() {
		sb.WriteString(`<div class="jv-node">`)
		writeHTMLKey(sb, n)
		writeHTMLScalar(sb, n)
		writeHTMLComma(sb, last)
		sb.WriteString(`</div>`)
		return
	}

	class := "jv-item jv-" + n.Variant.String()
	sb.WriteString(`<details class="jv-node"`)
	if n.Expanded {
		sb.WriteString(` open`)
	}
	sb.WriteString(`><summary`)
	if n.Toggle {
		sb.WriteString(` class="jv-toggle"`)
	}
	sb.WriteString(`>`)
	writeHTMLKey(sb, n)
	sb.WriteString(`<span class="` + class + `">` + n.Open + `</span>`)

	if n.Total == 0 {
		sb.WriteString(`<span class="` + class + `">` + n.Close + `</span>`)
		writeHTMLComma(sb, last)
		sb.WriteString(`</summary></details>`)
		return
	}

	sb.WriteString(`<span class="jv-ellipsis" title="` + html.EscapeString(cfg.EllipsisTooltip(n.Value)) + `">...</span>`)
	sb.WriteString(`<span class="` + class + ` jv-close">` + n.Close + `</span>`)
	writeHTMLComma(sb, last)
	sb.WriteString(`</summary>`)

	children := cfg.Children(n.Value, n.Path)
	initial := Initial{Config: cfg}
	for i, c := range children {
		var child *Node
		if i < len(n.Children) {
			child = n.Children[i]
		} else {
			child = Render(c.Value, c.Key, c.Path, n.Depth+1, cfg, initial.Expanded(c.Path, n.Depth+1), initial)
		}
		writeHTMLNode(sb, child, cfg, i == len(children)-1)
	}

	sb.WriteString(`<span class="` + class + `">` + n.Close + `</span>`)
	writeHTMLComma(sb, last)
	sb.WriteString(`</details>`)
}

func writeHTMLKey(sb *strings.Builder, n *Node) {
	if n.Key.Valid {
		sb.WriteString(`<span class="jv-key">` + html.EscapeString(n.Key.Name) + `: </span>`)
	}
}

func writeHTMLScalar(sb *strings.Builder, n *Node) {
	class := "jv-item jv-" + n.Variant.String()
	switch n.Variant {
	case value.VariantEmpty:
		class = "jv-item jv-" + n.Text
	case value.VariantNumber:
		if n.Integer {
			class += " jv-number-integer"
		} else {
			class += " jv-number-float"
		}
	}

	sb.WriteString(`<span class="` + class + `"`)
	if n.Tooltip != "" {
		sb.WriteString(` title="` + html.EscapeString(n.Tooltip) + `"`)
	}
	sb.WriteString(`>`)
	switch {
	case n.Link != "" && n.Quoted:
		sb.WriteString(`&#34;`)
		writeHTMLLink(sb, n.Link)
		sb.WriteString(`&#34;`)
	case n.Link != "":
		writeHTMLLink(sb, n.Link)
	default:
		sb.WriteString(html.EscapeString(n.Text))
	}
	sb.WriteString(`</span>`)
}

func writeHTMLLink(sb *strings.Builder, link string) {
	l := html.EscapeString(link)
	sb.WriteString(`<a href="` + l + `" target="_blank" class="jv-link">` + l + `</a>`)
}

func writeHTMLComma(sb *strings.Builder, last bool) {
	if !last {
		sb.WriteString(`<span class="jv-comma">,</span>`)
	}
}
