// Package markdown renders json-viewer fenced code blocks in Markdown documents as
// collapsible JSON trees.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/mcncl/jsontree/internal/parser"
	"github.com/mcncl/jsontree/internal/render"
	"github.com/mcncl/jsontree/internal/value"
)

// Language is the fence info word that selects the tree renderer.
const Language = "json-viewer"

// Options are the defaults for every block. Fence attributes override them per block.
type Options struct {
	Render render.Config
	Theme  string
	// Style is the chroma style used for other fenced blocks.
	Style string
}

// NewExtension returns a goldmark extension rendering json-viewer blocks.
func NewExtension(opts Options) goldmark.Extender {
	return &extender{opts: opts}
}

// New returns a Markdown converter with GFM, syntax highlighting and json-viewer blocks.
func New(opts Options) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			NewExtension(opts),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
}

// Convert renders src to w, preceded by the tree stylesheet.
func Convert(src []byte, w io.Writer, opts Options) error {
	if _, err := io.WriteString(w, "<style>\n"+render.Stylesheet+"</style>\n"); err != nil {
		return err
	}
	return New(opts).Convert(src, w)
}

type extender struct {
	opts Options
}

func (e *extender) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(newBlockRenderer(e.opts), 100),
	))
}

// funcs captures the functions a node renderer registers.
type funcs map[ast.NodeKind]renderer.NodeRendererFunc

func (f funcs) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) { f[kind] = fn }

type blockRenderer struct {
	opts     Options
	fallback renderer.NodeRendererFunc
	// failed marks blocks that fell back on entering so their exit falls back too.
	failed sync.Map
}

func newBlockRenderer(opts Options) *blockRenderer {
	if opts.Style == "" {
		opts.Style = "github"
	}
	captured := funcs{}
	highlighting.NewHTMLRenderer(highlighting.WithStyle(opts.Style)).RegisterFuncs(captured)
	return &blockRenderer{opts: opts, fallback: captured[ast.KindFencedCodeBlock]}
}

func (r *blockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *blockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.FencedCodeBlock)
	if string(n.Language(source)) != Language {
		return r.fallback(w, source, node, entering)
	}
	if !entering {
		if _, failed := r.failed.LoadAndDelete(n); failed {
			return r.fallback(w, source, node, entering)
		}
		return ast.WalkContinue, nil
	}

	var body bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		body.Write(seg.Value(source))
	}

	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	block := parseAttributes(info, r.opts)

	root, err := parser.New(parser.Options{DetectDates: block.detectDates}).ParseString(body.String())
	if err != nil {
		r.failed.Store(n, true)
		_, _ = fmt.Fprintf(w, "<!-- %s: %s -->\n", Language, html.EscapeString(err.Error()))
		return r.fallback(w, source, node, entering)
	}

	hopts := render.HTMLOptions{Theme: block.theme, Boxed: block.boxed, BoxExpanded: block.expanded}
	if block.copyable {
		if text, ok := value.MarshalIndent(root, "  "); ok {
			hopts.CopyLabel = "copy"
			hopts.CopyText = text
		}
	}
	tree := render.Tree(root, block.cfg, render.Initial{Config: block.cfg})
	_, _ = w.WriteString(render.HTML(tree, block.cfg, hopts))
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

type blockOptions struct {
	cfg         render.Config
	theme       string
	boxed       bool
	expanded    bool
	copyable    bool
	detectDates bool
}

// parseAttributes reads fence attributes such as
//
//	```json-viewer expand-depth=2 sort boxed copyable theme=dark
//
// expanded implies boxed and starts the frame open.
func parseAttributes(info string, defaults Options) blockOptions {
	b := blockOptions{cfg: defaults.Render, theme: defaults.Theme}
	if b.cfg.DateFormatter == nil {
		b.cfg.DateFormatter = render.LocaleString
	}

	fields := strings.Fields(info)
	if len(fields) > 0 {
		fields = fields[1:]
	}
	for _, f := range fields {
		name, val, _ := strings.Cut(f, "=")
		val = strings.Trim(val, `"'`)
		switch name {
		case "expand-depth":
			if d, err := strconv.Atoi(val); err == nil && d >= 0 {
				b.cfg.ExpandDepth = d
			}
		case "sort":
			b.cfg.SortKeys = true
		case "preview":
			b.cfg.PreviewMode = true
		case "boxed":
			b.boxed = true
		case "expanded":
			b.boxed = true
			b.expanded = true
		case "copyable":
			b.copyable = true
		case "dates":
			b.detectDates = true
		case "theme":
			b.theme = val
		}
	}
	return b
}
