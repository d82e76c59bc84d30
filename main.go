package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/mcncl/jsontree/internal/config"
	"github.com/mcncl/jsontree/internal/errors"
	"github.com/mcncl/jsontree/internal/logging"
	"github.com/mcncl/jsontree/internal/markdown"
	"github.com/mcncl/jsontree/internal/parser"
	"github.com/mcncl/jsontree/internal/preview"
	"github.com/mcncl/jsontree/internal/render"
	"github.com/mcncl/jsontree/internal/value"
	"github.com/mcncl/jsontree/internal/viewer"
	"github.com/mcncl/jsontree/internal/watch"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Config      string `help:"Path to config file. Defaults to the nearest .jsontree.yml." short:"c" type:"path"`
	ExpandDepth int    `help:"Depth to which nodes start expanded." short:"e" default:"1"`
	Sort        bool   `help:"Sort object keys." short:"s"`
	PreviewMode bool   `help:"Hide carets; collapsed nodes open from their ellipsis."`
	Copyable    bool   `help:"Show the copy button." short:"C"`
	Theme       string `help:"Color theme." enum:"light,dark" default:"light"`
	Boxed       bool   `help:"Draw the tree in a frame that can be expanded when tall." short:"b"`
	DetectDates bool   `help:"Show ISO-8601 strings as dates."`
	Print       string `help:"Print the tree and exit instead of opening the viewer." short:"p" enum:",text,html" default:""`
	Markdown    string `help:"Render json-viewer blocks in a Markdown file to HTML and exit." short:"m" type:"path"`
	Serve       bool   `help:"Serve an HTML preview instead of opening the viewer."`
	Addr        string `help:"Preview server address."`
	Watch       bool   `help:"Reload the input file when it changes." short:"w"`
	LogFile     string `help:"Write logs to this file." type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
	WriteConfig string `help:"Write the default configuration to this path and exit." type:"path"`
}

// Context holds the runtime context
type Context struct {
	Debug     bool
	Overrides config.Overrides
	Stdin     *os.File
	Stdout    io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	kctx, err := parseArgs(os.Args[1:])
	if err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("jsontree version %s\n", Version)
		return
	}

	err = run(&Context{
		Debug:     CLI.Debug,
		Overrides: overrides(kctx),
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
	})
	if err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsontree --help\n")
		os.Exit(1)
	}
}

func parseArgs(args []string) (*kong.Context, error) {
	parser, err := kong.New(&CLI,
		kong.Name("jsontree"),
		kong.Description("An interactive, collapsible JSON tree viewer"),
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, err
	}
	return parser.Parse(args)
}

// overrides turns the flags given on the command line into config overrides. Flags left at
// their defaults do not override the config file.
func overrides(kctx *kong.Context) config.Overrides {
	given := map[string]bool{}
	for _, p := range kctx.Path {
		if p.Flag != nil {
			given[p.Flag.Name] = true
		}
	}

	var o config.Overrides
	if given["expand-depth"] {
		o.ExpandDepth = &CLI.ExpandDepth
	}
	if given["sort"] {
		o.SortKeys = &CLI.Sort
	}
	if given["preview-mode"] {
		o.PreviewMode = &CLI.PreviewMode
	}
	if given["theme"] {
		o.Theme = CLI.Theme
	}
	if given["copyable"] {
		o.Copyable = &CLI.Copyable
	}
	if given["boxed"] {
		o.Boxed = &CLI.Boxed
	}
	if given["detect-dates"] {
		o.DetectDates = &CLI.DetectDates
	}
	if given["debug"] {
		o.Debug = &CLI.Debug
	}
	o.Addr = CLI.Addr
	o.LogFile = CLI.LogFile
	return o
}

// run executes the main program logic
func run(ctx *Context) error {
	if CLI.WriteConfig != "" {
		if err := config.NewConfig().Save(CLI.WriteConfig); err != nil {
			return errors.NewOutputError("failed to write config", err)
		}
		fmt.Fprintf(os.Stderr, "Default configuration written to %s\n", CLI.WriteConfig)
		return nil
	}

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, ctx.Overrides)
	if err != nil {
		return errors.NewConfigError(err.Error(), err)
	}

	if CLI.Markdown != "" {
		return renderMarkdown(ctx, cfg)
	}

	root, err := parseInput(ctx, cfg)
	if err != nil {
		return err
	}

	switch {
	case CLI.Print != "":
		return printTree(ctx, cfg, root)
	case CLI.Serve:
		return serve(cfg, root)
	default:
		return view(ctx, cfg, root)
	}
}

func parserOptions(cfg *config.Config) parser.Options {
	return parser.Options{DetectDates: cfg.Parser.DetectDates}
}

// parseInput reads JSON from file or stdin
func parseInput(ctx *Context, cfg *config.Config) (value.Value, error) {
	p := parser.New(parserOptions(cfg))
	if CLI.Input != "" {
		return p.ParseFile(CLI.Input)
	}
	if CLI.Watch {
		return value.Value{}, errors.NewInputError("--watch needs an input file", errors.ErrNoInput)
	}

	// Check if stdin has data
	stdinInfo, err := ctx.Stdin.Stat()
	if err != nil {
		return value.Value{}, errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput(ctx, p)
		}
		return value.Value{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(ctx.Stdin)
	if err != nil {
		return value.Value{}, errors.NewInputError("failed to read from stdin", err)
	}
	if len(jsonData) == 0 {
		return value.Value{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return p.ParseString(string(jsonData))
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(ctx *Context, p *parser.Parser) (value.Value, error) {
	fmt.Fprintln(os.Stderr, "jsontree Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(ctx.Stdin)
	var jsonBuilder strings.Builder
	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return value.Value{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return value.Value{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}
	return p.ParseString(jsonData)
}

func htmlOptions(cfg *config.Config, root value.Value) render.HTMLOptions {
	opts := render.HTMLOptions{
		Theme:       cfg.Viewer.Theme,
		Boxed:       cfg.Box.Enabled,
		BoxExpanded: cfg.Box.Expanded,
	}
	if cfg.Copy.Enabled {
		if text, ok := value.MarshalIndent(root, "  "); ok {
			opts.CopyLabel = cfg.Copy.CopyText
			opts.CopyText = text
		}
	}
	return opts
}

// printTree writes the initial tree as text or as an HTML fragment
func printTree(ctx *Context, cfg *config.Config, root value.Value) error {
	rc := cfg.Render()
	tree := render.Tree(root, rc, render.Initial{Config: rc})

	var out string
	switch CLI.Print {
	case "html":
		out = "<style>\n" + render.Stylesheet + "</style>\n" + render.HTML(tree, rc, htmlOptions(cfg, root))
	default:
		out = render.Text(tree)
	}
	if _, err := fmt.Fprintln(ctx.Stdout, out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

func renderMarkdown(ctx *Context, cfg *config.Config) error {
	src, err := os.ReadFile(CLI.Markdown)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("failed to read '%s'", CLI.Markdown), err)
	}
	opts := markdown.Options{Render: cfg.Render(), Theme: cfg.Viewer.Theme}
	if err := markdown.Convert(src, ctx.Stdout, opts); err != nil {
		return errors.NewRenderError("failed to render markdown", err)
	}
	return nil
}

func newLogger(cfg *config.Config, toFile bool) (*log.Logger, func() error, error) {
	opts := logging.Options{Level: cfg.Dev.LogLevel, File: cfg.Dev.LogFile}
	if toFile && opts.File == "" {
		// the viewer owns the terminal
		return logging.Discard(), func() error { return nil }, nil
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return nil, nil, errors.NewConfigError(err.Error(), err)
	}
	return logger, closer, nil
}

func serve(cfg *config.Config, root value.Value) error {
	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	title := "jsontree"
	if CLI.Input != "" {
		title = filepath.Base(CLI.Input)
	}
	srv := preview.New(root, preview.Options{
		Render:      cfg.Render(),
		HTML:        htmlOptions(cfg, root),
		CopiedLabel: cfg.Copy.CopiedText,
		CopyTimeout: cfg.Copy.Timeout,
		Title:       title,
		AllowAll:    cfg.Preview.AllowAll,
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if CLI.Watch {
		go func() {
			err := watch.Watch(ctx, CLI.Input, watch.Options{Parser: parserOptions(cfg), Logger: logger}, func(v value.Value, err error) {
				if err == nil {
					srv.SetRoot(v)
				}
			})
			if err != nil {
				logger.Error("watch", "err", err)
			}
		}()
	}

	fmt.Fprintf(os.Stderr, "Serving %s on http://%s\n", title, cfg.Preview.Addr)
	if err := srv.ListenAndServe(ctx, cfg.Preview.Addr); err != nil {
		return errors.NewOutputError("preview server failed", err)
	}
	return nil
}

func view(ctx *Context, cfg *config.Config, root value.Value) error {
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	opts := viewer.Options{
		Render:       cfg.Render(),
		Theme:        viewer.Theme(cfg.Viewer.Theme),
		Boxed:        cfg.Box.Enabled,
		BoxExpanded:  cfg.Box.Expanded,
		BoxThreshold: cfg.Box.Threshold,
		BoxHeight:    cfg.Box.Height,
		Logger:       logger,
	}
	if cfg.Copy.Enabled {
		opts.Copyable = &viewer.CopyOptions{
			CopyText:   cfg.Copy.CopyText,
			CopiedText: cfg.Copy.CopiedText,
			Timeout:    cfg.Copy.Timeout,
			Align:      cfg.Copy.Align,
		}
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if CLI.Input == "" {
		// stdin carried the document; keys come from the terminal
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(viewer.New(root, opts), programOpts...)

	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if CLI.Watch {
		go func() {
			err := watch.Watch(watchCtx, CLI.Input, watch.Options{Parser: parserOptions(cfg), Logger: logger}, func(v value.Value, err error) {
				if err == nil {
					p.Send(viewer.SetRootMsg{Value: v})
				}
			})
			if err != nil {
				logger.Error("watch", "err", err)
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return errors.NewRenderError("viewer failed", err)
	}
	return nil
}
