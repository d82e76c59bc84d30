package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsontree/internal/render"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a double
// underscore: JSONTREE_VIEWER__EXPAND_DEPTH=2.
const EnvPrefix = "JSONTREE_"

// Config represents the complete configuration for jsontree
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Copy    CopyConfig    `yaml:"copy"`
	Box     BoxConfig     `yaml:"box"`
	Parser  ParserConfig  `yaml:"parser"`
	Preview PreviewConfig `yaml:"preview"`
	Dev     DevConfig     `yaml:"dev"`
}

// ViewerConfig controls how the tree is rendered
type ViewerConfig struct {
	ExpandDepth int    `yaml:"expand_depth"`
	SortKeys    bool   `yaml:"sort_keys"`
	PreviewMode bool   `yaml:"preview_mode"`
	Theme       string `yaml:"theme"`
	// DateFormat is a Go time layout. Empty uses the en-US locale format.
	DateFormat string `yaml:"date_format"`
}

// CopyConfig controls the copy-to-clipboard affordance
type CopyConfig struct {
	Enabled    bool          `yaml:"enabled"`
	CopyText   string        `yaml:"copy_text"`
	CopiedText string        `yaml:"copied_text"`
	Timeout    time.Duration `yaml:"timeout"`
	Align      string        `yaml:"align"`
}

// BoxConfig controls the boxed frame
type BoxConfig struct {
	Enabled   bool `yaml:"enabled"`
	// Expanded starts the frame expanded.
	Expanded  bool `yaml:"expanded"`
	Threshold int  `yaml:"threshold"`
	Height    int  `yaml:"height"`
}

// ParserConfig controls how input becomes a value tree
type ParserConfig struct {
	DetectDates bool `yaml:"detect_dates"`
}

// PreviewConfig controls the HTML preview server
type PreviewConfig struct {
	Addr string `yaml:"addr"`
	// AllowAll accepts cross-origin requests from any origin.
	AllowAll bool `yaml:"allow_all"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Viewer: ViewerConfig{
			ExpandDepth: render.DefaultExpandDepth,
			Theme:       "light",
		},
		Copy: CopyConfig{
			Enabled:    false,
			CopyText:   "copy",
			CopiedText: "copied!",
			Timeout:    2 * time.Second,
			Align:      "right",
		},
		Box: BoxConfig{
			Enabled:   false,
			Threshold: 250,
			Height:    20,
		},
		Preview: PreviewConfig{
			Addr: "127.0.0.1:8080",
		},
		Dev: DevConfig{
			LogLevel: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file and overlays JSONTREE_* environment
// variables. An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	// Start with defaults
	cfg := NewConfig()

	if path != "" {
		fp := file.Provider(path)
		if _, err := fp.ReadBytes(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(fp, kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// envKey maps JSONTREE_COPY__COPIED_TEXT to copy.copied_text.
func envKey(s string) string {
	parts := strings.Split(strings.TrimPrefix(s, EnvPrefix), "__")
	for i, p := range parts {
		parts[i] = strcase.ToSnake(p)
	}
	return strings.Join(parts, ".")
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsontree.yml", ".jsontree.yaml", "jsontree.yml", "jsontree.yaml"}

	// Start from current directory
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

var (
	validThemes    = map[string]bool{"light": true, "dark": true}
	validAligns    = map[string]bool{"left": true, "right": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Viewer.ExpandDepth < 0 {
		return fmt.Errorf("viewer.expand_depth must be non-negative")
	}
	if !validThemes[c.Viewer.Theme] {
		return fmt.Errorf("invalid viewer.theme %q: must be light or dark", c.Viewer.Theme)
	}
	if c.Copy.Timeout < 0 {
		return fmt.Errorf("copy.timeout must be non-negative")
	}
	if !validAligns[c.Copy.Align] {
		return fmt.Errorf("invalid copy.align %q: must be left or right", c.Copy.Align)
	}
	if c.Box.Threshold < 0 || c.Box.Height < 0 {
		return fmt.Errorf("box.threshold and box.height must be non-negative")
	}
	if c.Dev.LogLevel != "" && !validLogLevels[c.Dev.LogLevel] {
		return fmt.Errorf("invalid dev.log_level %q", c.Dev.LogLevel)
	}
	return nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}
	return nil
}

// Render returns the rendering configuration shared by every node.
func (c *Config) Render() render.Config {
	rc := render.Config{
		ExpandDepth:   c.Viewer.ExpandDepth,
		SortKeys:      c.Viewer.SortKeys,
		PreviewMode:   c.Viewer.PreviewMode,
		DateFormatter: render.LocaleString,
	}
	if layout := c.Viewer.DateFormat; layout != "" {
		rc.DateFormatter = func(t time.Time) string { return t.Local().Format(layout) }
	}
	return rc
}

// Overrides holds values given on the command line. Nil pointers and empty strings were not
// given and leave the loaded value alone.
type Overrides struct {
	ExpandDepth *int
	SortKeys    *bool
	PreviewMode *bool
	Theme       string
	Copyable    *bool
	Boxed       *bool
	DetectDates *bool
	Addr        string
	Debug       *bool
	LogFile     string
}

// MergeOverrides merges CLI overrides into a base config
func MergeOverrides(base *Config, o Overrides) *Config {
	merged := *base // Start with a copy of base

	if o.ExpandDepth != nil {
		merged.Viewer.ExpandDepth = *o.ExpandDepth
	}
	if o.SortKeys != nil {
		merged.Viewer.SortKeys = *o.SortKeys
	}
	if o.PreviewMode != nil {
		merged.Viewer.PreviewMode = *o.PreviewMode
	}
	if o.Theme != "" {
		merged.Viewer.Theme = o.Theme
	}
	if o.Copyable != nil {
		merged.Copy.Enabled = *o.Copyable
	}
	if o.Boxed != nil {
		merged.Box.Enabled = *o.Boxed
	}
	if o.DetectDates != nil {
		merged.Parser.DetectDates = *o.DetectDates
	}
	if o.Addr != "" {
		merged.Preview.Addr = o.Addr
	}
	if o.Debug != nil {
		merged.Dev.Debug = *o.Debug
		if *o.Debug {
			merged.Dev.LogLevel = "debug"
		}
	}
	if o.LogFile != "" {
		merged.Dev.LogFile = o.LogFile
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence: CLI > environment > file >
// defaults.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	merged := MergeOverrides(cfg, o)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
