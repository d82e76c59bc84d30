package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", pattern)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	_ = tmpFile.Close()
	return tmpFile.Name()
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	// Test default values
	assert.Equal(t, 1, cfg.Viewer.ExpandDepth)
	assert.False(t, cfg.Viewer.SortKeys)
	assert.False(t, cfg.Viewer.PreviewMode)
	assert.Equal(t, "light", cfg.Viewer.Theme)
	assert.Equal(t, "copy", cfg.Copy.CopyText)
	assert.Equal(t, "copied!", cfg.Copy.CopiedText)
	assert.Equal(t, 2*time.Second, cfg.Copy.Timeout)
	assert.Equal(t, 250, cfg.Box.Threshold)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
viewer:
  expand_depth: 3
  sort_keys: true
  theme: dark
  date_format: "2006-01-02"
copy:
  enabled: true
  copied_text: "done"
  timeout: 500ms
box:
  enabled: true
  expanded: true
  threshold: 40
parser:
  detect_dates: true
`
	path := writeTemp(t, "config_test_*.yml", yamlContent)

	// Load config
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Verify values
	assert.Equal(t, 3, cfg.Viewer.ExpandDepth)
	assert.True(t, cfg.Viewer.SortKeys)
	assert.Equal(t, "dark", cfg.Viewer.Theme)
	assert.True(t, cfg.Copy.Enabled)
	assert.Equal(t, "done", cfg.Copy.CopiedText)
	assert.Equal(t, 500*time.Millisecond, cfg.Copy.Timeout)
	assert.True(t, cfg.Box.Enabled)
	assert.True(t, cfg.Box.Expanded)
	assert.Equal(t, 40, cfg.Box.Threshold)
	assert.True(t, cfg.Parser.DetectDates)

	// Unset keys keep their defaults
	assert.Equal(t, "copy", cfg.Copy.CopyText)
	assert.Equal(t, 20, cfg.Box.Height)

	rc := cfg.Render()
	assert.Equal(t, 3, rc.ExpandDepth)
	assert.True(t, rc.SortKeys)
	assert.Equal(t, "2023-05-20", rc.DateFormatter(time.Date(2023, 5, 20, 12, 0, 0, 0, time.Local)))
}

func TestConfig_EnvOverrides(t *testing.T) {
	path := writeTemp(t, "env_test_*.yml", "viewer:\n  expand_depth: 3\n")
	t.Setenv("JSONTREE_VIEWER__EXPAND_DEPTH", "5")
	t.Setenv("JSONTREE_COPY__COPIED_TEXT", "yes")
	t.Setenv("JSONTREE_COPY__TIMEOUT", "1s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Viewer.ExpandDepth)
	assert.Equal(t, "yes", cfg.Copy.CopiedText)
	assert.Equal(t, time.Second, cfg.Copy.Timeout)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "viewer.expand_depth", envKey("JSONTREE_VIEWER__EXPAND_DEPTH"))
	assert.Equal(t, "dev.debug", envKey("JSONTREE_DEV__DEBUG"))
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	invalidYAML := `
viewer:
  theme: "dark"
invalid_yaml: [unclosed array
`
	path := writeTemp(t, "invalid_*.yml", invalidYAML)

	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative depth", func(c *Config) { c.Viewer.ExpandDepth = -1 }, "expand_depth"},
		{"bad theme", func(c *Config) { c.Viewer.Theme = "solarized" }, "theme"},
		{"negative timeout", func(c *Config) { c.Copy.Timeout = -time.Second }, "timeout"},
		{"bad align", func(c *Config) { c.Copy.Align = "center" }, "align"},
		{"negative box", func(c *Config) { c.Box.Height = -2 }, "box"},
		{"bad log level", func(c *Config) { c.Dev.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jsontree.yml")

	cfg := NewConfig()
	cfg.Viewer.Theme = "dark"
	cfg.Box.Threshold = 99
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_FindConfigFile(t *testing.T) {
	// Create temp directory structure
	tmpDir, err := os.MkdirTemp("", "config_search_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	// Create nested directory
	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	err = os.MkdirAll(nestedDir, 0o755)
	require.NoError(t, err)

	// Create config file in project root
	configPath := filepath.Join(tmpDir, "project", ".jsontree.yml")
	configContent := "viewer:\n  theme: dark\n"
	err = os.WriteFile(configPath, []byte(configContent), 0o644)
	require.NoError(t, err)

	// Change to nested directory
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(nestedDir)
	require.NoError(t, err)

	// Find config file - should find it in parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	// Verify it's the same file by reading content
	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), "theme: dark")
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	// Create temp directory with no config
	tmpDir, err := os.MkdirTemp("", "no_config_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	// Should not find config file
	foundPath := FindConfigFile()
	assert.Empty(t, foundPath)
}

func TestConfig_MergeOverrides(t *testing.T) {
	base := NewConfig()
	base.Viewer.Theme = "dark"
	base.Viewer.ExpandDepth = 4

	depth := 0
	yes := true
	merged := MergeOverrides(base, Overrides{
		ExpandDepth: &depth,
		Boxed:       &yes,
		Debug:       &yes,
	})

	// Verify CLI overrides took precedence
	assert.Equal(t, 0, merged.Viewer.ExpandDepth)
	assert.True(t, merged.Box.Enabled)
	assert.True(t, merged.Dev.Debug)
	assert.Equal(t, "debug", merged.Dev.LogLevel)
	// Kept from base
	assert.Equal(t, "dark", merged.Viewer.Theme)
	// Base untouched
	assert.Equal(t, 4, base.Viewer.ExpandDepth)
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	path := writeTemp(t, "precedence_test_*.yml", "viewer:\n  theme: dark\n  expand_depth: 2\n")

	cfg, err := LoadConfigWithCLI(path, Overrides{Theme: "light"})
	require.NoError(t, err)

	// Verify precedence: CLI > config file > defaults
	assert.Equal(t, "light", cfg.Viewer.Theme)
	assert.Equal(t, 2, cfg.Viewer.ExpandDepth)
	assert.Equal(t, "copy", cfg.Copy.CopyText)
}

func TestLoadConfigWithPrecedence_Invalid(t *testing.T) {
	_, err := LoadConfigWithCLI("", Overrides{Theme: "neon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme")
}
