package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(`
source: content
output: public
state_file: state.db
lang: de_ch
default_format: "template, markdown"
template_name: layout.template
workers: 3
highlight_style: monokai
markdown:
  unsafe: true
logging:
  level: WARNING
  format: JSON
metrics:
  address: ":9100"
watch:
  poll_interval: 5s
plugins:
  linkcheck:
    enabled: true
`))
	require.NoError(t, err)
	assert.Equal(t, "content", cfg.Source)
	assert.Equal(t, "public", cfg.Output)
	assert.Equal(t, "de-CH", cfg.Lang)
	assert.Equal(t, "template,markdown", cfg.DefaultFormat)
	assert.Equal(t, "layout.template", cfg.TemplateName)
	assert.Equal(t, 3, cfg.Workers)
	assert.True(t, cfg.Markdown.Unsafe)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, ":9100", cfg.Metrics.Address)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.Equal(t, true, cfg.Plugins["linkcheck"]["enabled"])
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, cfg.Source)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultStateFile, cfg.StateFile)
	assert.Equal(t, DefaultLang, cfg.Lang)
	assert.Equal(t, DefaultFormat, cfg.DefaultFormat)
	assert.Equal(t, DefaultTemplateName, cfg.TemplateName)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Address)
	assert.Equal(t, 30*time.Second, cfg.PollInterval())
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "sources: x\n",
		"bad yaml":           "source: [\n",
		"bad level":          "logging:\n  level: loud\n",
		"bad format":         "logging:\n  format: xml\n",
		"bad lang":           "lang: \"not a tag!\"\n",
		"negative workers":   "workers: -1\n",
		"same dirs":          "source: site\noutput: ./site\n",
		"template path":      "template_name: a/b.template\n",
		"bad poll interval":  "watch:\n  poll_interval: soon\n",
		"zero poll interval": "watch:\n  poll_interval: 0s\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestLoad_ResolvesPathsAndExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEBTREE_TEST_OUTPUT", "public")
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("source: content\noutput: ${WEBTREE_TEST_OUTPUT}\nstate_file: /var/lib/webtree.db\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "content"), cfg.Source)
	assert.Equal(t, filepath.Join(dir, "public"), cfg.Output)
	assert.Equal(t, "/var/lib/webtree.db", cfg.StateFile)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
	assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultSource), cfg.Source)
}

func TestLogLevel_SlogLevel(t *testing.T) {
	lvl, err := NormalizeLogLevel(" Debug ")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, lvl)
	assert.Equal(t, "DEBUG", lvl.SlogLevel().String())
	assert.Equal(t, "INFO", LogLevel("").SlogLevel().String())
}
