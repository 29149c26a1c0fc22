package commands

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webtree/internal/config"
)

func writeSite(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"src/default.template": "<html><title>{{title}}</title>{{render}}</html>\n",
		"src/index.page":       "---\ntitle: Home\n---\n# Welcome\n\n[guide](docs/guide.html) [gone](missing.html)\n",
		"src/docs/guide.page":  "---\ntitle: Guide\n---\n## Setup\n\ntext\n",
		"src/docs/logo.png":    "png",
	}
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	}
	cfg := config.Default()
	cfg.Source = filepath.Join(dir, "src")
	cfg.Output = filepath.Join(dir, "out")
	cfg.StateFile = filepath.Join(dir, ".webtree", "state.db")
	cfg.Workers = 2
	return cfg
}

func testGlobal() *Global {
	return &Global{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))}
}

func TestRunBuild(t *testing.T) {
	cfg := writeSite(t)
	var out bytes.Buffer
	require.NoError(t, RunBuild(context.Background(), &out, cfg, testGlobal(), false))
	assert.Contains(t, out.String(), "success (3 written, 0 unchanged, 0 failed)")
	assert.Contains(t, out.String(), "broken link in /index.html: missing.html")

	data, err := os.ReadFile(filepath.Join(cfg.Output, "docs", "guide.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Guide</title>")

	out.Reset()
	require.NoError(t, RunBuild(context.Background(), &out, cfg, testGlobal(), false))
	assert.Contains(t, out.String(), "(0 written, 3 unchanged, 0 failed)")
}

func TestPrintTree(t *testing.T) {
	cfg := writeSite(t)
	site, err := loadSite(context.Background(), cfg, testGlobal())
	require.NoError(t, err)

	var out bytes.Buffer
	PrintTree(&out, site.Root, false)
	assert.Equal(t, "/ [directory]\n"+
		"  default.template [template]\n"+
		"  docs/ [directory]\n"+
		"    guide.html \"Guide\" [page]\n"+
		"    logo.png [static]\n"+
		"  index.html \"Home\" [page]\n", out.String())

	out.Reset()
	PrintTree(&out, site.Root, true)
	assert.Contains(t, out.String(), "      #setup \"Setup\" [fragment]\n")
	assert.Contains(t, out.String(), "    #welcome \"Welcome\" [fragment]\n")

	_, err = os.Stat(cfg.StateFile)
	assert.True(t, os.IsNotExist(err), "tree must not create the state file")
}

func TestResolve(t *testing.T) {
	cfg := writeSite(t)
	site, err := loadSite(context.Background(), cfg, testGlobal())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Resolve(&out, site.Root, "docs/guide.html", "../index.html#welcome"))
	assert.Equal(t, "/index.html#welcome\t../index.html#welcome\n", out.String())

	err = Resolve(&out, site.Root, "docs/guide.html", "nope.html")
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = config.LogFormatJSON
	var buf bytes.Buffer
	NewLogger(&buf, cfg, false).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	cfg.Logging.Format = config.LogFormatText
	NewLogger(&buf, cfg, false).Debug("hidden")
	assert.Empty(t, buf.String())
	NewLogger(&buf, cfg, true).Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	g := testGlobal()
	cfg, err := LoadConfig(g, &CLI{Config: filepath.Join(t.TempDir(), "webtree.yaml")})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSource, cfg.Source)
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultFile)
	var out bytes.Buffer
	require.NoError(t, RunInit(&out, path, false))
	assert.Equal(t, "Wrote default configuration to "+path+"\n", out.String())
	require.Error(t, RunInit(io.Discard, path, false), "existing file needs force")
	require.NoError(t, RunInit(io.Discard, path, true))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Metrics.Address)
}
