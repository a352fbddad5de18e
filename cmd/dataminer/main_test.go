package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/dataminer/internal/app"
	"github.com/hyperifyio/dataminer/internal/source"
)

const citiesPage = `<html><body>
<table><tr><th>city</th><th>pop</th></tr>
<tr><td>Oslo</td><td>709000</td></tr>
<tr><td>Oslo</td><td>709000</td></tr>
<tr><td>Bergen</td><td>291000</td></tr></table>
</body></html>`

// clearEnv isolates a test from DATAMINER_* and LLM variables of the shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATAMINER_FORMAT", "DATAMINER_LIMIT", "DATAMINER_DELAY", "DATAMINER_OUTPUT", "DATAMINER_VERBOSE", "OPENAI_API_KEY", "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL"} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestConfig_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "dataminer.yaml")
	yml := "fetch:\n  limit: 25\n  maxPages: 4\n  delay: 3s\noutput:\n  format: markdown\n"
	require.NoError(t, os.WriteFile(p, []byte(yml), 0o600))
	t.Setenv("DATAMINER_FORMAT", "csv")
	t.Setenv("DATAMINER_LIMIT", "50")

	c := &cli{}
	root := newRootCmd(c)
	web, _, err := root.Find([]string{"web"})
	require.NoError(t, err)
	require.NoError(t, web.ParseFlags([]string{"--config", p, "--env-file", noEnvFile(t), "--limit", "7"}))

	cfg, err := c.config(web)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Limit, "flag beats env and file")
	require.Equal(t, "csv", cfg.Format, "env beats file")
	require.Equal(t, 4, cfg.MaxPages, "file beats default")
	require.Equal(t, 3*time.Second, cfg.Delay)
	require.Equal(t, app.DefaultTimeout, cfg.Timeout, "defaults survive")
}

func TestConfig_OutputExtensionPicksFormat(t *testing.T) {
	clearEnv(t)
	c := &cli{}
	root := newRootCmd(c)
	web, _, err := root.Find([]string{"web"})
	require.NoError(t, err)
	require.NoError(t, web.ParseFlags([]string{"--env-file", noEnvFile(t), "--out", "rows.json"}))
	cfg, err := c.config(web)
	require.NoError(t, err)
	require.Equal(t, "json", cfg.Format)

	c = &cli{}
	root = newRootCmd(c)
	web, _, _ = root.Find([]string{"web"})
	require.NoError(t, web.ParseFlags([]string{"--env-file", noEnvFile(t), "--out", "rows.json", "--format", "csv"}))
	cfg, err = c.config(web)
	require.NoError(t, err)
	require.Equal(t, "csv", cfg.Format)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&cli{})
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--env-file", noEnvFile(t)))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWebCommand_CSVWithSteps(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, citiesPage)
	}))
	defer srv.Close()

	out, err := run(t, "web", "--method", "tables", "--step", "dedupe", "--format", "csv", "--delay", "0s", srv.URL)
	require.NoError(t, err)
	require.Equal(t, "city,pop\nOslo,709000\nBergen,291000\n", out)
}

func TestWebCommand_WritesFile(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, citiesPage)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out", "cities.json")
	out, err := run(t, "web", "-m", "tables", "--delay", "0s", "-o", path, srv.URL)
	require.NoError(t, err)
	require.Empty(t, out)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(b, &rows))
	require.Len(t, rows, 3)
	require.Equal(t, "Bergen", rows[2]["city"])
}

func TestWebCommand_BadMethod(t *testing.T) {
	clearEnv(t)
	_, err := run(t, "web", "--method", "screenshot", "https://example.com")
	require.Error(t, err)
	require.Equal(t, 2, exitCode(err))
}

func TestSocialCommand_RequiresPlatform(t *testing.T) {
	clearEnv(t)
	_, err := run(t, "social", "--kind", "subreddit", "golang")
	var ve *source.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "platform", ve.Field)
}

func TestAdviseExtraction_Canned(t *testing.T) {
	clearEnv(t)
	out, err := run(t, "advise", "extraction", "--goal", "product prices", "--url", "https://shop.example")
	require.NoError(t, err)
	require.Contains(t, out, "OPENAI_API_KEY")
	require.Contains(t, out, "dataminer web")
}

func TestAdviseCleaning_Table(t *testing.T) {
	clearEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, citiesPage)
	}))
	defer srv.Close()

	out, err := run(t, "advise", "cleaning", "--url", srv.URL, "--delay", "0s")
	require.NoError(t, err)
	require.True(t, strings.Contains(out, "Duplicate") || strings.Contains(out, "duplicate"), out)
	require.Contains(t, out, "╭")
}
