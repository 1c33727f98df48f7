package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jirareport/config"
	"jirareport/services"
)

var testNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

// 固定のイシュー一覧を返すJIRAサーバー
func newFakeJira(t *testing.T, keys ...string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, pass, ok := r.BasicAuth(); !ok || user != "jdoe" || pass != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		issues := make([]map[string]any, len(keys))
		for i, key := range keys {
			issues[i] = map[string]any{
				"id":  fmt.Sprint(10000 + i),
				"key": key,
				"fields": map[string]any{
					"summary": "Summary " + key,
					"status":  map[string]any{"name": "Done"},
					"project": map[string]any{"name": "Project"},
					"created": "2019-10-01T10:00:00.000+0000",
				},
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"startAt": 0, "total": len(keys), "issues": issues})
	}))
	t.Cleanup(srv.Close)
	return srv
}

type cliEnv struct {
	dir      string
	settings string
	env      map[string]string
}

func newCLIEnv(t *testing.T, serverURL string, settings string) cliEnv {
	t.Helper()

	dir := t.TempDir()
	if settings == "" {
		settings = `{"env_file": %q, "output_dir": %q}`
		settings = fmt.Sprintf(settings, filepath.Join(dir, ".env"), dir)
	}
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(settings), 0o644))

	return cliEnv{
		dir:      dir,
		settings: path,
		env: map[string]string{
			config.KeyServerURL: serverURL,
			config.KeyUsername:  "jdoe",
			config.KeyAPIToken:  "token",
		},
	}
}

func (c cliEnv) run(t *testing.T, prompter config.Prompter, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr strings.Builder
	args = append([]string{"--settings", c.settings}, args...)
	code := run(args, &stdout, &stderr, c.env, prompter, testNow)
	return code, stdout.String(), stderr.String()
}

func TestRun_WritesReportWithDaysOverride(t *testing.T) {
	srv := newFakeJira(t, "PROJ-2", "PROJ-1", "PROJ-3")
	c := newCLIEnv(t, srv.URL, "")

	code, stdout, stderr := c.run(t, nil, "--month", "2019/10", "--days", "9")
	require.Equal(t, 0, code, stderr)

	want := filepath.Join(c.dir, "Jira_2019_October.xlsx")
	assert.Equal(t, want+"\n", stdout)

	rows, err := services.ReadReport(want)
	require.NoError(t, err)

	var total time.Duration
	dates := map[string]bool{}
	for _, row := range rows {
		total += row.Effort
		dates[row.Date.Format("2006-01-02")] = true
	}
	assert.Equal(t, 72*time.Hour, total)
	assert.Len(t, dates, 23, "all weekdays of October 2019 appear")
}

func TestRun_RefusesToOverwriteUnlessForced(t *testing.T) {
	srv := newFakeJira(t, "PROJ-1")
	c := newCLIEnv(t, srv.URL, "")

	target := filepath.Join(c.dir, "Jira_2019_October.xlsx")
	require.NoError(t, os.WriteFile(target, []byte("keep me"), 0o644))

	code, stdout, stderr := c.run(t, nil, "--month", "2019/10")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "ERR")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))

	code, stdout, stderr = c.run(t, nil, "--month", "2019/10", "-f")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, target+"\n", stdout)
}

func TestRun_NoIssuesWritesHeaderOnlyCSV(t *testing.T) {
	srv := newFakeJira(t)
	c := newCLIEnv(t, srv.URL, "")
	out := filepath.Join(c.dir, "october.csv")

	code, stdout, stderr := c.run(t, nil, "--month", "2019/10", "--format", "csv", "-o", out)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, out+"\n", stdout)
	assert.Contains(t, stderr, "WRN")

	rows, err := services.ReadReport(out)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRun_BlacklistSkipsIssues(t *testing.T) {
	srv := newFakeJira(t, "PROJ-1", "PROJ-2")
	c := newCLIEnv(t, srv.URL, "")

	blacklist := filepath.Join(c.dir, "blacklist.txt")
	require.NoError(t, os.WriteFile(blacklist, []byte("PROJ-2\n"), 0o644))

	code, stdout, stderr := c.run(t, nil, "--month", "2019/10", "-b", blacklist, "--format", "csv")
	require.Equal(t, 0, code, stderr)

	rows, err := services.ReadReport(strings.TrimSpace(stdout))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Equal(t, "PROJ-1", row.IssueKey)
	}
}

func TestRun_PromptsForMissingTokenAndSavesIt(t *testing.T) {
	srv := newFakeJira(t, "PROJ-1")
	c := newCLIEnv(t, srv.URL, "")
	delete(c.env, config.KeyAPIToken)

	prompter := config.NewLinePrompter(strings.NewReader("token\n"), &strings.Builder{})
	code, _, stderr := c.run(t, prompter, "--month", "2019/10")
	require.Equal(t, 0, code, stderr)

	stored, err := config.NewDotEnvStore(filepath.Join(c.dir, ".env")).Load()
	require.NoError(t, err)
	assert.Equal(t, "token", stored[config.KeyAPIToken])
}

func TestRun_Failures(t *testing.T) {
	srv := newFakeJira(t, "PROJ-1")

	t.Run("malformed month", func(t *testing.T) {
		c := newCLIEnv(t, srv.URL, "")
		code, stdout, _ := c.run(t, nil, "--month", "2019-10")
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
	})

	t.Run("zero days", func(t *testing.T) {
		c := newCLIEnv(t, srv.URL, "")
		code, _, _ := c.run(t, nil, "--month", "2019/10", "--days", "0")
		assert.Equal(t, 1, code)
	})

	t.Run("rejected credentials", func(t *testing.T) {
		c := newCLIEnv(t, srv.URL, "")
		c.env[config.KeyAPIToken] = "wrong"
		code, _, stderr := c.run(t, nil, "--month", "2019/10")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "JIRA_API_TOKEN")
		assert.NoFileExists(t, filepath.Join(c.dir, "Jira_2019_October.xlsx"))
	})

	t.Run("unknown flag", func(t *testing.T) {
		c := newCLIEnv(t, srv.URL, "")
		code, _, stderr := c.run(t, nil, "--nope")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "unknown flag")
	})

	t.Run("missing credentials without prompt", func(t *testing.T) {
		c := newCLIEnv(t, srv.URL, "")
		c.env = map[string]string{}
		code, _, _ := c.run(t, nil, "--month", "2019/10")
		assert.Equal(t, 1, code)
	})
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr strings.Builder
	code := run([]string{"--help"}, &stdout, &stderr, nil, nil, testNow)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "--force-overwrite")
	assert.Contains(t, stdout.String(), "JIRA_SERVER_URL")
}
