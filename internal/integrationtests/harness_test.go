package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/primcall/internal/app"
	"github.com/specialistvlad/primcall/internal/testutil"
	"github.com/stretchr/testify/require"
)

// outputLine mirrors one JSON line written by App.Run.
type outputLine struct {
	RunID    string          `json:"run_id"`
	Call     string          `json:"call"`
	Function string          `json:"function"`
	Source   string          `json:"source"`
	Rows     json.RawMessage `json:"rows"`
}

// harnessResult holds the outcomes of an integration test run.
type harnessResult struct {
	Root      string
	Lines     []outputLine
	LogOutput string
	Err       error
}

// runIntegrationTest writes files (paths relative to a temp root, e.g.
// "queries/main.hcl" or "catalog/extra.hcl"), builds an app over them and
// runs it. A startup panic is returned as Err.
func runIntegrationTest(t *testing.T, files map[string]string) *harnessResult {
	t.Helper()

	root := testutil.WriteFiles(t, files)
	queryDir := filepath.Join(root, "queries")
	require.NoError(t, os.MkdirAll(queryDir, 0755))

	cfg := app.Config{
		QueryPath:     queryDir,
		DiagnosticsDB: filepath.Join(root, "diagnostics.db"),
		LogLevel:      "debug",
		LogFormat:     "text",
		WorkerCount:   4,
	}
	if _, err := os.Stat(filepath.Join(root, "catalog")); err == nil {
		cfg.CatalogPath = filepath.Join(root, "catalog")
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logBuffer := &testutil.SafeBuffer{}
	res := &harnessResult{Root: root}

	var testApp *app.App
	func() {
		defer func() {
			if r := recover(); r != nil {
				res.Err = fmt.Errorf("application startup panicked | %v", r)
			}
		}()
		testApp = app.NewApp(out, logBuffer, appConfig)
	}()

	if testApp != nil {
		res.Err = testApp.Run(context.Background())
		require.NoError(t, testApp.Close())
	}

	res.LogOutput = logBuffer.String()
	if os.Getenv("PRIMCALL_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
	}

	for _, raw := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if raw == "" {
			continue
		}
		var line outputLine
		require.NoError(t, json.Unmarshal([]byte(raw), &line), raw)
		res.Lines = append(res.Lines, line)
	}
	return res
}

// byCall indexes output lines by call name.
func (r *harnessResult) byCall() map[string]outputLine {
	m := make(map[string]outputLine, len(r.Lines))
	for _, l := range r.Lines {
		m[l.Call] = l
	}
	return m
}
