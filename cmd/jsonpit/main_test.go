package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonpit/pkg/core"
)

// run executes the CLI with args and returns stdout. Flag values are reset
// first since commands are package globals.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "jsonpit version "))
}

func TestCLI_Lifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Quotes")

	out, err := run(t, "", "--dir", dir, "add", "EURUSD", `{"bid": 1.0841, "ask": 1.0843}`, "--note", "feed")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "added EURUSD @ "), out)

	out, err = run(t, "", "--dir", dir, "add", "EURUSD", `{"ask": 1.0843, "bid": 1.0841}`)
	require.NoError(t, err)
	assert.Equal(t, "unchanged EURUSD\n", out, "key order does not matter")

	out, err = run(t, `{"bid": 1.0850, "ask": 1.0852}`+"\n", "--dir", dir, "add", "EURUSD")
	require.NoError(t, err)
	assert.Contains(t, out, "added EURUSD")

	_, err = run(t, "", "--dir", dir, "add", "quotes/USDJPY", `{"bid": 151.2}`)
	require.NoError(t, err)

	t.Run("Get", func(t *testing.T) {
		out, err := run(t, "", "--dir", dir, "get", "EURUSD")
		require.NoError(t, err)
		var rec struct {
			Name       string         `json:"name"`
			Properties map[string]any `json:"properties"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &rec))
		assert.Equal(t, "EURUSD", rec.Name)
		assert.Equal(t, 1.085, rec.Properties["bid"])
	})

	t.Run("Get YAML", func(t *testing.T) {
		out, err := run(t, "", "--dir", dir, "--yaml", "get", "quotes/USDJPY")
		require.NoError(t, err)
		var rec map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &rec))
		assert.Equal(t, "quotes/USDJPY", rec["name"])
	})

	t.Run("History", func(t *testing.T) {
		out, err := run(t, "", "--dir", dir, "history", "EURUSD")
		require.NoError(t, err)
		var recs []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &recs))
		require.Len(t, recs, 2)
		assert.Equal(t, "feed", recs[0]["note"])

		out, err = run(t, "", "--dir", dir, "history", "EURUSD", "--last", "1")
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &recs))
		assert.Len(t, recs, 1)
	})

	t.Run("Get At", func(t *testing.T) {
		out, err := run(t, "", "--dir", dir, "history", "EURUSD")
		require.NoError(t, err)
		var recs []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &recs))
		first := recs[0]["modified"].(string)

		out, err = run(t, "", "--dir", dir, "get", "EURUSD", "--at", first)
		require.NoError(t, err)
		assert.Contains(t, out, "1.0841")

		_, err = run(t, "", "--dir", dir, "get", "EURUSD", "--at", "yesterday")
		assert.Error(t, err)
	})

	t.Run("List", func(t *testing.T) {
		out, err := run(t, "", "--dir", dir, "list")
		require.NoError(t, err)
		assert.Equal(t, "EURUSD\nquotes/USDJPY\n", out)

		out, err = run(t, "", "--dir", dir, "list", "quotes/*")
		require.NoError(t, err)
		assert.Equal(t, "quotes/USDJPY\n", out)
	})

	t.Run("Delete", func(t *testing.T) {
		out, err := run(t, "", "--dir", dir, "delete", "EURUSD")
		require.NoError(t, err)
		assert.Equal(t, "deleted EURUSD\n", out)

		out, err = run(t, "", "--dir", dir, "delete", "EURUSD")
		require.NoError(t, err)
		assert.Equal(t, "EURUSD not present\n", out)

		_, err = run(t, "", "--dir", dir, "get", "EURUSD")
		assert.ErrorIs(t, err, core.ErrNotFound)

		out, err = run(t, "", "--dir", dir, "get", "EURUSD", "--deleted")
		require.NoError(t, err)
		assert.Contains(t, out, `"deleted": true`)
	})
}

func TestCLI_FixedTimestamp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Ledger")

	_, err := run(t, "", "--dir", dir, "add", "acct", `{"balance": 100}`, "--at", "2024-06-03T09:00:00Z")
	require.NoError(t, err)

	out, err := run(t, "", "--dir", dir, "get", "acct")
	require.NoError(t, err, "pinned writes are still persisted")
	assert.Contains(t, out, `"modified": "2024-06-03T09:00:00Z"`)
}

func TestCLI_InitAndConfig(t *testing.T) {
	wd := t.TempDir()
	t.Chdir(wd)

	out, err := run(t, "", "--codec", "yaml", "init", "data")
	require.NoError(t, err)
	assert.Contains(t, out, "codec yaml")
	assert.FileExists(t, filepath.Join(wd, "jsonpit.yaml"))
	assert.FileExists(t, filepath.Join(wd, "data", "data.yaml"))

	_, err = run(t, "", "init")
	assert.Error(t, err, "config already exists")

	_, err = run(t, "", "add", "q", `{"v": 1}`)
	require.NoError(t, err)

	out, err = run(t, "", "list")
	require.NoError(t, err)
	assert.Equal(t, "q\n", out)

	out, err = run(t, "", "save")
	require.NoError(t, err)
	assert.Equal(t, "nothing to save\n", out)

	out, err = run(t, "", "save", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "data.yaml")
}

func TestCLI_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "", "list")
	assert.Error(t, err, "no location configured")

	dir := filepath.Join(t.TempDir(), "Missing")
	_, err = run(t, "", "--dir", dir, "get", "q")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = run(t, "", "--dir", dir, "add", "q", `{"v": `)
	assert.Error(t, err)

	_, err = run(t, "", "--dir", dir, "--codec", "xml", "list")
	assert.Error(t, err)
}
