package fs_test

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jsonpit/pkg/adapters/fs"
)

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func TestBash(t *testing.T) {
	requireBash(t)
	ctx := context.Background()

	res, err := fs.Bash(ctx, "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(res.Output))
	assert.Equal(t, 0, res.ExitCode)

	res, err = fs.Bash(ctx, "echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, "oops", strings.TrimSpace(res.Output))
	assert.Equal(t, 3, res.ExitCode)
}

func TestCommand(t *testing.T) {
	requireBash(t)

	res, err := fs.Command(context.Background(), `bash -c 'printf "%s|%s" "a b" c'`)
	require.NoError(t, err)
	assert.Equal(t, "a b|c", res.Output)

	_, err = fs.Command(context.Background(), "   ")
	assert.Error(t, err)

	_, err = fs.Exec(context.Background(), "definitely-not-a-command-jsonpit")
	assert.Error(t, err)
}
