package execute_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
)

func TestRun_Capture(t *testing.T) {
	out, err := execute.Run(context.Background(), execute.Options{
		Command: "echo",
		Args:    []string{"hello"},
		Capture: true,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestRun_DryRunDoesNotExecute(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "touched")

	out, err := execute.Run(context.Background(), execute.Options{
		Command: "touch",
		Args:    []string{marker},
		DryRun:  true,
		Logger:  zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "dry run must not run the command")
}

func TestRun_FailureWrapsSummary(t *testing.T) {
	_, err := execute.Run(context.Background(), execute.Options{
		Command: "false",
		Logger:  zaptest.NewLogger(t),
		Timeout: 10 * time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `command "false" failed`)
}

func TestCommandExists(t *testing.T) {
	require.NoError(t, execute.CommandExists("echo"))

	err := execute.CommandExists("definitely-not-a-real-tool")
	require.Error(t, err)

	var classified *hermes_err.ClassifiedError
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, hermes_err.CategoryDependency, classified.Category)
}
