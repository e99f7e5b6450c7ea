// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Options controls a single external command invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
	Capture bool
	DryRun  bool
	Logger  *zap.Logger
}

// Run executes a command with structured logging and proper error handling.
// Shell execution is not supported; arguments are always passed as a vector.
func Run(ctx context.Context, opts Options) (string, error) {
	cmdStr := buildCommandString(opts.Command, opts.Args...)

	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	if opts.DryRun {
		logger.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	logger.Info("Starting execution", zap.String("command", cmdStr))

	cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var buf bytes.Buffer
	writer := io.MultiWriter(os.Stdout, &buf)
	cmd.Stdout = writer
	cmd.Stderr = writer

	err := cmd.Run()
	output := buf.String()

	if err != nil {
		summary := hermes_err.ExtractSummary(output, 2)
		logger.Error("Execution failed",
			zap.String("command", cmdStr),
			zap.String("summary", summary),
			zap.Error(err),
		)
		return output, cerr.Wrapf(err, "command %q failed: %s", opts.Command, summary)
	}

	logger.Info("Execution succeeded", zap.String("command", cmdStr))

	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// RunSimple executes a command with minimal options and structured logging.
func RunSimple(ctx context.Context, cmd string, args ...string) error {
	_, err := Run(ctx, Options{
		Command: cmd,
		Args:    args,
	})
	return err
}

// CommandExists reports whether the named tool is resolvable on PATH,
// returning a classified dependency error when it is not.
func CommandExists(tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return hermes_err.NewDependencyError(tool, err)
	}
	return nil
}

func defaultTimeout(t time.Duration) time.Duration {
	if t > 0 {
		return t
	}
	return 10 * time.Minute
}

func buildCommandString(command string, args ...string) string {
	return command + " " + strings.Join(args, " ")
}
