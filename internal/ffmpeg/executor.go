package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// stderrTailLines bounds how much subprocess stderr an ExecError carries.
// ffmpeg is chatty; the diagnostic lines are at the end.
const stderrTailLines = 20

// ExecError describes a subprocess that started but did not succeed.
type ExecError struct {
	Cmd      string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExecError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Cmd, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Cmd, e.ExitCode, e.Stderr)
}

// Runner executes external commands. The pipeline depends on this interface
// so conversions can be tested without ffmpeg installed.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, discarding stdout and capturing
// stderr for error reporting.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// A cancelled context kills the child; report the cancellation,
		// not the resulting exit status.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ee := &ExecError{Cmd: name, Args: args, ExitCode: -1, Stderr: tail(stderr.String(), stderrTailLines)}
		var xe *exec.ExitError
		if errors.As(err, &xe) {
			ee.ExitCode = xe.ExitCode()
		} else {
			// Spawn failure (binary missing, permissions): no exit status.
			return fmt.Errorf("run %s: %w", name, err)
		}
		return ee
	}
	return nil
}

// tail returns the last n non-empty lines of s.
func tail(s string, n int) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
