// Package command runs the external tools pagecheck can delegate to
// (HTMLHint, js-beautify) and captures their output.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Output is what a finished process produced. A non-zero ExitCode is not an
// error by itself: linters routinely exit 1 when they report findings.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes a single binary.
type Runner struct {
	Path    string
	Verbose bool
	Log     io.Writer // verbose trace destination; nil disables tracing
}

// Validate checks that the binary can be found on PATH.
func (r *Runner) Validate() error {
	if _, err := exec.LookPath(r.Path); err != nil {
		return fmt.Errorf("%s not found: %w", r.Path, err)
	}
	return nil
}

// Run executes the binary with args, feeding stdin when non-nil. It returns
// an error only when the process could not be started or the context ended
// before it finished.
func (r *Runner) Run(ctx context.Context, stdin []byte, args ...string) (Output, error) {
	if r.Verbose && r.Log != nil {
		fmt.Fprintf(r.Log, "[%s] running: %s %s\n", r.Path, r.Path, strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, r.Path, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s: %w", r.Path, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, fmt.Errorf("%s: %w", r.Path, err)
}

// Failure describes a non-zero exit for error messages, preferring stderr.
func (o Output) Failure(tool string) error {
	msg := strings.TrimSpace(string(o.Stderr))
	if msg == "" {
		msg = strings.TrimSpace(string(o.Stdout))
	}
	if msg == "" {
		return fmt.Errorf("%s exited with status %d", tool, o.ExitCode)
	}
	return fmt.Errorf("%s exited with status %d: %s", tool, o.ExitCode, msg)
}
