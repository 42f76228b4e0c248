// Package execx runs external processes with captured output.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Result holds the outcome of a finished process.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandError reports a process that exited non-zero in strict mode.
type CommandError struct {
	Cmd      string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(e.Stdout)
	}
	if detail == "" {
		return fmt.Sprintf("%s: exit status %d", e.Cmd, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.Cmd, e.ExitCode, detail)
}

// Command describes a single process invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Env   []string // extra variables appended to the inherited environment
	Stdin io.Reader

	// TeeStdout and TeeStderr mirror the child's streams to these writers
	// while still capturing them, for commands whose output the user
	// should see as it happens.
	TeeStdout io.Writer
	TeeStderr io.Writer

	// Echo prints the command line to this writer before running.
	Echo io.Writer
}

// Shell wraps a user-configured command line in a login shell so PATH
// tweaks from the user's profile apply.
func Shell(dir, cmdline string) Command {
	return Command{Name: "bash", Args: []string{"-lc", cmdline}, Dir: dir}
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Run executes the command and returns its captured output regardless of
// exit code. The error is non-nil only when the process could not be
// started or the context was cancelled.
func Run(ctx context.Context, c Command) (Result, error) {
	if c.Name == "" {
		return Result{}, errors.New("execx: empty command")
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = c.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = teeWriter(&stdout, c.TeeStdout)
	cmd.Stderr = teeWriter(&stderr, c.TeeStderr)

	if c.Echo != nil {
		fmt.Fprintf(c.Echo, "$ %s\n", c.String())
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// RunStrict executes the command and converts a non-zero exit into a
// *CommandError carrying the captured streams.
func RunStrict(ctx context.Context, c Command) (Result, error) {
	res, err := Run(ctx, c)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &CommandError{
			Cmd:      c.String(),
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

func teeWriter(buf *bytes.Buffer, tee io.Writer) io.Writer {
	if tee == nil {
		return buf
	}
	return io.MultiWriter(buf, tee)
}
