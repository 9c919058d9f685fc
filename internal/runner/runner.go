// Package runner invokes the external automation engine as a child
// process. Invocation is always an explicit argument vector; no string
// ever reaches a shell interpreter on the way to the engine.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds invocations whose Command carries none.
const DefaultTimeout = 300 * time.Second

// killGrace is how long a timed-out child gets between the deadline
// firing and a forced kill being escalated by the exec layer.
const killGrace = 5 * time.Second

// Command describes one engine invocation.
type Command struct {
	Argv    []string
	Dir     string
	Env     []string // full environment; nil inherits nothing
	Timeout time.Duration
}

// Result is what an invocation produced. A non-zero exit code is data,
// not an error: classification belongs to the calling store, which knows
// the engine's exit semantics for the operation it asked for.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
}

// Runner runs engine commands. Stores depend on this interface so tests
// can substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Exec is the real Runner backed by os/exec.
type Exec struct{}

func NewExec() *Exec {
	return &Exec{}
}

// Run executes cmd and captures its output. On deadline expiry the child
// is terminated and the result reports TimedOut instead of hanging the
// caller. Errors are reserved for failures to invoke at all (binary
// missing, permission denied).
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	if len(cmd.Argv) == 0 {
		return Result{}, errors.New("empty argument vector")
	}

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.WaitDelay = killGrace

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("invoke %s: %w", cmd.Argv[0], err)
	}
	return res, nil
}
