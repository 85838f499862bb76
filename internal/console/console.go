// Package console issues commands to a running game server over the Source
// RCON protocol.
package console

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorcon/rcon"
)

const (
	defaultTimeout = 10 * time.Second
	defaultWorkers = 4
)

// CommandError wraps any transport failure of a remote console call.
type CommandError struct {
	Addr string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("remote console call to %s failed: %v", e.Addr, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// executor is the subset of the rcon connection the runner needs; tests
// substitute a fake.
type executor interface {
	Execute(command string) (string, error)
	Close() error
}

// Runner executes remote console commands through a bounded worker pool so a
// dead or lagging game server cannot pile up calls. Each call carries its own
// deadline, independent of any user-facing timeout upstream.
type Runner struct {
	sem     chan struct{}
	timeout time.Duration

	dial func(addr, password string, timeout time.Duration) (executor, error)
}

func NewRunner() *Runner {
	return &Runner{
		sem:     make(chan struct{}, defaultWorkers),
		timeout: defaultTimeout,
		dial: func(addr, password string, timeout time.Duration) (executor, error) {
			return rcon.Dial(addr, password,
				rcon.SetDialTimeout(timeout),
				rcon.SetDeadline(timeout))
		},
	}
}

// Run connects to addr with the shared secret, issues one command with its
// positional arguments and returns the textual response. The caller blocks
// until the worker finishes, the call deadline passes, or ctx is canceled.
func (r *Runner) Run(ctx context.Context, addr, password, command string, args ...string) (string, error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return "", &CommandError{Addr: addr, Err: ctx.Err()}
	}

	type result struct {
		response string
		err      error
	}
	done := make(chan result, 1)

	go func() {
		defer func() { <-r.sem }()
		response, err := r.execute(addr, password, buildCommand(command, args))
		done <- result{response: response, err: err}
	}()

	deadline := time.NewTimer(r.timeout)
	defer deadline.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return "", &CommandError{Addr: addr, Err: res.err}
		}
		return res.response, nil
	case <-deadline.C:
		return "", &CommandError{Addr: addr, Err: context.DeadlineExceeded}
	case <-ctx.Done():
		return "", &CommandError{Addr: addr, Err: ctx.Err()}
	}
}

func (r *Runner) execute(addr, password, command string) (string, error) {
	conn, err := r.dial(addr, password, r.timeout)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = conn.Close()
	}()
	return conn.Execute(command)
}

func buildCommand(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

// Truncate bounds a console response for display without splitting a rune
// at the cut point.
func Truncate(response string, limit int) string {
	if len(response) <= limit {
		return response
	}
	for limit > 0 && !utf8.RuneStart(response[limit]) {
		limit--
	}
	return response[:limit] + "..."
}
