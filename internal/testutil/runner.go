// Package testutil provides shared test doubles.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/devbox/internal/ports"
)

// ScriptedRunner is a CommandRunner returning canned results, recording
// every invocation.
type ScriptedRunner struct {
	mu      sync.Mutex
	results map[string]ports.CommandResult
	errs    map[string]error
	deflt   ports.CommandResult
	calls   []ports.CommandCall
}

// NewScriptedRunner creates a runner whose unscripted commands succeed
// with empty output.
func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{
		results: make(map[string]ports.CommandResult),
		errs:    make(map[string]error),
	}
}

// Script registers the result for an exact command line.
func (r *ScriptedRunner) Script(cmdline string, result ports.CommandResult) *ScriptedRunner {
	r.results[cmdline] = result
	return r
}

// ScriptError registers a transport error for an exact command line.
func (r *ScriptedRunner) ScriptError(cmdline string, err error) *ScriptedRunner {
	r.errs[cmdline] = err
	return r
}

// Run returns the scripted result for the command line.
func (r *ScriptedRunner) Run(_ context.Context, command string, args ...string) (ports.CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, ports.CommandCall{Command: command, Args: args})

	key := cmdline(command, args)
	if err, ok := r.errs[key]; ok {
		return ports.CommandResult{ExitCode: 1}, err
	}
	if result, ok := r.results[key]; ok {
		return result, nil
	}
	return r.deflt, nil
}

// Calls returns the recorded invocations.
func (r *ScriptedRunner) Calls() []ports.CommandCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.CommandCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallLines returns recorded invocations as joined command lines.
func (r *ScriptedRunner) CallLines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = cmdline(c.Command, c.Args)
	}
	return lines
}

func cmdline(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

// Ensure ScriptedRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*ScriptedRunner)(nil)
