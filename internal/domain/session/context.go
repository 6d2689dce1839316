// Package session provides the immutable environment context threaded
// through every step of a provisioning run.
package session

import (
	"context"
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/felixgeelhaar/devbox/internal/ports"
)

// Context describes the environment a run executes in. It is constructed
// once at startup and never mutated during the run.
type Context struct {
	account    string
	home       string
	workspace  string
	arch       string
	canElevate bool
}

// New creates a Context from explicit values. Used by tests and by
// FromEnvironment.
func New(account, home, workspace, arch string, canElevate bool) Context {
	return Context{
		account:    account,
		home:       home,
		workspace:  workspace,
		arch:       arch,
		canElevate: canElevate,
	}
}

// FromEnvironment builds a Context from the current process environment.
// Elevation availability is probed through the Elevator so the answer
// reflects the same boundary the run will use.
func FromEnvironment(ctx context.Context, elevator ports.Elevator) (Context, error) {
	u, err := user.Current()
	if err != nil {
		return Context{}, err
	}

	home := u.HomeDir
	if home == "" {
		home, err = os.UserHomeDir()
		if err != nil {
			return Context{}, err
		}
	}

	canElevate := false
	if elevator != nil {
		canElevate = elevator.Available(ctx)
	}

	return Context{
		account:    u.Username,
		home:       home,
		workspace:  filepath.Join(home, "workspace"),
		arch:       runtime.GOARCH,
		canElevate: canElevate,
	}, nil
}

// Account returns the target account identity.
func (c Context) Account() string {
	return c.account
}

// Home returns the target home directory.
func (c Context) Home() string {
	return c.home
}

// Workspace returns the workspace directory for project checkouts.
func (c Context) Workspace() string {
	return c.workspace
}

// Arch returns the architecture string (GOARCH form).
func (c Context) Arch() string {
	return c.arch
}

// CanElevate reports whether privilege escalation is available
// non-interactively.
func (c Context) CanElevate() bool {
	return c.canElevate
}

// ExpandHome expands a leading ~/ to the context's home directory.
func (c Context) ExpandHome(path string) string {
	if path == "~" {
		return c.home
	}
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(c.home, path[2:])
	}
	return path
}
