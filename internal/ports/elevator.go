package ports

import "context"

// Elevator is the single audited privilege-escalation boundary.
//
// Every method maps to a fixed, reviewed command template; callers supply
// typed arguments, never pre-built shell strings. Steps that are not marked
// privileged must not hold a reference to an Elevator at all.
type Elevator interface {
	// Available reports whether escalation can be performed without
	// interactive authentication.
	Available(ctx context.Context) bool

	// InstallPackages installs the named packages through the system
	// package manager.
	InstallPackages(ctx context.Context, names []string) error

	// RunInstaller executes a fetched installer script or binary with a
	// bounded argument list.
	RunInstaller(ctx context.Context, path string, args []string) error

	// InstallBinary copies a fetched binary to a system location with
	// mode 0755.
	InstallBinary(ctx context.Context, src, dest string) error
}
