package ports

import "context"

// Multiplexer is the contract with the terminal session multiplexer used
// for final workspace setup. The engine only needs session existence,
// session/window creation, and literal keystroke delivery.
type Multiplexer interface {
	// HasSession reports whether a session with the given name exists.
	HasSession(ctx context.Context, name string) (bool, error)

	// NewSession creates a detached session rooted at dir.
	NewSession(ctx context.Context, name, dir string) error

	// NewWindow creates a named window in an existing session.
	NewWindow(ctx context.Context, session, name, dir string) error

	// SendKeys sends literal text (followed by Enter) to a window.
	SendKeys(ctx context.Context, target, text string) error
}
