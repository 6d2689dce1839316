// Package tmux adapts the tmux CLI to the Multiplexer port.
package tmux

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/devbox/internal/ports"
	"github.com/felixgeelhaar/devbox/internal/validation"
)

// Client drives tmux through the command runner.
type Client struct {
	runner ports.CommandRunner
}

// NewClient creates a tmux client.
func NewClient(runner ports.CommandRunner) *Client {
	return &Client{runner: runner}
}

// HasSession reports whether a session with the given name exists.
// tmux exits 1 when the session is missing; that is not an error here.
func (c *Client) HasSession(ctx context.Context, name string) (bool, error) {
	if err := validation.ValidateSessionName(name); err != nil {
		return false, err
	}
	result, err := c.runner.Run(ctx, "tmux", "has-session", "-t", "="+name)
	if err != nil {
		return false, fmt.Errorf("tmux has-session: %w", err)
	}
	return result.Success(), nil
}

// NewSession creates a detached session rooted at dir.
func (c *Client) NewSession(ctx context.Context, name, dir string) error {
	if err := validation.ValidateSessionName(name); err != nil {
		return err
	}
	args := []string{"new-session", "-d", "-s", name}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	result, err := c.runner.Run(ctx, "tmux", args...)
	if err != nil {
		return fmt.Errorf("tmux new-session: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("tmux new-session %s failed: %s", name, result.Stderr)
	}
	return nil
}

// NewWindow creates a named window in an existing session.
func (c *Client) NewWindow(ctx context.Context, session, name, dir string) error {
	if err := validation.ValidateSessionName(session); err != nil {
		return err
	}
	if err := validation.ValidateSessionName(name); err != nil {
		return err
	}
	args := []string{"new-window", "-t", "=" + session, "-n", name}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	result, err := c.runner.Run(ctx, "tmux", args...)
	if err != nil {
		return fmt.Errorf("tmux new-window: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("tmux new-window %s:%s failed: %s", session, name, result.Stderr)
	}
	return nil
}

// SendKeys sends literal text followed by Enter to a window target
// ("session:window"). The -l flag keeps tmux from interpreting key names
// inside the text.
func (c *Client) SendKeys(ctx context.Context, target, text string) error {
	result, err := c.runner.Run(ctx, "tmux", "send-keys", "-t", target, "-l", text)
	if err != nil {
		return fmt.Errorf("tmux send-keys: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("tmux send-keys to %s failed: %s", target, result.Stderr)
	}

	result, err = c.runner.Run(ctx, "tmux", "send-keys", "-t", target, "Enter")
	if err != nil {
		return fmt.Errorf("tmux send-keys: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("tmux send-keys Enter to %s failed: %s", target, result.Stderr)
	}
	return nil
}

// Ensure Client implements ports.Multiplexer.
var _ ports.Multiplexer = (*Client)(nil)
