package workspace

import (
	"fmt"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
	"github.com/felixgeelhaar/devbox/internal/ports"
)

// SessionStep creates a named multiplexer session with the configured
// windows and sends each window its startup command.
type SessionStep struct {
	catalog.Meta
	session string
	root    string
	windows []catalog.WindowSpec
	mux     ports.Multiplexer
}

// Check reports satisfied when the session already exists. An existing
// session is left exactly as the operator arranged it.
func (s *SessionStep) Check(ctx catalog.RunContext) (catalog.Status, error) {
	exists, err := s.mux.HasSession(ctx.Context(), s.session)
	if err != nil {
		return catalog.StatusUnknown, err
	}
	if exists {
		return catalog.StatusSatisfied, nil
	}
	return catalog.StatusNeedsApply, nil
}

// Apply creates the session, then its windows, then delivers startup
// commands as literal keystrokes.
func (s *SessionStep) Apply(ctx catalog.RunContext) error {
	env := ctx.Env()
	root := env.ExpandHome(s.root)
	if s.root == "" {
		root = env.Workspace()
	}

	if err := s.mux.NewSession(ctx.Context(), s.session, root); err != nil {
		return err
	}

	for _, win := range s.windows {
		dir := root
		if win.Dir != "" && win.Dir != "." {
			dir = env.ExpandHome(win.Dir)
		}
		if err := s.mux.NewWindow(ctx.Context(), s.session, win.Name, dir); err != nil {
			return err
		}
		if win.Command != "" {
			target := fmt.Sprintf("%s:%s", s.session, win.Name)
			if err := s.mux.SendKeys(ctx.Context(), target, win.Command); err != nil {
				return err
			}
		}
	}
	return nil
}

// Version is not meaningful for sessions.
func (s *SessionStep) Version(_ catalog.RunContext) string {
	return ""
}

// Ensure SessionStep implements catalog.Step.
var _ catalog.Step = (*SessionStep)(nil)
