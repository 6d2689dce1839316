package shellrc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

// BlockStep keeps one managed block in a shell startup file in sync
// with the catalog. Content outside the block is never touched.
type BlockStep struct {
	catalog.Meta
	file    string
	section string
	lines   []string
}

// Check compares the current managed block against the desired lines.
func (s *BlockStep) Check(ctx catalog.RunContext) (catalog.Status, error) {
	path := ctx.Env().ExpandHome(s.file)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return catalog.StatusNeedsApply, nil
		}
		return catalog.StatusUnknown, err
	}

	current := ReadManagedBlock(string(data), s.section)
	if strings.TrimRight(current, "\n") == s.desired() {
		return catalog.StatusSatisfied, nil
	}
	return catalog.StatusNeedsApply, nil
}

// Apply rewrites the managed block, preserving the rest of the file.
func (s *BlockStep) Apply(ctx catalog.RunContext) error {
	path := ctx.Env().ExpandHome(s.file)

	var content string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		content = string(data)
	case os.IsNotExist(err):
		content = ""
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}

	updated := WriteManagedBlock(content, s.section, s.desired())

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Version is not meaningful for config blocks.
func (s *BlockStep) Version(_ catalog.RunContext) string {
	return ""
}

func (s *BlockStep) desired() string {
	return strings.Join(s.lines, "\n")
}

// Ensure BlockStep implements catalog.Step.
var _ catalog.Step = (*BlockStep)(nil)
