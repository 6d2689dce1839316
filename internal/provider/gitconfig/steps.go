package gitconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

// SettingsStep keeps a set of git configuration values present in the
// user's gitconfig. Existing unrelated sections and keys are preserved.
type SettingsStep struct {
	catalog.Meta
	file     string
	settings map[string]string
}

// Check loads the config file and compares every desired setting.
func (s *SettingsStep) Check(ctx catalog.RunContext) (catalog.Status, error) {
	path := ctx.Env().ExpandHome(s.file)

	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return catalog.StatusUnknown, fmt.Errorf("parse %s: %w", path, err)
	}

	for key, want := range s.settings {
		section, name := splitKey(key)
		if cfg.Section(section).Key(name).String() != want {
			return catalog.StatusNeedsApply, nil
		}
	}
	return catalog.StatusSatisfied, nil
}

// Apply merges the desired settings into the config file.
func (s *SettingsStep) Apply(ctx catalog.RunContext) error {
	path := ctx.Env().ExpandHome(s.file)

	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	for key, value := range s.settings {
		section, name := splitKey(key)
		cfg.Section(section).Key(name).SetValue(value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Version is not meaningful for config settings.
func (s *SettingsStep) Version(_ catalog.RunContext) string {
	return ""
}

// splitKey splits "section.key" at the first dot. Compile guarantees a
// dot is present.
func splitKey(key string) (string, string) {
	section, name, _ := strings.Cut(key, ".")
	return section, name
}

// Ensure SettingsStep implements catalog.Step.
var _ catalog.Step = (*SettingsStep)(nil)
