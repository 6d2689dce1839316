package starship

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/felixgeelhaar/devbox/internal/domain/catalog"
)

// SettingsStep keeps top-level keys of starship.toml in sync with the
// catalog. Keys not named in the catalog are preserved.
type SettingsStep struct {
	catalog.Meta
	file     string
	settings map[string]string
}

// Check parses the current config and compares the desired keys.
func (s *SettingsStep) Check(ctx catalog.RunContext) (catalog.Status, error) {
	path := ctx.Env().ExpandHome(s.file)

	current, err := loadConfig(path)
	if err != nil {
		return catalog.StatusUnknown, err
	}

	for key, raw := range s.settings {
		got, ok := current[key]
		if !ok || fmt.Sprintf("%v", got) != fmt.Sprintf("%v", typedValue(raw)) {
			return catalog.StatusNeedsApply, nil
		}
	}
	return catalog.StatusSatisfied, nil
}

// Apply merges the desired keys into the config and rewrites it.
func (s *SettingsStep) Apply(ctx catalog.RunContext) error {
	path := ctx.Env().ExpandHome(s.file)

	current, err := loadConfig(path)
	if err != nil {
		return err
	}

	for key, raw := range s.settings {
		current[key] = typedValue(raw)
	}

	data, err := toml.Marshal(current)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Version is not meaningful for config settings.
func (s *SettingsStep) Version(_ catalog.RunContext) string {
	return ""
}

func loadConfig(path string) (map[string]any, error) {
	config := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return config, nil
}

// typedValue maps literal strings to TOML booleans and integers so the
// catalog can stay a flat string map.
func typedValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// Ensure SettingsStep implements catalog.Step.
var _ catalog.Step = (*SettingsStep)(nil)
