// Package prefs loads per-user triage preference snapshots. The core
// pipeline itself never performs preference I/O; callers load a
// snapshot up front and pass it in.
package prefs

import (
	"fmt"

	"github.com/mikey/llm-mail-triage/internal/core"
	"github.com/spf13/viper"
)

// Load reads a preference snapshot (allow list, deny list, ordered
// custom rules) from a YAML or JSON file
func Load(path string) (*core.Preferences, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read preferences file: %w", err)
	}

	var prefs core.Preferences
	if err := v.Unmarshal(&prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences file: %w", err)
	}

	return &prefs, nil
}

// Empty returns a preference snapshot with no overrides
func Empty() *core.Preferences {
	return &core.Preferences{}
}
