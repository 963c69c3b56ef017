package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// EnvPrefix is prepended to every variable name in Config's env tags.
const EnvPrefix = "CREDHEX_"

// parseEnv overlays CREDHEX_* variables. Unset variables keep the current
// value; durations use time.ParseDuration syntax.
func parseEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
