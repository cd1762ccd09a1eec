package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "CHEMTUTOR_"

// parseEnv overlays cfg with CHEMTUTOR_* variables from environ. Unset
// variables keep the current value.
func parseEnv(cfg *Config, environ map[string]string) {
	opts := env.Options{
		Prefix:      envPrefix,
		Environment: environ,
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		panic(fmt.Errorf("failed to parse environment: %w", err))
	}
}
