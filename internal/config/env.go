// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CLIFRAME_LOG_LEVEL.
const EnvPrefix = "CLIFRAME_"

// envOverrides holds raw environment values. Unset variables leave the
// pointer fields nil and the slices empty.
type envOverrides struct {
	LogLevel    *string  `env:"LOG_LEVEL"`
	Color       *string  `env:"COLOR"`
	Debug       *bool    `env:"DEBUG"`
	Descriptors []string `env:"DESCRIPTORS"  envSeparator:","`
	SearchPaths []string `env:"SEARCH_PATHS" envSeparator:","`
}

// applyEnv overrides viper values with CLIFRAME_ environment variables.
func applyEnv(v *viper.Viper, environ map[string]string) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if o.LogLevel != nil {
		v.Set("log_level", *o.LogLevel)
	}
	if o.Color != nil {
		v.Set("color", *o.Color)
	}
	if o.Debug != nil {
		v.Set("debug", *o.Debug)
	}
	if len(o.Descriptors) > 0 {
		v.Set("descriptors", o.Descriptors)
	}
	if len(o.SearchPaths) > 0 {
		v.Set("search_paths", o.SearchPaths)
	}
	return nil
}
