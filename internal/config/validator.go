package config

import (
	"fmt"
	"strings"

	"github.com/nikhilbhat/eventformatter/internal/formatter"
)

// Validate checks the config for required fields and a well-formed
// formatter section. All violations are collected, not fail-fast: a config
// that fails validation must never be handed to the engine.
func Validate(cfg *Config) error {
	errs := Problems(cfg)
	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Problems returns every validation error message (empty = valid).
func Problems(cfg *Config) []string {
	var errs []string
	if cfg.Version == "" {
		errs = append(errs, "version is required")
	}
	if len(cfg.Formatter) == 0 {
		errs = append(errs, "formatter section is required")
	} else {
		for _, msg := range formatter.Validate(cfg.Formatter) {
			errs = append(errs, "formatter: "+msg)
		}
	}
	switch cfg.Sink.Type {
	case "", "none", "stdout":
	case "redis":
		if cfg.Sink.Redis.Addr == "" {
			errs = append(errs, "sink: redis sink requires an addr")
		}
	default:
		errs = append(errs, fmt.Sprintf("sink: unknown type %q", cfg.Sink.Type))
	}
	return errs
}
