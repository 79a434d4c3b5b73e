// internal/config/validate.go
package config

import (
	"fmt"
	"net"
	"strconv"
)

// Validate checks configuration correctness. It performs declarative
// validation only and MUST NOT mutate configuration; call it after
// Normalize().
func Validate(cfg *Config) error {
	if cfg.Adapter < 0 {
		return fmt.Errorf("config: adapter %d is negative", cfg.Adapter)
	}
	if cfg.Tuner < 0 {
		return fmt.Errorf("config: tuner %d is negative", cfg.Tuner)
	}
	if cfg.Prefix == "" {
		return fmt.Errorf("config: prefix must not be empty")
	}

	if len(cfg.Channels) == 0 {
		return fmt.Errorf("config: at least one frequency required")
	}
	for _, ch := range cfg.Channels {
		if ch.FrequencyMHz == 0 {
			return fmt.Errorf("config: frequency must be > 0")
		}
		if ch.Modulation != 64 && ch.Modulation != 256 {
			return fmt.Errorf("config: invalid modulation QAM_%d for frequency %d", ch.Modulation, ch.FrequencyMHz)
		}
	}

	// Each frequency needs at least one second of scan time.
	if cfg.StepSeconds/len(cfg.Channels) < 1 {
		return fmt.Errorf(
			"config: a step of %d seconds with %d frequencies leaves less than one second of scan time per frequency",
			cfg.StepSeconds, len(cfg.Channels),
		)
	}

	host, port, err := net.SplitHostPort(cfg.Carbon)
	if err != nil || host == "" {
		return fmt.Errorf("config: invalid carbon sink %q", cfg.Carbon)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("config: invalid carbon port %q", port)
	}

	return nil
}
