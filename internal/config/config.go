// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full run configuration. Values start from Default, may
// be replaced by flags/environment, and an optional YAML file overrides
// whatever it declares. Normalize derives Channels from Frequencies;
// Validate checks the result before the meter is built.
type Config struct {
	// Adapter selects /dev/dvb/adapterN.
	Adapter int `yaml:"adapter"`
	// Tuner selects the adapter's frontendN/demuxN/dvrN devices.
	Tuner int `yaml:"tuner"`
	// Carbon is the metrics sink, "host" or "host:port".
	Carbon string `yaml:"carbon"`
	// Prefix is the carbon tree location for all samples.
	Prefix string `yaml:"prefix"`
	// StepSeconds is the metrics backend resolution; each frequency is
	// scanned for StepSeconds/len(Channels) seconds.
	StepSeconds int `yaml:"step_seconds"`
	// Frequencies is a comma-separated list of "MHz" or
	// "MHz:modulation" pairs, e.g. "546:256,554:64".
	Frequencies string `yaml:"frequencies"`
	// Debug enables debug logging.
	Debug bool `yaml:"debug"`
	// ListenAddress exposes Prometheus self-metrics when non-empty.
	ListenAddress string `yaml:"listen_address"`

	// Channels is derived by Normalize; never set directly.
	Channels []Channel `yaml:"-"`
}

// Channel is one parsed frequency/modulation pair.
type Channel struct {
	FrequencyMHz uint32
	Modulation   int // 64 or 256
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Adapter:     0,
		Tuner:       0,
		Carbon:      "localhost:2003",
		Prefix:      "docsis",
		StepSeconds: 60,
		Frequencies: "546:256",
	}
}

// ApplyFile overlays the YAML file at path onto cfg. Fields the file
// does not declare keep their current values.
func ApplyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
