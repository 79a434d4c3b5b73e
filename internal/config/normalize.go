// internal/config/normalize.go
package config

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultCarbonPort = "2003"

// Normalize derives runtime values from the raw configuration. It is
// allowed to mutate cfg and MUST be called before Validate():
//   - parses the frequency list into Channels
//   - appends the default carbon port when none is given
func Normalize(cfg *Config) error {
	channels, err := parseFrequencies(cfg.Frequencies)
	if err != nil {
		return err
	}
	cfg.Channels = channels

	if cfg.Carbon != "" && !strings.Contains(cfg.Carbon, ":") {
		cfg.Carbon = cfg.Carbon + ":" + defaultCarbonPort
	}

	return nil
}

// parseFrequencies parses "546:256,554:64,562" (bare frequencies
// default to QAM256).
func parseFrequencies(list string) ([]Channel, error) {
	var channels []Channel
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		freqPart, modPart, hasMod := strings.Cut(entry, ":")
		freq, err := strconv.ParseUint(freqPart, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("config: frequency %q is not an integer", freqPart)
		}

		mod := 256
		if hasMod {
			mod, err = strconv.Atoi(modPart)
			if err != nil || (mod != 64 && mod != 256) {
				return nil, fmt.Errorf("config: invalid modulation QAM_%s for frequency %s", modPart, freqPart)
			}
		}

		channels = append(channels, Channel{
			FrequencyMHz: uint32(freq),
			Modulation:   mod,
		})
	}
	return channels, nil
}
