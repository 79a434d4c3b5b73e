// internal/meter/rate.go
package meter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kvollmer/dtm/internal/sampler"
)

// Rate converts a sample into bits per second. A zero elapsed time
// (channel locked but silent) has no defined rate; ok is false and the
// channel is skipped for the sweep.
func Rate(s sampler.Sample) (float64, bool) {
	if s.Elapsed <= 0 {
		return 0, false
	}
	return float64(s.Bytes) * 8 / s.Elapsed.Seconds(), true
}

// FormatLine renders one carbon sample: "prefix.modulation.frequency
// rate timestamp".
func FormatLine(prefix string, ch Channel, rate float64, ts time.Time) string {
	return fmt.Sprintf("%s.%s.%d %s %d",
		prefix,
		ch.Modulation.Label(),
		ch.FrequencyMHz,
		strconv.FormatFloat(rate, 'f', -1, 64),
		ts.Unix())
}
