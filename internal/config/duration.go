package config

import (
	"fmt"
	"strconv"
	"time"
)

// ParseDuration accepts Go durations ("45m", "1h30m") or whole seconds
// ("900"), the unit STS itself uses for DurationSeconds.
func ParseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: want a duration like 1h or a number of seconds", s)
	}
	return time.Duration(secs) * time.Second, nil
}
