// Package timex extends time.Duration parsing with a day unit so that
// token lifetimes can be configured as "15m" or "30d".
package timex

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is the length of the "d" unit accepted by ParseDuration.
const Day = 24 * time.Hour

// Duration wraps time.Duration for config decoding. It accepts Go duration
// strings, a trailing "d" for days, or a number of seconds. A JSON number is
// seconds too, so "900" and 900 mean the same thing.
type Duration struct {
	time.Duration
}

// ParseDuration parses s like time.ParseDuration and additionally supports
// whole or fractional days ("30d", "1.5d"). A bare integer is read as seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("timex: empty duration")
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
		if err != nil {
			return 0, fmt.Errorf("timex: invalid duration %q: %w", s, err)
		}
		return time.Duration(days * float64(Day)), nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("timex: invalid duration %q: %w", s, err)
	}
	return d, nil
}

// SetValue implements cleanenv.Setter for values read from the environment.
func (d *Duration) SetValue(s string) error {
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// UnmarshalText is used by YAML decoding and flag helpers.
func (d *Duration) UnmarshalText(b []byte) error {
	return d.SetValue(string(b))
}

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value * float64(time.Second))
		return nil
	case string:
		return d.SetValue(value)
	default:
		return fmt.Errorf("timex: invalid duration %s", string(b))
	}
}

// MarshalJSON writes the Go duration string, e.g. "15m0s".
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
