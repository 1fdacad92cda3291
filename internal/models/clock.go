package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day with minute precision, stored as
// minutes since midnight. Schedules are always "today", so there is no
// date component.
type Clock int

// NoClock marks an entry whose airtime could not be determined.
const NoClock Clock = -1

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses "HH:MM" (also accepts "H:MM").
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return NoClock, fmt.Errorf("invalid clock value %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return NoClock, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return NoClock, fmt.Errorf("invalid minute in %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return NoClock, fmt.Errorf("clock value %q out of range", s)
	}

	return NewClock(hour, minute), nil
}

// ClockOf extracts the time of day from t.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func (c Clock) Valid() bool {
	return c >= 0 && c < 24*60
}

func (c Clock) Hour() int {
	return int(c) / 60
}

func (c Clock) Minute() int {
	return int(c) % 60
}

func (c Clock) String() string {
	if !c.Valid() {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

func (c *Clock) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid clock json: %w", err)
	}
	if s == "" {
		*c = NoClock
		return nil
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
