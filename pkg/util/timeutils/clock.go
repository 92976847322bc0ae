package timeutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ClockLayout is the HH:MM wall-clock form reminders are stored in.
	ClockLayout = "15:04"
	// MinuteLayout identifies one calendar minute.
	MinuteLayout = "2006-01-02T15:04"
)

func isDigits(str string) bool {
	for _, r := range str {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ClockTime formats t as HH:MM in its own location.
func ClockTime(t time.Time) string {
	return t.Format(ClockLayout)
}

// MinuteKey formats t as a calendar minute in its own location.
func MinuteKey(t time.Time) string {
	return t.Format(MinuteLayout)
}

// NormalizeClock parses an H:MM or HH:MM value and returns it zero padded.
func NormalizeClock(value string) (string, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", value, err)
	}
	return t.Format(ClockLayout), nil
}

// ParseOffset parses a fixed UTC offset like "+05:30", "-03:00", "0530" or "Z"
// and returns the matching fixed zone.
func ParseOffset(value string) (*time.Location, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "Z" || strings.EqualFold(value, "UTC") {
		return time.UTC, nil
	}

	sign := 1
	switch value[0] {
	case '+':
		value = value[1:]
	case '-':
		sign = -1
		value = value[1:]
	}

	digits := strings.ReplaceAll(value, ":", "")
	if (len(digits) != 2 && len(digits) != 4) || !isDigits(digits) {
		return nil, fmt.Errorf("invalid UTC offset %q", value)
	}

	hours, _ := strconv.Atoi(digits[:2])
	minutes := 0
	if len(digits) == 4 {
		minutes, _ = strconv.Atoi(digits[2:])
	}
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("invalid UTC offset %q", value)
	}

	signChar := "+"
	if sign < 0 {
		signChar = "-"
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", signChar, hours, minutes)
	return time.FixedZone(name, sign*(hours*3600+minutes*60)), nil
}
