package services

import (
	"SurgiFlow/apperrors"
	"strings"
	"time"
)

const clockLayout = "15:04"

// parseClock parses a same-day wall-clock time such as "10:15".
func parseClock(field, value string) (time.Time, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperrors.BadRequest("invalid %s %q, expected HH:MM", field, value)
	}
	return t, nil
}

// normalizeClock returns value in canonical "HH:MM" form. Empty input means
// the time is cleared and yields nil.
func normalizeClock(field string, value *string) (*string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseClock(field, *value)
	if err != nil {
		return nil, err
	}
	s := t.Format(clockLayout)
	return &s, nil
}

// minutesBetween subtracts two same-day clock values. There is no day
// rollover, so a closing time past midnight comes out negative.
func minutesBetween(cutting, closing string) (int, error) {
	start, err := parseClock("cutting_time", cutting)
	if err != nil {
		return 0, err
	}
	end, err := parseClock("closing_time", closing)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start) / time.Minute), nil
}

// computeDuration returns nil when either time is missing and rejects a
// closing time that is not strictly after the cutting time.
func computeDuration(cutting, closing *string) (*int, error) {
	if cutting == nil || closing == nil {
		return nil, nil
	}
	minutes, err := minutesBetween(*cutting, *closing)
	if err != nil {
		return nil, err
	}
	if minutes <= 0 {
		return nil, apperrors.BadRequest("closing_time must be after cutting_time")
	}
	return &minutes, nil
}
