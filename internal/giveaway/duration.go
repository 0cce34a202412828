// Package giveaway implements the pure pieces of the giveaway engine:
// duration parsing and weighted winner selection.
package giveaway

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Duration parsing errors.
var (
	ErrEmptyDuration   = errors.New("duration is empty")
	ErrMissingUnit     = errors.New("duration is missing a unit")
	ErrInvalidDuration = errors.New("invalid duration")
)

// ParseDuration parses strings of the form "<int><s|m|h|d|w>",
// e.g. "30s", "10m", "2h", "1d", "1w".
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, ErrEmptyDuration
	}

	unit := s[len(s)-1]
	digits := s[:len(s)-1]
	if digits == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	default:
		if unit >= '0' && unit <= '9' {
			return 0, fmt.Errorf("%w: %q", ErrMissingUnit, s)
		}
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidDuration, string(unit))
	}
}
