// Package service provides business logic implementations.
package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across services. Handlers map these onto
// user-facing replies; anything else is reported generically.
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotFound           = errors.New("not found")
	ErrBadInput           = errors.New("bad input")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrAlreadyParticipant = errors.New("already participating")
)

// CooldownError reports an action attempted before its window elapsed.
type CooldownError struct {
	Action   string
	TimeLeft time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s is on cooldown for %s", e.Action, FormatDuration(e.TimeLeft))
}

// EligibilityError reports a giveaway entry rejected by its
// requirements chain.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string {
	return e.Reason
}

// FormatDuration renders a duration as a compact human string,
// rounding up so a user never retries too early.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
