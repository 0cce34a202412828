package handler

import (
	"errors"
	"fmt"

	"discord-companion-bot/internal/service"
)

// renderError maps a service error onto a user-facing reply. Unknown
// errors get a generic line; the caller logs the original.
func renderError(err error) string {
	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		return fmt.Sprintf("⏰ Slow down! Try again in **%s**.", service.FormatDuration(cooldown.TimeLeft))
	}

	var elig *service.EligibilityError
	if errors.As(err, &elig) {
		return fmt.Sprintf("🚫 %s", elig.Reason)
	}

	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return "💸 You don't have enough coins for that."
	case errors.Is(err, service.ErrBadInput):
		return fmt.Sprintf("❌ %s", trimSentinel(err, service.ErrBadInput))
	case errors.Is(err, service.ErrNotFound):
		return fmt.Sprintf("❓ %s", trimSentinel(err, service.ErrNotFound))
	case errors.Is(err, service.ErrPermissionDenied):
		return "🔒 You don't have permission to do that."
	default:
		return "⚠️ Something went wrong, please try again later."
	}
}

// trimSentinel strips the "bad input: " style prefix so replies read
// naturally, falling back to the full message.
func trimSentinel(err, sentinel error) string {
	full := err.Error()
	prefix := sentinel.Error() + ": "
	if len(full) > len(prefix) && full[:len(prefix)] == prefix {
		return full[len(prefix):]
	}
	return full
}
