// Property-based tests for the claim-window logic shared by the daily
// and work commands.
package service

import (
	"testing"
	"time"

	"pgregory.net/rapid"
)

// claimWindowRemaining mirrors the window check in ClaimDaily and
// ClaimWork: a claim is allowed when there is no previous claim, the
// window is disabled, or the window has fully elapsed. Otherwise the
// remaining wait is returned.
func claimWindowRemaining(lastClaimed *time.Time, windowMinutes int, now time.Time) (bool, time.Duration) {
	window := time.Duration(windowMinutes) * time.Minute
	if lastClaimed == nil || window <= 0 {
		return true, 0
	}
	elapsed := now.Sub(*lastClaimed)
	if elapsed < window {
		return false, window - elapsed
	}
	return true, 0
}

// Property: a first claim always succeeds, a claim inside the window
// is rejected with the exact remaining wait, and a claim at or past
// the boundary succeeds.
func TestClaimWindowProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		windowMinutes := rapid.IntRange(1, 48*60).Draw(t, "windowMinutes")
		minutesAgo := rapid.IntRange(0, 96*60).Draw(t, "minutesAgo")

		now := time.Now()
		last := now.Add(-time.Duration(minutesAgo) * time.Minute)

		ok, remaining := claimWindowRemaining(&last, windowMinutes, now)

		if minutesAgo >= windowMinutes {
			if !ok {
				t.Fatalf("claim %dm after last with %dm window should succeed", minutesAgo, windowMinutes)
			}
			if remaining != 0 {
				t.Fatalf("eligible claim reported %v remaining", remaining)
			}
		} else {
			if ok {
				t.Fatalf("claim %dm after last with %dm window should be rejected", minutesAgo, windowMinutes)
			}
			expected := time.Duration(windowMinutes-minutesAgo) * time.Minute
			if remaining != expected {
				t.Fatalf("remaining wait mismatch: expected %v, got %v", expected, remaining)
			}
		}
	})
}

// Property: users who never claimed and disabled windows always pass.
func TestClaimWindowAlwaysOpenProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		windowMinutes := rapid.IntRange(-10, 48*60).Draw(t, "windowMinutes")
		now := time.Now()

		if ok, _ := claimWindowRemaining(nil, windowMinutes, now); !ok {
			t.Fatal("a first claim must always succeed")
		}

		last := now.Add(-time.Minute)
		if ok, _ := claimWindowRemaining(&last, 0, now); !ok {
			t.Fatal("a disabled window must never reject")
		}
	})
}
