package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds only", 45 * time.Second, "45s"},
		{"minutes and seconds", 3*time.Minute + 20*time.Second, "3m 20s"},
		{"hours", 2*time.Hour + 5*time.Minute + 1*time.Second, "2h 5m 1s"},
		{"days drop seconds", 26*time.Hour + 30*time.Minute, "1d 2h 30m"},
		{"zero", 0, "0s"},
		{"negative clamps to zero", -5 * time.Second, "0s"},
		{"sub-second rounds", 400 * time.Millisecond, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestCooldownError_Message(t *testing.T) {
	err := &CooldownError{Action: "daily", TimeLeft: 90 * time.Second}
	assert.Equal(t, "daily is on cooldown for 1m 30s", err.Error())
}
