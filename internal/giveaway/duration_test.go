package giveaway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"seconds", "30s", 30 * time.Second},
		{"minutes", "10m", 10 * time.Minute},
		{"hours", "2h", 2 * time.Hour},
		{"days", "1d", 24 * time.Hour},
		{"weeks", "1w", 7 * 24 * time.Hour},
		{"multi-digit", "120m", 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty string", "", ErrEmptyDuration},
		{"bare number has no unit", "30", ErrMissingUnit},
		{"unknown unit", "5y", ErrInvalidDuration},
		{"unit without digits", "h", ErrInvalidDuration},
		{"zero amount", "0m", ErrInvalidDuration},
		{"negative amount", "-5m", ErrInvalidDuration},
		{"garbage digits", "a5m", ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDuration(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
