package leveling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestXPForLevel_KnownPoints(t *testing.T) {
	// Level 1 is free; level 2 costs the first increment.
	assert.Equal(t, int64(0), XPForLevel(1))
	assert.Equal(t, int64(0), XPForLevel(0))
	assert.Equal(t, int64(229), XPForLevel(2)) // floor(100 * 2^1.2)

	// Above the cap the requirement flattens.
	assert.Equal(t, XPForLevel(MaxLevel), XPForLevel(MaxLevel+50))
}

// Property: the curve round-trips. Holding exactly the XP required for
// level L places you at level L, and one point less keeps you below.
func TestLevelFromXP_RoundTripsWithXPForLevel(t *testing.T) {
	for level := 1; level <= MaxLevel; level++ {
		assert.Equal(t, level, LevelFromXP(XPForLevel(level)),
			"exact requirement for level %d", level)
		if level > 1 {
			assert.Equal(t, level-1, LevelFromXP(XPForLevel(level)-1),
				"one XP short of level %d", level)
		}
	}
}

// Property: levels are monotone in XP and never exceed the cap.
func TestLevelFromXP_Monotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Int64Range(0, 10_000_000).Draw(t, "a")
		b := rapid.Int64Range(0, 10_000_000).Draw(t, "b")
		if a > b {
			a, b = b, a
		}

		la, lb := LevelFromXP(a), LevelFromXP(b)
		if la > lb {
			t.Fatalf("level decreased: xp %d -> level %d, xp %d -> level %d", a, la, b, lb)
		}
		if lb > MaxLevel {
			t.Fatalf("level %d exceeds cap", lb)
		}
	})
}

func TestLevelFromXP_NegativeXP(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(-100))
}

// Property: XPToNext is exactly the gap to the next threshold, and
// adding it always levels you up (except at cap, where it is zero).
func TestXPToNext_ClosesTheGap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		xp := rapid.Int64Range(0, XPForLevel(MaxLevel)+1000).Draw(t, "xp")

		level := LevelFromXP(xp)
		toNext := XPToNext(xp)

		if level >= MaxLevel {
			if toNext != 0 {
				t.Fatalf("at cap but XPToNext = %d", toNext)
			}
			return
		}

		if toNext <= 0 {
			t.Fatalf("below cap but XPToNext = %d", toNext)
		}
		if got := LevelFromXP(xp + toNext); got != level+1 {
			t.Fatalf("adding XPToNext from level %d landed on level %d", level, got)
		}
		if got := LevelFromXP(xp + toNext - 1); got != level {
			t.Fatalf("one short of XPToNext left level %d, got %d", level, got)
		}
	})
}

func TestCrossedRewardLevels(t *testing.T) {
	tests := []struct {
		name     string
		oldLevel int
		newLevel int
		want     []int
	}{
		{"no threshold crossed", 3, 4, nil},
		{"single threshold", 4, 5, []int{5}},
		{"landing past a threshold", 4, 7, []int{5}},
		{"multi-level jump spans several", 9, 21, []int{10, 15, 20}},
		{"starting on a threshold does not recount it", 5, 9, nil},
		{"no movement", 10, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CrossedRewardLevels(tt.oldLevel, tt.newLevel))
		})
	}
}

// Property: every crossed reward level is a multiple of 5 strictly
// inside (old, new].
func TestCrossedRewardLevels_Bounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		oldLevel := rapid.IntRange(1, MaxLevel).Draw(t, "old")
		newLevel := rapid.IntRange(oldLevel, MaxLevel).Draw(t, "new")

		for _, l := range CrossedRewardLevels(oldLevel, newLevel) {
			if l%5 != 0 {
				t.Fatalf("non-threshold level %d reported", l)
			}
			if l <= oldLevel || l > newLevel {
				t.Fatalf("level %d outside (%d, %d]", l, oldLevel, newLevel)
			}
		}
	})
}

func TestApplyMultiplier(t *testing.T) {
	tests := []struct {
		name       string
		xp         int64
		multiplier float64
		want       int64
	}{
		{"identity", 20, 1.0, 20},
		{"premium doubles", 20, 2.0, 40},
		{"booster rounds down", 15, 1.5, 22},
		{"stacked boost", 15, 3.0, 45},
		{"zero multiplier", 20, 0, 0},
		{"negative multiplier clamps to zero", 20, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyMultiplier(tt.xp, tt.multiplier))
		})
	}
}

// Property: sampled text XP stays within [base, min(base+bonus, cap)].
func TestSampleTextXP_Bounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		base := rapid.Int64Range(1, 100).Draw(t, "base")
		bonus := rapid.Int64Range(0, 100).Draw(t, "bonus")
		cap := rapid.Int64Range(1, 300).Draw(t, "cap")

		rng := rand.New(rand.NewSource(seed))
		xp := SampleTextXP(rng, base, bonus, cap)

		lower := base
		if lower > cap {
			lower = cap
		}
		upper := base + bonus
		if upper > cap {
			upper = cap
		}
		if xp < lower || xp > upper {
			t.Fatalf("xp %d outside [%d, %d] (base=%d bonus=%d cap=%d)", xp, lower, upper, base, bonus, cap)
		}
	})
}

func TestVoiceXP(t *testing.T) {
	tests := []struct {
		name     string
		minutes  int64
		occupied bool
		want     int64
	}{
		{"solo session earns base only", 10, false, 50},
		{"shared session earns the bonus", 10, true, 80},
		{"zero minutes earns nothing", 0, true, 0},
		{"negative minutes earns nothing", -5, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VoiceXP(tt.minutes, 5, 3, tt.occupied))
		})
	}
}
