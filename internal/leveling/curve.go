// Package leveling implements the XP accrual math and the progressive
// level curve shared by the text and voice streams.
package leveling

import "math"

// MaxLevel is the level cap. XP keeps accumulating past it for display,
// but no further level transitions occur.
const MaxLevel = 100

// xpForLevel returns the XP increment needed to go from level L-1 to L.
// The curve is piecewise: cheap early levels, steep late ones.
func xpForLevel(level int) int64 {
	l := float64(level)
	switch {
	case level < 2:
		return 0
	case level <= 10:
		return int64(math.Floor(100 * math.Pow(l, 1.2)))
	case level <= 30:
		return int64(math.Floor(150 * math.Pow(l, 1.3)))
	case level <= 60:
		return int64(math.Floor(200 * math.Pow(l, 1.4)))
	default:
		return int64(math.Floor(300 * math.Pow(l, 1.5)))
	}
}

// cumulative[L] is the total XP required to reach level L.
// cumulative[1] = 0: everyone starts at level 1.
var cumulative [MaxLevel + 1]int64

func init() {
	for level := 2; level <= MaxLevel; level++ {
		cumulative[level] = cumulative[level-1] + xpForLevel(level)
	}
}

// XPForLevel returns the total XP required to reach the given level.
// Levels above the cap report the cap's requirement.
func XPForLevel(level int) int64 {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return cumulative[level]
}

// LevelFromXP returns the level reached with the given total XP,
// capped at MaxLevel.
func LevelFromXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	// Walk the cumulative table; 100 entries, no need for binary search.
	level := 1
	for level < MaxLevel && xp >= cumulative[level+1] {
		level++
	}
	return level
}

// XPToNext returns the XP still needed for the next level, or 0 at cap.
func XPToNext(xp int64) int64 {
	level := LevelFromXP(xp)
	if level >= MaxLevel {
		return 0
	}
	return cumulative[level+1] - xp
}

// CrossedRewardLevels returns the levels in (oldLevel, newLevel] that
// are multiples of 5, the thresholds eligible for a role reward.
func CrossedRewardLevels(oldLevel, newLevel int) []int {
	var crossed []int
	for level := oldLevel + 1; level <= newLevel; level++ {
		if level%5 == 0 {
			crossed = append(crossed, level)
		}
	}
	return crossed
}

// ApplyMultiplier scales an XP gain by a role-derived multiplier,
// rounding down.
func ApplyMultiplier(xp int64, multiplier float64) int64 {
	if multiplier <= 0 {
		return 0
	}
	return int64(math.Floor(float64(xp) * multiplier))
}
