package leveling

import "math/rand"

// SampleTextXP draws the raw XP for one message: base plus a uniform
// bonus in [0, bonus], capped at maxPerMessage. Multipliers are applied
// by the caller after sampling.
func SampleTextXP(rng *rand.Rand, base, bonus, maxPerMessage int64) int64 {
	xp := base
	if bonus > 0 {
		xp += rng.Int63n(bonus + 1)
	}
	if maxPerMessage > 0 && xp > maxPerMessage {
		xp = maxPerMessage
	}
	return xp
}

// VoiceXP computes the raw XP for a closed voice session of the given
// whole minutes. Sessions that had at least two non-bot members earn
// the per-minute bonus on top of the base rate.
func VoiceXP(minutes, base, bonus int64, occupied bool) int64 {
	if minutes <= 0 {
		return 0
	}
	xp := base * minutes
	if occupied {
		xp += bonus * minutes
	}
	return xp
}
