// Package drop implements the pure sampling logic of the coin-drop
// scheduler: rarity tiers, collection modes, and claim payouts.
package drop

import "math/rand"

// Rarity tiers, rarest last.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Collection modes.
const (
	ModeStandard  = "standard"
	ModeQuickGrab = "quick_grab"
	ModeLuckyGrab = "lucky_grab"
)

// QuickGrabBonusSlots is how many claims earn the quick-grab bonus
// before the drop terminates.
const QuickGrabBonusSlots = 3

// MinAmount is the floor for a sampled drop amount.
const MinAmount = 50

// rarityWeights are cumulative sampling weights out of 100.
var rarityWeights = []struct {
	rarity string
	weight int
}{
	{RarityCommon, 84},
	{RarityRare, 10},
	{RarityEpic, 5},
	{RarityLegendary, 1},
}

// modeWeights are cumulative sampling weights out of 100.
var modeWeights = []struct {
	mode   string
	weight int
}{
	{ModeStandard, 60},
	{ModeQuickGrab, 25},
	{ModeLuckyGrab, 15},
}

// RarityMultiplier returns the base-amount multiplier for a rarity.
func RarityMultiplier(rarity string) int64 {
	switch rarity {
	case RarityRare:
		return 3
	case RarityEpic:
		return 5
	case RarityLegendary:
		return 10
	default:
		return 1
	}
}

// ModeEmoji returns the reaction emoji announcing a collection mode.
func ModeEmoji(mode string) string {
	switch mode {
	case ModeQuickGrab:
		return "⚡"
	case ModeLuckyGrab:
		return "🍀"
	default:
		return "💰"
	}
}

// SampleRarity draws a rarity by cumulative weighted probability.
func SampleRarity(rng *rand.Rand) string {
	roll := rng.Intn(100)
	for _, rw := range rarityWeights {
		if roll < rw.weight {
			return rw.rarity
		}
		roll -= rw.weight
	}
	return RarityCommon
}

// SampleMode draws a collection mode by cumulative weighted probability.
func SampleMode(rng *rand.Rand) string {
	roll := rng.Intn(100)
	for _, mw := range modeWeights {
		if roll < mw.weight {
			return mw.mode
		}
		roll -= mw.weight
	}
	return ModeStandard
}

// SampleAmount computes a drop's coin amount: base times the rarity
// multiplier, perturbed by a uniform jitter in [-25, +25], floored at
// MinAmount.
func SampleAmount(rng *rand.Rand, base int64, rarity string) int64 {
	amount := base * RarityMultiplier(rarity)
	amount += rng.Int63n(51) - 25
	if amount < MinAmount {
		amount = MinAmount
	}
	return amount
}

// ClaimPayout computes a single claim's payout for a drop of the given
// amount and mode. priorCollectors is how many users claimed before
// this one. Lucky-grab pays 1.5x with probability 0.3 per claim.
// The booster bonus multiplies the result by 1.5. Floor is 1.
func ClaimPayout(rng *rand.Rand, mode string, amount int64, priorCollectors int, booster bool) int64 {
	payout := float64(amount)

	switch mode {
	case ModeQuickGrab:
		if priorCollectors < QuickGrabBonusSlots {
			payout *= 2.0
		}
	case ModeLuckyGrab:
		if rng.Float64() < 0.3 {
			payout *= 1.5
		}
	}

	if booster {
		payout *= 1.5
	}

	result := int64(payout)
	if result < 1 {
		result = 1
	}
	return result
}
