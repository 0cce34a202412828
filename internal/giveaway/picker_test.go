package giveaway

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPickWinners_EdgeCases(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	assert.Nil(t, PickWinners(rng, nil, 3, nil))
	assert.Nil(t, PickWinners(rng, []Entrant{{UserID: "a", Weight: 1}}, 0, nil))

	// Fewer entrants than requested winners: everyone wins once.
	winners := PickWinners(rng, []Entrant{
		{UserID: "a", Weight: 1},
		{UserID: "b", Weight: 5},
	}, 5, nil)
	assert.ElementsMatch(t, []string{"a", "b"}, winners)

	// A fully excluded field yields no winners.
	winners = PickWinners(rng, []Entrant{
		{UserID: "a", Weight: 1},
	}, 1, map[string]bool{"a": true})
	assert.Empty(t, winners)
}

// Property: winners are unique, capped at count, drawn from the
// entrant pool, and never from the exclude set.
func TestPickWinners_Invariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		count := rapid.IntRange(1, 10).Draw(t, "count")
		n := rapid.IntRange(0, 20).Draw(t, "entrants")

		entrants := make([]Entrant, n)
		pool := make(map[string]bool, n)
		for i := range entrants {
			id := string(rune('a' + i))
			entrants[i] = Entrant{
				UserID: id,
				// Weight 0 exercises the minimum-of-1 clamp.
				Weight: rapid.IntRange(0, 8).Draw(t, "weight"),
			}
			pool[id] = true
		}

		exclude := map[string]bool{}
		for _, e := range entrants {
			if rapid.Bool().Draw(t, "excluded") {
				exclude[e.UserID] = true
			}
		}

		rng := rand.New(rand.NewSource(seed))
		winners := PickWinners(rng, entrants, count, exclude)

		if len(winners) > count {
			t.Fatalf("picked %d winners, wanted at most %d", len(winners), count)
		}

		seen := map[string]bool{}
		for _, w := range winners {
			if seen[w] {
				t.Fatalf("duplicate winner %q", w)
			}
			seen[w] = true
			if !pool[w] {
				t.Fatalf("winner %q is not an entrant", w)
			}
			if exclude[w] {
				t.Fatalf("excluded entrant %q won", w)
			}
		}

		// Eligible entrants left unpicked mean the draw stopped early.
		eligible := 0
		for _, e := range entrants {
			if !exclude[e.UserID] {
				eligible++
			}
		}
		expected := count
		if eligible < expected {
			expected = eligible
		}
		if len(winners) != expected {
			t.Fatalf("picked %d winners from %d eligible, wanted %d", len(winners), eligible, expected)
		}
	})
}

// A heavily weighted entrant should win the single slot far more often
// than a fair draw would allow. Fixed seed keeps the test stable.
func TestPickWinners_WeightBias(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	entrants := []Entrant{
		{UserID: "whale", Weight: 20},
		{UserID: "minnow", Weight: 1},
	}

	whaleWins := 0
	for i := 0; i < 500; i++ {
		winners := PickWinners(rng, entrants, 1, nil)
		if len(winners) == 1 && winners[0] == "whale" {
			whaleWins++
		}
	}

	// Expected ~95%; anything above 85% confirms the bias.
	assert.Greater(t, whaleWins, 425)
}

func TestEntryWeight(t *testing.T) {
	tests := []struct {
		name        string
		premium     bool
		booster     bool
		premiumOdds int
		boosterOdds int
		want        int
	}{
		{"plain member", false, false, 3, 2, 1},
		{"premium only", true, false, 3, 2, 3},
		{"booster only", false, true, 3, 2, 2},
		{"both stack multiplicatively", true, true, 3, 2, 6},
		{"disabled odds leave weight at one", true, true, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EntryWeight(tt.premium, tt.booster, tt.premiumOdds, tt.boosterOdds))
		})
	}
}
