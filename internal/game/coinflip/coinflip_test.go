package coinflip

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew_Defaults(t *testing.T) {
	c := New(nil)
	assert.Equal(t, int64(DefaultMinBet), c.MinBet())
	assert.Equal(t, int64(DefaultMaxBet), c.MaxBet())
	assert.Equal(t, "coinflip", c.Command())

	c = New(&Config{MinBet: 50, MaxBet: 1000})
	assert.Equal(t, int64(50), c.MinBet())
	assert.Equal(t, int64(1000), c.MaxBet())
}

func TestValidateChoice(t *testing.T) {
	c := New(nil)

	assert.NoError(t, c.ValidateChoice("heads"))
	assert.NoError(t, c.ValidateChoice("tails"))
	assert.ErrorIs(t, c.ValidateChoice("edge"), ErrInvalidChoice)
	assert.ErrorIs(t, c.ValidateChoice(""), ErrInvalidChoice)
	assert.ErrorIs(t, c.ValidateChoice("Heads"), ErrInvalidChoice)
}

func TestPlay_RejectsInvalidChoice(t *testing.T) {
	c := New(nil)
	_, err := c.Play(context.Background(), "user1", 100, "sideways", false)
	assert.ErrorIs(t, err, ErrInvalidChoice)
}

// Property: every flip settles at exactly plus or minus the bet, and
// the reported landing side agrees with the outcome.
func TestPlay_Settlement(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		bet := rapid.Int64Range(1, 5000).Draw(t, "bet")
		choice := []string{"heads", "tails"}[rapid.IntRange(0, 1).Draw(t, "choice")]
		lucky := rapid.Bool().Draw(t, "lucky")

		c := New(&Config{Rand: rand.New(rand.NewSource(seed))})
		result, err := c.Play(context.Background(), "user1", bet, choice, lucky)
		if err != nil {
			t.Fatalf("play failed: %v", err)
		}

		if result.Win {
			if result.Payout != bet {
				t.Fatalf("win paid %d, wanted %d", result.Payout, bet)
			}
			if result.Details["landed"] != choice {
				t.Fatalf("won but landed on %v, picked %s", result.Details["landed"], choice)
			}
		} else {
			if result.Payout != -bet {
				t.Fatalf("loss settled %d, wanted %d", result.Payout, -bet)
			}
			if result.Details["landed"] == choice {
				t.Fatal("lost but the coin landed on the pick")
			}
		}
	})
}

// With a fixed seed the flip sequence is reproducible.
func TestPlay_Deterministic(t *testing.T) {
	play := func() []int64 {
		c := New(&Config{Rand: rand.New(rand.NewSource(99))})
		var payouts []int64
		for i := 0; i < 20; i++ {
			result, err := c.Play(context.Background(), "user1", 100, "heads", false)
			require.NoError(t, err)
			payouts = append(payouts, result.Payout)
		}
		return payouts
	}

	assert.Equal(t, play(), play())
}

// Luck should visibly shift the win rate: 0.6 vs 0.5 over many flips.
func TestPlay_LuckShiftsOdds(t *testing.T) {
	winRate := func(lucky bool) int {
		c := New(&Config{Rand: rand.New(rand.NewSource(7))})
		wins := 0
		for i := 0; i < 5000; i++ {
			result, err := c.Play(context.Background(), "user1", 100, "heads", lucky)
			require.NoError(t, err)
			if result.Win {
				wins++
			}
		}
		return wins
	}

	base := winRate(false)
	boosted := winRate(true)

	// ~2500 vs ~3000 expected; a 250-flip margin keeps it stable.
	assert.Greater(t, boosted, base+250)
}
