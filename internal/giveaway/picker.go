package giveaway

import "math/rand"

// Entrant is one user's weighted stake in the selection bag.
type Entrant struct {
	UserID string
	Weight int
}

// PickWinners performs weighted selection without replacement: each
// entrant contributes Weight replicas to a bag; one replica is drawn,
// all replicas of that user are removed, and the draw repeats until
// count unique winners are chosen or the bag is empty. Entrants in the
// exclude set never win (prior winners on reroll).
func PickWinners(rng *rand.Rand, entrants []Entrant, count int, exclude map[string]bool) []string {
	if count <= 0 {
		return nil
	}

	bag := make([]string, 0, len(entrants))
	for _, e := range entrants {
		if exclude[e.UserID] {
			continue
		}
		weight := e.Weight
		if weight < 1 {
			weight = 1
		}
		for i := 0; i < weight; i++ {
			bag = append(bag, e.UserID)
		}
	}

	var winners []string
	for len(winners) < count && len(bag) > 0 {
		winner := bag[rng.Intn(len(bag))]
		winners = append(winners, winner)

		remaining := bag[:0]
		for _, id := range bag {
			if id != winner {
				remaining = append(remaining, id)
			}
		}
		bag = remaining
	}

	return winners
}

// EntryWeight computes the multiplicative entry weight for a user:
// premium and booster multipliers stack, minimum 1.
func EntryWeight(premium, booster bool, premiumOdds, boosterOdds int) int {
	weight := 1
	if premium && premiumOdds > 0 {
		weight *= premiumOdds
	}
	if booster && boosterOdds > 0 {
		weight *= boosterOdds
	}
	if weight < 1 {
		weight = 1
	}
	return weight
}
