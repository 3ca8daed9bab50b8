package giveawayengine

import (
	"github.com/guildify-lab/backend/pkg/crypto"
)

// SampleWinners selects winnerCount distinct winners uniformly from the
// eligible set. No weighting is applied. It returns false when the pool is
// too small; that is a defined terminal outcome carrying zero winners, never
// a partial list.
func SampleWinners(eligible []Candidate, winnerCount int) ([]Candidate, bool) {
	if len(eligible) < winnerCount {
		return nil, false
	}

	if winnerCount == 1 {
		return []Candidate{eligible[crypto.RandIntn(len(eligible))]}, true
	}

	winners := make([]Candidate, 0, winnerCount)
	for _, index := range crypto.RandPerm(len(eligible))[:winnerCount] {
		winners = append(winners, eligible[index])
	}

	return winners, true
}
