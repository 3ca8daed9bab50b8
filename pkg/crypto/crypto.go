package crypto

import (
	"crypto/rand"
	"math/big"
)

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// RandRange returns a uniform random value in [a, b). It panics if got a
// non-positive parameter or a>=b.
func RandRange(a, b int) int {
	return RandIntn(b-a) + a
}

// RandPerm returns a uniform random permutation of [0, n).
func RandPerm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	for i := n - 1; i > 0; i-- {
		j := RandIntn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	return perm
}
