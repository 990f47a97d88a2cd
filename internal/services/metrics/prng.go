package metrics

import (
	"encoding/hex"
	"hash/fnv"
	"math/rand/v2"
)

// seededRand returns a PCG source keyed by the FNV-64a hash of name, so the
// same name always yields the same sequence across runs and processes
func seededRand(name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	seed := h.Sum64()
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// dayOffset returns a stable offset in [1, span] for name
func dayOffset(name string, span int) int {
	return seededRand(name).IntN(span) + 1
}

// stableID derives a short hex id from the given parts
func stableID(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
