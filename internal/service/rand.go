package service

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/ericogr/mtcg/internal/engine"
)

// lockedRand makes a *rand.Rand safe for concurrent battles.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// NewRand returns a seeded random source shared by battles and packages.
// A zero seed is replaced by a crypto seed, which is returned so it can be logged.
func NewRand(seed int64) (engine.Rand, int64, error) {
	if seed == 0 {
		var err error
		seed, err = newSeed()
		if err != nil {
			return nil, 0, err
		}
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}, seed, nil
}

func newSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
