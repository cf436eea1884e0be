package seed

import (
	"math/rand"
	"time"

	"github.com/samber/do"
)

// Max is the largest seed the Titan image model accepts.
const Max = 2147483646

// Randomizer draws generation seeds uniformly from [0, Max]. A fresh
// seed per invocation means repeated prompts do not reproduce the
// same image.
type Randomizer struct {
	rnd *rand.Rand
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	return &Randomizer{rand.New(rand.NewSource(time.Now().UTC().UnixNano()))}, nil
}

func (r *Randomizer) Seed() int64 {
	return r.rnd.Int63n(Max + 1)
}
