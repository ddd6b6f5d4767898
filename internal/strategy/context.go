package strategy

import (
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
)

// Context carries the random source, the fake-data provider and the
// diagnostics sink through every strategy invocation. A Context is not safe
// for concurrent use; one generation run owns one Context.
type Context struct {
	Rand  *rand.Rand
	Faker *gofakeit.Faker
	Diags *Diagnostics
}

// NewContext builds a Context seeded with seed. A zero seed picks a
// time-based one, so runs are reproducible only when a seed is given.
func NewContext(seed int64, logger *zap.Logger) *Context {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Context{
		Rand:  rand.New(rand.NewSource(seed)),
		Faker: gofakeit.New(seed),
		Diags: NewDiagnostics(logger),
	}
}
