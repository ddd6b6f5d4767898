// Package strategy provides composable random value generators. A Strategy
// captures what to generate and with which parameters; sampling it draws a
// fresh value from the shared random source each time.
package strategy

import "errors"

// ErrDiscard signals that a sampled candidate should be dropped and the
// attempt retried. List treats it as a failed attempt rather than an abort.
var ErrDiscard = errors.New("discard candidate")

// Strategy is a deferred, parameterized value producer.
type Strategy interface {
	Sample(gc *Context) (any, error)
}

// Func adapts a plain function to a Strategy.
type Func func(gc *Context) (any, error)

// Sample implements Strategy.
func (f Func) Sample(gc *Context) (any, error) { return f(gc) }
