// Package guard provides the reentrancy guard around vault operations.
package guard

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/go-petr/pet-vault/internal/domain"
)

// Guard is a single busy flag. Entering a busy guard fails immediately,
// it never waits for the flag to clear.
type Guard struct {
	busy *atomic.Bool
}

// New returns an idle guard.
func New() *Guard {
	return &Guard{busy: atomic.NewBool(false)}
}

// Enter marks the guard busy and returns the function that releases it.
//
// It fails with domain.ErrReentrancyDetected when the guard is already busy.
// The release function is safe to call more than once and is meant to be deferred
// right after a successful Enter.
func (g *Guard) Enter() (release func(), err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return func() {}, domain.ErrReentrancyDetected
	}

	var once sync.Once

	return func() {
		once.Do(func() { g.busy.Store(false) })
	}, nil
}

// Busy reports whether a guarded call is in flight.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
