package mutation

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by Load when a newer Load started before this
// one finished. Its result was discarded.
var ErrSuperseded = errors.New("load superseded by a newer load")

// Op names a mutation.
type Op string

const (
	OpCreate Op = "create"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
)

// DivergenceError reports an optimistic change whose remote confirmation
// failed. Reverted tells whether the local change was rolled back.
// Superseded means later edits had already overwritten every field the
// failed edit set, so there was nothing of its own left to roll back.
type DivergenceError struct {
	Op         Op
	ID         int
	Reverted   bool
	Superseded bool
	Err        error
}

type outcome int

const (
	outcomeKept outcome = iota
	outcomeReverted
	outcomeSuperseded
)

func (e *DivergenceError) Error() string {
	state := "local change kept, store differs from the server"
	switch {
	case e.Reverted:
		state = "local change reverted"
	case e.Superseded:
		state = "local change already replaced by a later edit"
	}
	return fmt.Sprintf("%s %d failed (%s): %v", e.Op, e.ID, state, e.Err)
}

func (e *DivergenceError) Unwrap() error { return e.Err }
