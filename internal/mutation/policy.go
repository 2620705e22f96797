package mutation

import (
	"fmt"
	"strings"
)

// Policy decides what happens to an optimistic edit or delete whose
// remote call failed.
type Policy int

const (
	// PolicyRevert restores the local state to what it was before the
	// optimistic change.
	PolicyRevert Policy = iota
	// PolicyKeep leaves the optimistic change in place. Local and remote
	// state stay diverged until the next reload.
	PolicyKeep
)

// DefaultPolicy is PolicyRevert.
const DefaultPolicy = PolicyRevert

func (p Policy) String() string {
	switch p {
	case PolicyKeep:
		return "keep"
	default:
		return "revert"
	}
}

// ParsePolicy maps "keep" and "revert" to a Policy. Empty input yields
// DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "revert", "rollback":
		return PolicyRevert, nil
	case "keep":
		return PolicyKeep, nil
	default:
		return DefaultPolicy, fmt.Errorf("unknown mutation policy %q (want keep or revert)", s)
	}
}
