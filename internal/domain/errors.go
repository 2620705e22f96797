package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound   = errors.New("not found")
	ErrNoID       = errors.New("record has no id")
	ErrEmptyPatch = errors.New("patch changes nothing")
)
