package sentinel

import "errors"

// Store-level errors. Stores return these (optionally wrapped) so services can
// translate them into domain errors exactly once.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrAlreadyUsed   = errors.New("already used")
	ErrExpired       = errors.New("expired")
	ErrStale         = errors.New("stale write")
	ErrUnavailable   = errors.New("unavailable")
)
