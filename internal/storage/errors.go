package storage

import "errors"

// Ledger store errors. Backends map their driver errors onto these.
var (
	// ErrNotFound means no round or snapshot exists for the requested key.
	ErrNotFound = errors.New("ledger entry not found")

	// ErrDuplicateKey means the (session, round) or (session, round, network)
	// key was already written. Settled rounds are never rewritten.
	ErrDuplicateKey = errors.New("ledger entry already recorded")

	// ErrInvalidInput means the entry is missing its session or has a
	// non-positive round.
	ErrInvalidInput = errors.New("invalid ledger entry")
)
