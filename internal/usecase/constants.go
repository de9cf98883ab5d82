package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultLockTimeout bounds the wait for an account row lock.
	DefaultLockTimeout = 3 * time.Second

	// IdempotencyKeyTTL is how long replayable responses are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// MaxInconsistentAccounts caps the account ids returned by a consistency check.
	MaxInconsistentAccounts = 100
)
