package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err       error
		want      ErrorKind
		transient bool
	}{
		{err: ErrInvalidOperationType, want: KindBadRequest},
		{err: fmt.Errorf("%w: bad", ErrInvalidAmount), want: KindBadRequest},
		{err: ErrIdempotencyKeyRequired, want: KindBadRequest},
		{err: ErrAccountNotFound, want: KindNotFound},
		{err: ErrAccountExists, want: KindConflict},
		{err: ErrDuplicateIdempotencyKey, want: KindConflict},
		{err: ErrInsufficientFunds, want: KindInsufficientFunds},
		{err: fmt.Errorf("adjust: %w", ErrLockTimeout), want: KindLockTimeout, transient: true},
		{err: ErrUnavailable, want: KindUnavailable, transient: true},
		{err: context.DeadlineExceeded, want: KindUnavailable, transient: true},
		{err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
		if got := IsTransient(tt.err); got != tt.transient {
			t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.transient)
		}
	}
}
