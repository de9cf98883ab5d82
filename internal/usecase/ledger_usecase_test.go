package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

func TestLedgerUseCase_Open(t *testing.T) {
	t.Run("new account starts at zero", func(t *testing.T) {
		f := newFixture(t, time.Second)
		ctx := context.Background()

		account, err := f.ledger.Open(ctx, "D", "key-1")
		require.NoError(t, err)
		assert.Positive(t, account.ID)

		found, err := f.ledger.Lookup(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "D", found.DocumentNumber)
		assert.Equal(t, "0.00", found.Balance.StringFixed(2))
	})

	t.Run("same key returns the same account", func(t *testing.T) {
		f := newFixture(t, time.Second)
		ctx := context.Background()

		first, err := f.ledger.Open(ctx, "123", "K1")
		require.NoError(t, err)

		second, err := f.ledger.Open(ctx, "123", "K1")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.DocumentNumber, second.DocumentNumber)

		_, err = f.ledger.Lookup(ctx, first.ID+1)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("same document with another key conflicts", func(t *testing.T) {
		f := newFixture(t, time.Second)
		ctx := context.Background()

		_, err := f.ledger.Open(ctx, "123", "K1")
		require.NoError(t, err)

		_, err = f.ledger.Open(ctx, "123", "K2")
		require.ErrorIs(t, err, domain.ErrAccountExists)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t, time.Second)
		ctx := context.Background()

		_, err := f.ledger.Open(ctx, "  ", "K1")
		assert.ErrorIs(t, err, domain.ErrInvalidDocumentNumber)

		_, err = f.ledger.Open(ctx, "123", "")
		assert.ErrorIs(t, err, domain.ErrIdempotencyKeyRequired)
	})
}

func TestLedgerUseCase_Open_ConcurrentSameKey(t *testing.T) {
	f := newFixture(t, 2*time.Second)
	ctx := context.Background()

	const workers = 16
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			account, err := f.ledger.Open(ctx, "555", "K-race")
			errs[i] = err
			if err == nil {
				ids[i] = account.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	_, err := f.ledger.Lookup(ctx, ids[0]+1)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestLedgerUseCase_Lookup_NotFound(t *testing.T) {
	f := newFixture(t, time.Second)

	_, err := f.ledger.Lookup(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestLedgerUseCase_Adjust(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	account := f.openFunded(t, "A1", "100.00")

	updated, err := f.ledger.Adjust(ctx, account.ID, money("-40.00"))
	require.NoError(t, err)
	requireMoney(t, "60.00", updated.Balance)

	_, err = f.ledger.Adjust(ctx, account.ID, money("-60.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	requireMoney(t, "60.00", f.balance(t, account.ID))

	_, err = f.ledger.Adjust(ctx, account.ID+100, money("1.00"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestLedgerUseCase_Adjust_ExactBalanceToZero(t *testing.T) {
	f := newFixture(t, time.Second)
	account := f.openFunded(t, "A1", "10.50")

	updated, err := f.ledger.Adjust(context.Background(), account.ID, money("-10.50"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", updated.Balance.StringFixed(2))
}

func TestLedgerUseCase_Adjust_LockTimeout(t *testing.T) {
	f := newFixture(t, 50*time.Millisecond)
	ctx := context.Background()
	account := f.openFunded(t, "A1", "100.00")

	holder, err := f.store.TxManager().Begin(ctx)
	require.NoError(t, err)
	_, err = f.store.Accounts().GetByIDForUpdate(ctx, holder, account.ID)
	require.NoError(t, err)

	_, err = f.ledger.Adjust(ctx, account.ID, money("-1.00"))
	require.ErrorIs(t, err, domain.ErrLockTimeout)
	assert.True(t, domain.IsTransient(err))

	require.NoError(t, holder.Rollback(ctx))

	_, err = f.ledger.Adjust(ctx, account.ID, money("-1.00"))
	require.NoError(t, err)
}

func TestLedgerUseCase_Adjust_OtherAccountsNotBlocked(t *testing.T) {
	f := newFixture(t, 50*time.Millisecond)
	ctx := context.Background()
	locked := f.openFunded(t, "A1", "100.00")
	free := f.openFunded(t, "A2", "100.00")

	holder, err := f.store.TxManager().Begin(ctx)
	require.NoError(t, err)
	defer holder.Rollback(ctx)
	_, err = f.store.Accounts().GetByIDForUpdate(ctx, holder, locked.ID)
	require.NoError(t, err)

	updated, err := f.ledger.Adjust(ctx, free.ID, money("-30.00"))
	require.NoError(t, err)
	requireMoney(t, "70.00", updated.Balance)
}

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	f := newFixture(t, time.Second)
	ctx := context.Background()
	f.openFunded(t, "A1", "100.00")
	f.openFunded(t, "A2", "0")

	report, err := f.ledger.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	requireMoney(t, "100.00", report.TotalBalance)
	requireMoney(t, "100.00", report.TotalAmount)

	// Adjust outside the recorder leaves a balance with no matching transaction.
	drifted := f.openFunded(t, "A3", "0")
	_, err = f.ledger.Adjust(ctx, drifted.ID, money("5.00"))
	require.NoError(t, err)

	report, err = f.ledger.CheckConsistency(ctx)
	require.ErrorIs(t, err, usecase.ErrInconsistentLedger)
	assert.False(t, report.Consistent)
	assert.Equal(t, []int64{drifted.ID}, report.InconsistentAccounts)
}
