package usecase_test

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/txledger/internal/adapter/repository/memory"
	"github.com/iho/txledger/internal/domain"
	"github.com/iho/txledger/internal/usecase"
)

type seqIDGenerator struct {
	n atomic.Int64
}

func (g *seqIDGenerator) Generate() string {
	return "evt-" + strconv.FormatInt(g.n.Add(1), 10)
}

type fixture struct {
	store    *memory.Store
	idGen    *seqIDGenerator
	ledger   *usecase.LedgerUseCase
	recorder *usecase.RecorderUseCase
}

func newFixture(t *testing.T, lockTimeout time.Duration) *fixture {
	t.Helper()

	store := memory.NewStore(lockTimeout)
	idGen := &seqIDGenerator{}
	ledger := usecase.NewLedgerUseCase(store.TxManager(), store.Accounts(), store.Ledger(), store.Outbox(), idGen, nil)
	recorder := usecase.NewRecorderUseCase(store.TxManager(), ledger, store.Transactions(), store.Outbox(), idGen, nil)

	return &fixture{store: store, idGen: idGen, ledger: ledger, recorder: recorder}
}

// openFunded opens an account and credits it with a payment so that the
// ledger stays consistent.
func (f *fixture) openFunded(t *testing.T, document, balance string) *domain.Account {
	t.Helper()
	ctx := context.Background()

	account, err := f.ledger.Open(ctx, document, "open-"+document)
	require.NoError(t, err)

	if balance != "0" {
		_, err = f.recorder.Record(ctx, usecase.RecordInput{
			AccountID:      account.ID,
			OperationType:  domain.OperationPayment,
			Amount:         money(balance),
			IdempotencyKey: "fund-" + document,
		})
		require.NoError(t, err)
	}

	account, err = f.ledger.Lookup(ctx, account.ID)
	require.NoError(t, err)

	return account
}

// gatedTransactionRepo holds the first lookups by idempotency key, one per
// party, until every party has read. Concurrent callers then all miss.
type gatedTransactionRepo struct {
	usecase.TransactionRepository
	parties  int32
	calls    atomic.Int32
	arrivals sync.WaitGroup
}

func newGatedTransactionRepo(repo usecase.TransactionRepository, parties int) *gatedTransactionRepo {
	r := &gatedTransactionRepo{TransactionRepository: repo, parties: int32(parties)}
	r.arrivals.Add(parties)
	return r
}

func (r *gatedTransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	txn, err := r.TransactionRepository.GetByIdempotencyKey(ctx, key)
	if r.calls.Add(1) <= r.parties {
		r.arrivals.Done()
		r.arrivals.Wait()
	}
	return txn, err
}

func (f *fixture) balance(t *testing.T, accountID int64) decimal.Decimal {
	t.Helper()

	account, err := f.ledger.Lookup(context.Background(), accountID)
	require.NoError(t, err)

	return account.Balance
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, money(want).Equal(got), "expected %s, got %s", want, got.StringFixed(2))
}
