package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"urban-auto-server/models"
)

// fakeWalletStore keeps balances and the ledger in memory. failSetBalance
// simulates a write failure mid-transaction.
type fakeWalletStore struct {
	balances       map[uint]int64
	ledger         []models.WalletTransaction
	failSetBalance bool
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{balances: map[uint]int64{}}
}

func (f *fakeWalletStore) WithTx(fn func(WalletStore) error) error {
	// Snapshot so a failed fn rolls back, like a real transaction
	balances := make(map[uint]int64, len(f.balances))
	for k, v := range f.balances {
		balances[k] = v
	}
	ledgerLen := len(f.ledger)

	if err := fn(f); err != nil {
		f.balances = balances
		f.ledger = f.ledger[:ledgerLen]
		return err
	}
	return nil
}

func (f *fakeWalletStore) BalanceForUpdate(userID uint) (int64, error) {
	return f.balances[userID], nil
}

func (f *fakeWalletStore) SetBalance(userID uint, balance int64) error {
	if f.failSetBalance {
		return errors.New("write failed")
	}
	f.balances[userID] = balance
	return nil
}

func (f *fakeWalletStore) InsertLedger(entry *models.WalletTransaction) error {
	f.ledger = append(f.ledger, *entry)
	return nil
}

func (f *fakeWalletStore) RecentTransactions(userID uint, limit int) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	for i := len(f.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if f.ledger[i].UserID == userID {
			out = append(out, f.ledger[i])
		}
	}
	return out, nil
}

func TestWalletCredit(t *testing.T) {
	store := newFakeWalletStore()
	store.balances[1] = 100

	svc := NewWalletService(store, nil)
	balance, err := svc.Credit(1, 250, "Added by admin", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(350), balance)
	assert.Len(t, store.ledger, 1)
	assert.Equal(t, models.TransactionCredit, store.ledger[0].Type)
	assert.Equal(t, int64(250), store.ledger[0].Amount)
	assert.NotEmpty(t, store.ledger[0].Reference)
}

func TestWalletCredit_RejectsNonPositiveAmount(t *testing.T) {
	svc := NewWalletService(newFakeWalletStore(), nil)

	_, err := svc.Credit(1, 0, "x", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Credit(1, -50, "x", nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestWalletDebit(t *testing.T) {
	store := newFakeWalletStore()
	store.balances[1] = 500

	svc := NewWalletService(store, nil)
	balance, err := svc.Debit(1, 200, "Payment for Basic Wash", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(300), balance)
	assert.Len(t, store.ledger, 1)
	assert.Equal(t, models.TransactionDebit, store.ledger[0].Type)
}

func TestWalletDebit_InsufficientBalance(t *testing.T) {
	store := newFakeWalletStore()
	store.balances[1] = 100

	svc := NewWalletService(store, nil)
	_, err := svc.Debit(1, 200, "Payment", nil)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(100), store.balances[1])
	assert.Empty(t, store.ledger)
}

func TestWalletCredit_RolledBackOnWriteFailure(t *testing.T) {
	store := newFakeWalletStore()
	store.balances[1] = 100
	store.failSetBalance = true

	svc := NewWalletService(store, nil)
	_, err := svc.Credit(1, 50, "top-up", nil)
	assert.Error(t, err)
	assert.Equal(t, int64(100), store.balances[1])
	assert.Empty(t, store.ledger, "no ledger row without a balance update")
}
