package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"urban-auto-server/models"
	"urban-auto-server/utils"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
)

// WalletStore is the persistence surface for wallet mutations. WithTx runs fn
// against a store bound to a single database transaction; BalanceForUpdate
// must hold a row lock for the remainder of that transaction.
type WalletStore interface {
	WithTx(fn func(WalletStore) error) error
	BalanceForUpdate(userID uint) (int64, error)
	SetBalance(userID uint, balance int64) error
	InsertLedger(entry *models.WalletTransaction) error
	RecentTransactions(userID uint, limit int) ([]models.WalletTransaction, error)
}

// WalletService mutates the wallet balance and its ledger together. Balance
// update and ledger insert always share one transaction, so the two cannot
// drift apart on a partial failure.
type WalletService struct {
	store WalletStore
	rdb   *redis.Client
}

// NewWalletService creates a wallet service
func NewWalletService(store WalletStore, rdb *redis.Client) *WalletService {
	return &WalletService{store: store, rdb: rdb}
}

// Credit adds amount to the user's balance and appends a credit ledger row.
func (s *WalletService) Credit(userID uint, amount int64, description string, bookingID *uint) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64
	err := s.store.WithTx(func(tx WalletStore) error {
		balance, err := tx.BalanceForUpdate(userID)
		if err != nil {
			return err
		}
		newBalance = balance + amount
		if err := tx.SetBalance(userID, newBalance); err != nil {
			return err
		}
		return tx.InsertLedger(&models.WalletTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        models.TransactionCredit,
			Description: description,
			BookingID:   bookingID,
			Reference:   uuid.NewString(),
		})
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"amount":  amount,
			"error":   err.Error(),
		}).Error("Wallet credit failed")
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  amount,
		"balance": newBalance,
		"type":    "credit",
	}).Info("Wallet transaction")

	s.invalidateCache(userID)
	return newBalance, nil
}

// Debit subtracts amount from the user's balance and appends a debit ledger
// row. Fails with ErrInsufficientBalance without writing anything when the
// locked balance is too low.
func (s *WalletService) Debit(userID uint, amount int64, description string, bookingID *uint) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var newBalance int64
	err := s.store.WithTx(func(tx WalletStore) error {
		balance, err := tx.BalanceForUpdate(userID)
		if err != nil {
			return err
		}
		if balance < amount {
			return ErrInsufficientBalance
		}
		newBalance = balance - amount
		if err := tx.SetBalance(userID, newBalance); err != nil {
			return err
		}
		return tx.InsertLedger(&models.WalletTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        models.TransactionDebit,
			Description: description,
			BookingID:   bookingID,
			Reference:   uuid.NewString(),
		})
	})
	if err != nil {
		if !errors.Is(err, ErrInsufficientBalance) {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"amount":  amount,
				"error":   err.Error(),
			}).Error("Wallet debit failed")
		}
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"amount":  amount,
		"balance": newBalance,
		"type":    "debit",
	}).Info("Wallet transaction")

	s.invalidateCache(userID)
	return newBalance, nil
}

// CacheKey is the Redis key holding a user's wallet snapshot
func (s *WalletService) CacheKey(userID uint) string {
	return "wallet:user:" + strconv.Itoa(int(userID))
}

func (s *WalletService) invalidateCache(userID uint) {
	if err := utils.DeleteCache(context.Background(), s.rdb, s.CacheKey(userID)); err != nil {
		logrus.WithField("user_id", userID).Warnf("Wallet cache invalidation failed: %v", err)
	}
}

// Redis returns the cache client for handlers that read through the cache
func (s *WalletService) Redis() *redis.Client {
	return s.rdb
}

// RecentTransactions returns the newest ledger rows for a user
func (s *WalletService) RecentTransactions(userID uint, limit int) ([]models.WalletTransaction, error) {
	return s.store.RecentTransactions(userID, limit)
}

// gormWalletStore is the GORM-backed WalletStore.
type gormWalletStore struct {
	db *gorm.DB
}

// NewWalletStore creates a GORM-backed wallet store
func NewWalletStore(db *gorm.DB) WalletStore {
	return &gormWalletStore{db: db}
}

func (s *gormWalletStore) WithTx(fn func(WalletStore) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormWalletStore{db: tx})
	})
}

func (s *gormWalletStore) BalanceForUpdate(userID uint) (int64, error) {
	var user models.User
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "wallet_balance").
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("user %d not found", userID)
		}
		return 0, err
	}
	return user.WalletBalance, nil
}

func (s *gormWalletStore) SetBalance(userID uint, balance int64) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("wallet_balance", balance).Error
}

func (s *gormWalletStore) InsertLedger(entry *models.WalletTransaction) error {
	return s.db.Create(entry).Error
}

func (s *gormWalletStore) RecentTransactions(userID uint, limit int) ([]models.WalletTransaction, error) {
	var transactions []models.WalletTransaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}
