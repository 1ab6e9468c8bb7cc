package models

import (
	"time"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// WalletTransaction is an append-only ledger row. Rows are never updated or
// deleted; the balance on the user row is mutated in the same database
// transaction that inserts the ledger row.
type WalletTransaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	Amount      int64           `json:"amount" gorm:"not null"`
	Type        TransactionType `json:"type" gorm:"type:varchar(10);not null;check:type IN ('credit','debit')"`
	Description string          `json:"description" gorm:"size:500"`
	BookingID   *uint           `json:"booking_id" gorm:"index"`
	Reference   string          `json:"reference" gorm:"size:64;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the WalletTransaction model
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
