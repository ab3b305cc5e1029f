package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordKind represents the kind of record
type RecordKind string

const (
	RecordKindIncome   RecordKind = "income"
	RecordKindExpense  RecordKind = "expense"
	RecordKindTransfer RecordKind = "transfer"
)

// Record represents a single money movement. Amounts are stored in minor
// units of the pocket currency. A transfer is a single row against the
// source pocket with ToPocketID set; the timeline expands it into an
// outgoing and an incoming entry.
type Record struct {
	Base
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	PocketID   string     `gorm:"type:uuid;not null;index" json:"pocket_id"`
	CategoryID *string    `gorm:"type:uuid" json:"category_id,omitempty"`
	Kind       RecordKind `gorm:"not null" json:"kind"`
	Amount     int64      `gorm:"type:bigint;not null" json:"amount"`
	Note       string     `json:"note"`
	Date       time.Time  `gorm:"not null;index" json:"date"`

	// Income only. Deduction is subtracted from Amount when computing the
	// balance effect; Amount stays the gross figure for reporting.
	Deduction      int64           `gorm:"type:bigint;not null;default:0" json:"deduction"`
	SourceCurrency string          `json:"source_currency,omitempty"`
	ExchangeRate   decimal.Decimal `gorm:"type:decimal(20,8);default:1" json:"exchange_rate"`

	// Transfer only.
	ToPocketID *string `gorm:"type:uuid" json:"to_pocket_id,omitempty"`

	Pocket   Pocket    `gorm:"foreignKey:PocketID" json:"pocket"`
	ToPocket *Pocket   `gorm:"foreignKey:ToPocketID" json:"to_pocket,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// NetAmount returns the balance effect of the record on its own pocket.
func (r *Record) NetAmount() int64 {
	switch r.Kind {
	case RecordKindIncome:
		return r.Amount - r.Deduction
	case RecordKindExpense, RecordKindTransfer:
		return -r.Amount
	}
	return 0
}
