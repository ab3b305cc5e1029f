package ledger

import (
	"errors"
	"time"
)

// TransferRequest is a proposed movement of funds between two pockets.
type TransferRequest struct {
	FromPocketID string    `json:"from_pocket_id"`
	ToPocketID   string    `json:"to_pocket_id"`
	Amount       int64     `json:"amount"`
	Date         time.Time `json:"date"`
	Note         string    `json:"note,omitempty"`
}

var (
	ErrSamePocket        = errors.New("transfer source and destination are the same pocket")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// Validate checks the request's shape. Funds sufficiency is a separate
// concern; see CheckFunds.
func (r TransferRequest) Validate() error {
	if r.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if r.FromPocketID == r.ToPocketID {
		return ErrSamePocket
	}
	return nil
}

// InsufficientBalance is the structured rejection produced when a withdrawal
// would overdraw a pocket. Both the proactive preview path and the
// pre-commit re-check produce this exact shape, so the UI renders one dialog
// regardless of which path fired.
type InsufficientBalance struct {
	PocketName string `json:"pocket_name"`
	Available  int64  `json:"available"`
	Attempted  int64  `json:"attempted"`
}

// CheckFunds decides whether a pocket can give up attempted minor units.
// Rejection happens iff attempted > available; attempting exactly the
// available balance is accepted. A nil return means accept. The same rule
// applies to a transfer's source pocket and to an income deduction against
// its target pocket.
func CheckFunds(pocketName string, available, attempted int64) *InsufficientBalance {
	if attempted > available {
		return &InsufficientBalance{
			PocketName: pocketName,
			Available:  available,
			Attempted:  attempted,
		}
	}
	return nil
}
