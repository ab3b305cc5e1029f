package ledger

import (
	"errors"
	"testing"
)

func TestTransferRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := TransferRequest{FromPocketID: "p1", ToPocketID: "p2", Amount: 100}
		if err := req.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("same_pocket", func(t *testing.T) {
		req := TransferRequest{FromPocketID: "p1", ToPocketID: "p1", Amount: 100}
		if !errors.Is(req.Validate(), ErrSamePocket) {
			t.Error("expected ErrSamePocket")
		}
	})

	t.Run("zero_amount", func(t *testing.T) {
		req := TransferRequest{FromPocketID: "p1", ToPocketID: "p2", Amount: 0}
		if !errors.Is(req.Validate(), ErrNonPositiveAmount) {
			t.Error("expected ErrNonPositiveAmount")
		}
	})

	t.Run("negative_amount", func(t *testing.T) {
		req := TransferRequest{FromPocketID: "p1", ToPocketID: "p2", Amount: -5}
		if !errors.Is(req.Validate(), ErrNonPositiveAmount) {
			t.Error("expected ErrNonPositiveAmount")
		}
	})
}

func TestCheckFunds(t *testing.T) {
	t.Run("rejects_over_available", func(t *testing.T) {
		rej := CheckFunds("Daily", 1000, 1001)
		if rej == nil {
			t.Fatal("expected rejection")
		}
		if rej.PocketName != "Daily" || rej.Available != 1000 || rej.Attempted != 1001 {
			t.Errorf("unexpected payload: %+v", rej)
		}
	})

	t.Run("accepts_exact_equality", func(t *testing.T) {
		// Draining a pocket to exactly zero is allowed.
		if rej := CheckFunds("Daily", 1000, 1000); rej != nil {
			t.Errorf("amount == available must be accepted, got %+v", rej)
		}
	})

	t.Run("accepts_below_available", func(t *testing.T) {
		if rej := CheckFunds("Daily", 1000, 999); rej != nil {
			t.Errorf("unexpected rejection: %+v", rej)
		}
	})
}
