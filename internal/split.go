package internal

import (
	"errors"
	"fmt"
	"math"
)

type SplitType string

const (
	SplitNone       SplitType = ""
	SplitEqual      SplitType = "equal"
	SplitPercentage SplitType = "percentage"
	SplitFixed      SplitType = "fixed"
)

// ErrInvalidSplit is returned by ValidateSplit for shares the backend would reject.
var ErrInvalidSplit = errors.New("invalid split")

// ComputePortion returns the share of amount owed under a split. A nil amount
// stays nil. Missing or zero split values fall back to the full amount, and the
// result is always within [0, amount].
func ComputePortion(amount *float64, st SplitType, value *float64) *float64 {
	if amount == nil {
		return nil
	}
	full := *amount

	var portion float64
	switch st {
	case SplitEqual:
		portion = full / 2
	case SplitPercentage:
		if value == nil || *value == 0 {
			portion = full
		} else {
			pct := math.Max(0, math.Min(*value, 100))
			portion = full * pct / 100
		}
	case SplitFixed:
		if value == nil || *value == 0 {
			portion = full
		} else {
			portion = math.Min(*value, full)
		}
	default:
		portion = full
	}

	portion = clampPortion(portion, full)
	return &portion
}

// clampPortion keeps a portion between zero and the bill amount. Negative bill
// amounts (refunds) clamp to [amount, 0] instead.
func clampPortion(portion, amount float64) float64 {
	lo, hi := 0.0, amount
	if amount < 0 {
		lo, hi = amount, 0
	}
	return math.Max(lo, math.Min(portion, hi))
}

// ValidateSplit checks a split the way the backend does before creating a share.
func ValidateSplit(st SplitType, value *float64) error {
	switch st {
	case SplitEqual:
		return nil
	case SplitPercentage:
		if value == nil {
			return fmt.Errorf("%w: percentage split requires a value", ErrInvalidSplit)
		}
		if *value < 0 || *value > 100 {
			return fmt.Errorf("%w: percentage %v outside 0..100", ErrInvalidSplit, *value)
		}
		return nil
	case SplitFixed:
		if value == nil {
			return fmt.Errorf("%w: fixed split requires a value", ErrInvalidSplit)
		}
		if *value < 0 {
			return fmt.Errorf("%w: fixed amount %v is negative", ErrInvalidSplit, *value)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown split type %q", ErrInvalidSplit, st)
	}
}

// MyPortion is the portion shown for a bill shared with the current user: the
// backend's figure when it sent one, otherwise computed from the given split.
func MyPortion(b Bill, st SplitType, value *float64) *float64 {
	if b.ShareInfo != nil && b.ShareInfo.MyPortion != nil {
		p := *b.ShareInfo.MyPortion
		return &p
	}
	return ComputePortion(b.Amount, st, value)
}

// Portion is one line of the portion view.
type Portion struct {
	BillID     int       `json:"bill_id"`
	Name       string    `json:"name"`
	Amount     *float64  `json:"amount"`
	Owner      string    `json:"owner,omitempty"`
	SharedWith string    `json:"shared_with,omitempty"`
	SplitType  SplitType `json:"split_type,omitempty"`
	SplitValue *float64  `json:"split_value,omitempty"`
	Portion    *float64  `json:"portion"`
	Paid       bool      `json:"paid"`
}

// ReceivedPortions lists the bills shared with the current user, plus any bill
// with a configured share default. Archived bills are skipped.
func ReceivedPortions(bills []Bill, cfg *Config) []Portion {
	var out []Portion
	for _, b := range bills {
		if b.Archived {
			continue
		}
		def, hasDefault := cfg.GetShareDefault(b.Name)
		if b.ShareInfo == nil && !hasDefault {
			continue
		}

		p := Portion{
			BillID:     b.ID,
			Name:       b.Name,
			Amount:     b.Amount,
			SplitType:  def.SplitType,
			SplitValue: def.SplitValue,
			Portion:    MyPortion(b, def.SplitType, def.SplitValue),
		}
		if b.ShareInfo != nil {
			p.Owner = b.ShareInfo.OwnerName
			p.Paid = b.ShareInfo.MyPortionPaid
		}
		out = append(out, p)
	}
	return out
}

// OwnedPortions lists what each active sharee owes on a bill the current user owns.
func OwnedPortions(b Bill, shares []BillShare) []Portion {
	var out []Portion
	for _, s := range shares {
		if !s.Active() {
			continue
		}
		out = append(out, Portion{
			BillID:     b.ID,
			Name:       b.Name,
			Amount:     b.Amount,
			SharedWith: s.SharedWith,
			SplitType:  s.SplitType,
			SplitValue: s.SplitValue,
			Portion:    ComputePortion(b.Amount, s.SplitType, s.SplitValue),
			Paid:       s.RecipientPaid,
		})
	}
	return out
}
