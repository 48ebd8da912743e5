package internal

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiWeekly  Frequency = "bi-weekly"
	FrequencyBiweekly  Frequency = "biweekly" // legacy spelling still stored by older clients
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
	FrequencyCustom    Frequency = "custom"
)

type FrequencyType string

const (
	FrequencySimple         FrequencyType = "simple"
	FrequencySpecificDates  FrequencyType = "specific_dates"
	FrequencyMultipleWeekly FrequencyType = "multiple_weekly"
)

type BillType string

const (
	TypeExpense BillType = "expense"
	TypeDeposit BillType = "deposit"
	TypeBill    BillType = "bill" // legacy, counted as an expense
)

// IsDeposit reports whether money flows in. Everything else is an expense.
func (t BillType) IsDeposit() bool {
	return t == TypeDeposit
}

// FrequencyConfig is the raw schedule descriptor as stored by the backend: a JSON
// document encoded as a string. Some older endpoints send the object itself, so
// both forms are accepted when decoding.
type FrequencyConfig string

func (c *FrequencyConfig) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = FrequencyConfig(s)
		return nil
	}
	*c = FrequencyConfig(trimmed)
	return nil
}

// Bill is a recurring or one-off obligation as returned by GET /bills.
type Bill struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Amount          *float64        `json:"amount"`
	Varies          bool            `json:"varies"`
	AvgAmount       *float64        `json:"avg_amount,omitempty"`
	Frequency       Frequency       `json:"frequency"`
	FrequencyType   FrequencyType   `json:"frequency_type,omitempty"`
	FrequencyConfig FrequencyConfig `json:"frequency_config,omitempty"`
	NextDue         string          `json:"next_due"`
	Type            BillType        `json:"type"`
	Account         string          `json:"account,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Icon            string          `json:"icon,omitempty"`
	Archived        bool            `json:"archived"`
	AutoPayment     bool            `json:"auto_payment"`
	IsShared        bool            `json:"is_shared,omitempty"`
	ShareCount      int             `json:"share_count,omitempty"`
	ShareInfo       *ShareInfo      `json:"share_info,omitempty"`
	DatabaseID      int             `json:"database_id,omitempty"`
	DatabaseName    string          `json:"database_name,omitempty"`

	// schedule is parsed once by NormalizeBills
	schedule Schedule
}

// ShareInfo is attached to bills that somebody else shared with the current user.
type ShareInfo struct {
	ShareID           int      `json:"share_id"`
	OwnerName         string   `json:"owner_name"`
	MyPortion         *float64 `json:"my_portion"`
	MyPortionPaid     bool     `json:"my_portion_paid"`
	MyPortionPaidDate *string  `json:"my_portion_paid_date"`
}

// ProjectedAmount is the amount used for totals and projections: the fixed amount,
// or the historical average for bills whose amount varies.
func (b Bill) ProjectedAmount() (float64, bool) {
	if b.Amount != nil {
		return *b.Amount, true
	}
	if b.Varies && b.AvgAmount != nil {
		return *b.AvgAmount, true
	}
	return 0, false
}

// AmountString renders the amount the way the search box sees it.
func (b Bill) AmountString() string {
	if b.Amount == nil {
		return ""
	}
	return strconv.FormatFloat(*b.Amount, 'f', -1, 64)
}

// Payment is one recorded payment. BillType is the effective type computed by the
// backend: payments received from sharees count as deposits for the owner.
type Payment struct {
	ID                int      `json:"id"`
	BillID            int      `json:"bill_id,omitempty"`
	BillName          string   `json:"bill_name,omitempty"`
	BillType          BillType `json:"bill_type,omitempty"`
	Amount            float64  `json:"amount"`
	PaymentDate       string   `json:"payment_date"`
	Notes             string   `json:"notes,omitempty"`
	IsSharePayment    bool     `json:"is_share_payment"`
	IsReceivedPayment bool     `json:"is_received_payment,omitempty"`
}

type ShareStatus string

const (
	SharePending  ShareStatus = "pending"
	ShareAccepted ShareStatus = "accepted"
	ShareDeclined ShareStatus = "declined"
	ShareRevoked  ShareStatus = "revoked"
)

// BillShare is the owner's view of a sharing relationship.
type BillShare struct {
	ID             int         `json:"id"`
	SharedWith     string      `json:"shared_with"`
	IdentifierType string      `json:"identifier_type,omitempty"`
	Status         ShareStatus `json:"status"`
	SplitType      SplitType   `json:"split_type"`
	SplitValue     *float64    `json:"split_value"`
	RecipientPaid  bool        `json:"recipient_paid,omitempty"`
}

// Active reports whether the share still counts towards the bill.
func (s BillShare) Active() bool {
	return s.Status == SharePending || s.Status == ShareAccepted
}

// NormalizeBills parses every bill's schedule once so later views do not have to
// re-decode frequency_config. Bills are modified in place.
func NormalizeBills(bills []Bill) {
	for i := range bills {
		bills[i].schedule = parseScheduleOrDefault(bills[i].FrequencyType, string(bills[i].FrequencyConfig))
	}
}
