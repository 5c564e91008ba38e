package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PaymentState string

const (
	StateUnpaid    PaymentState = "unpaid"
	StatePartial   PaymentState = "partial"
	StateFullyPaid PaymentState = "fully_paid"
)

type Collection struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	DistributionID snowflake.ID `gorm:"column:distribution_id;not null;index" json:"distribution_id"`
	AmountPaid     int64        `gorm:"not null" json:"amount_paid"`
	PaymentMethod  string       `gorm:"not null" json:"payment_method"`
	PaymentDate    time.Time    `gorm:"type:date;not null" json:"payment_date"`
	CollectedBy    snowflake.ID `gorm:"column:collected_by;not null" json:"collected_by"`
	CollectedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"collected_at"`
}

func (Collection) TableName() string { return "payment_collections" }

// Status is the derived ledger position of one distribution.
type Status struct {
	DistributionID snowflake.ID `json:"distribution_id"`
	TotalPaid      int64        `json:"total_paid"`
	ExpectedAmount int64        `json:"expected_amount"`
	Outstanding    int64        `json:"outstanding"`
	State          PaymentState `json:"state"`

	// FullPaymentDate is MAX(payment_date) across the distribution's
	// collections: the date of the installment that tipped the cumulative
	// total over the expected amount. Only set once fully paid.
	FullPaymentDate *time.Time `json:"full_payment_date,omitempty"`
}

// DeriveState classifies a running total against the expected amount.
func DeriveState(totalPaid, expected int64) PaymentState {
	switch {
	case totalPaid <= 0:
		return StateUnpaid
	case totalPaid >= expected:
		return StateFullyPaid
	default:
		return StatePartial
	}
}
