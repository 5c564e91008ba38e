package domain

import (
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CommissionType string

const (
	TypeEarly      CommissionType = "early"
	TypeStandard   CommissionType = "standard"
	TypeExtraBooks CommissionType = "extra_books"
)

type Settings struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	EventID snowflake.ID `gorm:"column:event_id;not null;uniqueIndex" json:"event_id"`

	EarlyEnabled     bool       `gorm:"not null;default:false" json:"early_enabled"`
	EarlyPaymentDate *time.Time `gorm:"type:date" json:"early_payment_date,omitempty"`
	EarlyPercent     float64    `gorm:"not null;default:0" json:"early_percent"`

	StandardEnabled     bool       `gorm:"not null;default:false" json:"standard_enabled"`
	StandardPaymentDate *time.Time `gorm:"type:date" json:"standard_payment_date,omitempty"`
	StandardPercent     float64    `gorm:"not null;default:0" json:"standard_percent"`

	ExtraEnabled bool    `gorm:"not null;default:false" json:"extra_enabled"`
	ExtraPercent float64 `gorm:"not null;default:0" json:"extra_percent"`

	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Settings) TableName() string { return "commission_settings" }

type Earned struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	EventID        snowflake.ID  `gorm:"column:event_id;not null;index" json:"event_id"`
	DistributionID *snowflake.ID `gorm:"column:distribution_id;index" json:"distribution_id,omitempty"`
	BookID         *snowflake.ID `gorm:"column:book_id" json:"book_id,omitempty"`

	// Commission is always attributed to the top-level distributor.
	Level1Value string `gorm:"column:level_1_value;not null" json:"level_1_value"`

	CommissionType    CommissionType `gorm:"type:text;not null" json:"commission_type"`
	CommissionPercent float64        `gorm:"not null" json:"commission_percent"`
	PaymentAmount     int64          `gorm:"not null" json:"payment_amount"`
	CommissionAmount  int64          `gorm:"not null" json:"commission_amount"`
	PaymentDate       time.Time      `gorm:"type:date;not null" json:"payment_date"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Earned) TableName() string { return "commission_earned" }

// Eligibility is one tier a fully paid distribution qualifies for.
type Eligibility struct {
	Type    CommissionType
	Percent float64
}

// Evaluate applies the tier rules to a fully paid distribution.
//
// The extra-books tier is keyed on the flag alone and does not exclude the
// date-based tiers, so a distribution can earn extra_books plus one of
// early/standard. Between early and standard, early wins when its
// threshold covers the full-payment date.
func Evaluate(settings Settings, isExtraBook bool, fullPaymentDate time.Time) []Eligibility {
	var out []Eligibility

	if isExtraBook && settings.ExtraEnabled {
		out = append(out, Eligibility{Type: TypeExtraBooks, Percent: settings.ExtraPercent})
	}

	switch {
	case settings.EarlyEnabled && settings.EarlyPaymentDate != nil && !fullPaymentDate.After(*settings.EarlyPaymentDate):
		out = append(out, Eligibility{Type: TypeEarly, Percent: settings.EarlyPercent})
	case settings.StandardEnabled && settings.StandardPaymentDate != nil && !fullPaymentDate.After(*settings.StandardPaymentDate):
		out = append(out, Eligibility{Type: TypeStandard, Percent: settings.StandardPercent})
	}

	return out
}

// Amount computes the payout for one tier, rounded half up.
func Amount(paymentAmount int64, percent float64) int64 {
	return int64(math.Round(float64(paymentAmount) * percent / 100))
}
