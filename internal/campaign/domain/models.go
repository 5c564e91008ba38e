package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type CampaignStatus string

const (
	StatusActive CampaignStatus = "active"
	StatusClosed CampaignStatus = "closed"
)

// Campaign is a community-wide payment-collection drive, e.g. an annual
// maintenance fee, with one expected entry per member.
type Campaign struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	CommunityID     snowflake.ID   `gorm:"column:community_id;not null;index" json:"community_id"`
	Name            string         `gorm:"not null" json:"name"`
	Slug            string         `gorm:"not null" json:"slug"`
	AmountDue       int64          `gorm:"not null" json:"amount_due"`
	DueDate         *time.Time     `gorm:"type:date" json:"due_date,omitempty"`
	MessageTemplate string         `gorm:"not null;default:''" json:"message_template"`
	Status          CampaignStatus `gorm:"type:text;not null;default:active" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }

type Entry struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	CampaignID    snowflake.ID  `gorm:"column:campaign_id;not null;index" json:"campaign_id"`
	MemberID      snowflake.ID  `gorm:"column:member_id;not null" json:"member_id"`
	AmountPaid    int64         `gorm:"not null;default:0" json:"amount_paid"`
	PaymentMethod string        `gorm:"not null;default:''" json:"payment_method"`
	PaidAt        *time.Time    `gorm:"column:paid_at" json:"paid_at,omitempty"`
	RecordedBy    *snowflake.ID `gorm:"column:recorded_by" json:"recorded_by,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Entry) TableName() string { return "campaign_entries" }

// Settled reports whether the entry covers the campaign's amount due.
func (e Entry) Settled(amountDue int64) bool {
	return e.AmountPaid >= amountDue
}
