package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Feature codes toggled per community.
const (
	CodeLottery   = "lottery"
	CodeCampaigns = "campaigns"
	CodeWhatsApp  = "whatsapp_reminders"
	CodeReceipts  = "pdf_receipts"
)

type Feature struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CommunityID snowflake.ID `gorm:"column:community_id;not null;index:ux_features_community_code,priority:1" json:"community_id"`
	Code        string       `gorm:"type:text;not null;index:ux_features_community_code,priority:2" json:"code"`

	Name     string            `gorm:"type:text;not null" json:"name"`
	Enabled  bool              `gorm:"not null;default:true" json:"enabled"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Feature) TableName() string { return "features" }
