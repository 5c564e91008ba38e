package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeSelect FieldType = "select"
)

// FieldDef is a community-defined custom field. Member values are stored
// as plain strings and validated against the definition at write time.
type FieldDef struct {
	ID          snowflake.ID               `gorm:"primaryKey" json:"id"`
	CommunityID snowflake.ID               `gorm:"column:community_id;not null;index" json:"community_id"`
	Name        string                     `gorm:"not null" json:"name"`
	FieldType   FieldType                  `gorm:"type:text;not null" json:"field_type"`
	Options     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"options,omitempty"`
	Required    bool                       `gorm:"not null;default:false" json:"required"`
	Position    int                        `gorm:"not null;default:0" json:"position"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FieldDef) TableName() string { return "member_field_defs" }

type Member struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CommunityID snowflake.ID `gorm:"column:community_id;not null;index" json:"community_id"`
	FullName    string       `gorm:"not null" json:"full_name"`
	Phone       string       `gorm:"not null;default:''" json:"phone"`
	Email       string       `gorm:"not null;default:''" json:"email"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Attributes is the custom-field bag keyed by field name, loaded
	// from member_field_values.
	Attributes map[string]string `gorm:"-" json:"attributes"`
}

func (Member) TableName() string { return "members" }

type FieldValue struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"-"`
	MemberID   snowflake.ID `gorm:"column:member_id;not null;index" json:"-"`
	FieldDefID snowflake.ID `gorm:"column:field_def_id;not null" json:"-"`
	Value      string       `gorm:"not null" json:"-"`
}

func (FieldValue) TableName() string { return "member_field_values" }
