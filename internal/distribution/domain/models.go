package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// MaxLevels caps the hierarchy depth (e.g. Wing > Floor > Flat).
const MaxLevels = 3

// PathSeparator joins level values into the display path. The literal
// string is also the anchor the spreadsheet importer splits on.
const PathSeparator = " > "

type Level struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	EventID     snowflake.ID `gorm:"column:event_id;not null;index" json:"event_id"`
	LevelNumber int          `gorm:"not null" json:"level_number"`
	Name        string       `gorm:"not null" json:"name"`
}

func (Level) TableName() string { return "distribution_levels" }

type LevelValue struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	LevelID snowflake.ID `gorm:"column:level_id;not null;index" json:"level_id"`
	Value   string       `gorm:"not null" json:"value"`
}

func (LevelValue) TableName() string { return "distribution_level_values" }

type Distribution struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	BookID        snowflake.ID  `gorm:"column:book_id;not null;uniqueIndex" json:"book_id"`
	MemberID      *snowflake.ID `gorm:"column:member_id" json:"member_id,omitempty"`
	ContactName   string        `gorm:"not null;default:''" json:"contact_name"`
	ContactPhone  string        `gorm:"not null;default:''" json:"contact_phone"`
	IsExtraBook   bool          `gorm:"not null;default:false" json:"is_extra_book"`
	IsReturned    bool          `gorm:"not null;default:false" json:"is_returned"`
	DistributedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"distributed_at"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Segments []Segment `gorm:"-" json:"segments"`
}

func (Distribution) TableName() string { return "book_distributions" }

// Segment is one (level, value) pair of a distribution's location path.
// The ordered list is the source of truth; the display string is derived.
type Segment struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"-"`
	DistributionID snowflake.ID `gorm:"column:distribution_id;not null;index" json:"-"`
	LevelNumber    int          `gorm:"not null" json:"level_number"`
	Value          string       `gorm:"not null" json:"value"`
}

func (Segment) TableName() string { return "distribution_segments" }

// Path renders the segments as the human-readable location path,
// level-number order, e.g. "A > 3 > 301".
func (d Distribution) Path() string {
	return PathString(d.Segments)
}

// LevelOneValue is the top-level segment value, the sole basis for
// commission attribution.
func (d Distribution) LevelOneValue() string {
	for _, seg := range d.Segments {
		if seg.LevelNumber == 1 {
			return seg.Value
		}
	}
	return ""
}

// PathString formats ordered segments with the display separator.
func PathString(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Value)
	}
	return strings.Join(parts, PathSeparator)
}
