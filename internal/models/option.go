package models

import (
	"time"
)

// Option is a voting option. Name uniqueness is enforced among non-deleted
// rows only, so a deleted option's name can be reused.
type Option struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null;index" json:"name"`
	Description string    `gorm:"size:2000" json:"description"`
	VoteCount   int       `gorm:"default:0;not null" json:"voteCount"`
	Deleted     bool      `gorm:"default:false;not null;index" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
