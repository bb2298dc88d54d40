package models

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	Role      string    `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	VotedFor  *uint     `gorm:"index" json:"votedFor"`
	Deleted   bool      `gorm:"default:false;not null;index" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasVoted reports whether the user's single vote is already spent.
func (u *User) HasVoted() bool {
	return u.VotedFor != nil
}
