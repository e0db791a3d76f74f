package model

import "time"

// User is an author account. Password holds a bcrypt hash, never plaintext.
type User struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	Username  string `gorm:"type:varchar(64);uniqueIndex:ux_user_username;not null"`
	Email     string `gorm:"type:varchar(255);uniqueIndex:ux_user_email;not null"`
	Password  string `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }
