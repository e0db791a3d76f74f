package model

import "time"

// Group is a topic bucket for posts. Groups are created by an admin tool
// and are immutable from the application's point of view.
type Group struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Title       string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(100);uniqueIndex:ux_group_slug;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
}

func (Group) TableName() string { return "groups" }
