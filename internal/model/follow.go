package model

import "time"

// Follow is a directed edge: UserID follows AuthorID.
// idx_follow_pair = (user_id, author_id) keeps the edge unique.
type Follow struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36);index:idx_follow_user;index:idx_follow_pair,unique;not null"`
	AuthorID  string `gorm:"type:varchar(36);index:idx_follow_author;index:idx_follow_pair,unique;not null"`
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
