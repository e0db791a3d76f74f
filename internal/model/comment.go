package model

import "time"

// Comment is immutable after creation; it disappears only when its post is
// deleted.
type Comment struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"type:varchar(36);index:idx_comment_post;not null"`
	AuthorID  string `gorm:"type:varchar(36);not null"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time

	Author User `gorm:"foreignKey:AuthorID"`
}

func (Comment) TableName() string { return "comments" }
