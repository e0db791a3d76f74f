package model

import "time"

// Post is the content unit. GroupID is nullable: a post may be ungrouped.
// ImagePath is a media-storage key, empty when no image was attached.
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Text      string    `gorm:"type:text;not null"`
	AuthorID  string    `gorm:"type:varchar(36);index:idx_post_author;not null"`
	GroupID   *string   `gorm:"type:varchar(36);index:idx_post_group"`
	ImagePath string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"index:idx_post_created"`
	UpdatedAt time.Time

	Author User   `gorm:"foreignKey:AuthorID"`
	Group  *Group `gorm:"foreignKey:GroupID"`
}

func (Post) TableName() string { return "posts" }
