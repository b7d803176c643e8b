package models

import (
	"time"
)

// Post is a blog publication. PubDate may lie in the future, in which case
// the post stays out of public listings until that instant.
type Post struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Title       string    `gorm:"type:varchar(256);not null;column:title" json:"title"`
	Text        string    `gorm:"type:text;not null;column:text" json:"text"`
	Image       string    `gorm:"type:varchar(1024);not null;default:'';column:image" json:"image,omitempty"`
	PubDate     time.Time `gorm:"not null;index:blog_post_pub_date_idx;column:pub_date" json:"pub_date"`
	IsPublished bool      `gorm:"not null;column:is_published" json:"is_published"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
	AuthorID    int64     `gorm:"not null;index;column:author_id" json:"author_id"`
	CategoryID  *int64    `gorm:"index;column:category_id" json:"category_id"`
	LocationID  *int64    `gorm:"column:location_id" json:"location_id"`

	// Filled only by the comment count annotation, never stored
	CommentCount int64 `gorm:"->;-:migration;column:comment_count" json:"comment_count"`

	// Relationships
	Author   *User     `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID;references:ID;constraint:OnDelete:SET NULL" json:"location,omitempty"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "blog_post"
}

// IsVisibleAt reports whether the post may be shown to someone other than its
// author at the given instant. Category must be loaded.
func (p *Post) IsVisibleAt(now time.Time) bool {
	if !p.IsPublished || p.Category == nil || !p.Category.IsPublished {
		return false
	}
	return !p.PubDate.After(now)
}

// IsAuthoredBy reports whether user owns the post
func (p *Post) IsAuthoredBy(user *User) bool {
	return user != nil && user.ID == p.AuthorID
}

// Comment is a reader's reply attached to a post
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Text      string    `gorm:"type:text;not null;column:text" json:"text"`
	PostID    int64     `gorm:"not null;index;column:post_id" json:"post_id"`
	AuthorID  int64     `gorm:"not null;column:author_id" json:"author_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index:blog_comment_created_at_idx;column:created_at" json:"created_at"`

	// Relationships
	Post   *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "blog_comment"
}

// IsAuthoredBy reports whether user owns the comment
func (c *Comment) IsAuthoredBy(user *User) bool {
	return user != nil && user.ID == c.AuthorID
}

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Location{},
		&Post{},
		&Comment{},
	}
}
