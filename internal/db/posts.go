package db

import (
	"time"

	"gorm.io/gorm"
)

// Visible narrows a post query to the records anonymous visitors may see at
// now: the post and its category are published and pub_date is not in the
// future. Posts without a category never match.
func Visible(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Select("blog_post.*").
			Joins("JOIN blog_category ON blog_category.id = blog_post.category_id").
			Where("blog_post.is_published = ?", true).
			Where("blog_category.is_published = ?", true).
			Where("blog_post.pub_date <= ?", now)
	}
}

// WithCommentCount annotates every post with the live number of its comments
func WithCommentCount(tx *gorm.DB) *gorm.DB {
	return tx.Select("blog_post.*, COUNT(blog_comment.id) AS comment_count").
		Joins("LEFT JOIN blog_comment ON blog_comment.post_id = blog_post.id").
		Group("blog_post.id")
}

// NewestFirst orders posts by publication date, latest first
func NewestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("blog_post.pub_date DESC").Order("blog_post.id DESC")
}

// GetPosts returns the posts of query visible right now, newest first,
// optionally annotated with comment_count.
func GetPosts(query *gorm.DB, withCommentCount bool) *gorm.DB {
	query = Visible(time.Now().UTC())(query)
	if withCommentCount {
		query = WithCommentCount(query)
	}
	return NewestFirst(query)
}
