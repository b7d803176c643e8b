package models

import (
	"time"
)

// Category groups posts. Posts of an unpublished category are hidden from
// every public listing regardless of their own flag.
type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Title       string    `gorm:"type:varchar(256);not null;column:title" json:"title"`
	Description string    `gorm:"type:text;not null;default:'';column:description" json:"description"`
	Slug        string    `gorm:"type:varchar(64);not null;uniqueIndex:blog_category_slug_ux;column:slug" json:"slug"`
	IsPublished bool      `gorm:"not null;column:is_published" json:"is_published"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
}

// TableName specifies the table name for Category
func (Category) TableName() string {
	return "blog_category"
}

// Location is an optional place a post is attached to
type Location struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name        string    `gorm:"type:varchar(256);not null;column:name" json:"name"`
	IsPublished bool      `gorm:"not null;column:is_published" json:"is_published"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;column:created_at" json:"created_at"`
}

// TableName specifies the table name for Location
func (Location) TableName() string {
	return "blog_location"
}
