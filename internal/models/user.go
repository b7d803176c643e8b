package models

import (
	"time"
)

// User is an authenticated identity owning posts and comments
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Username     string    `gorm:"type:varchar(150);not null;uniqueIndex:blog_user_username_ux;column:username" json:"username"`
	FirstName    string    `gorm:"type:varchar(150);not null;default:'';column:first_name" json:"first_name"`
	LastName     string    `gorm:"type:varchar(150);not null;default:'';column:last_name" json:"last_name"`
	Email        string    `gorm:"type:varchar(254);not null;default:'';column:email" json:"email"`
	PasswordHash string    `gorm:"type:varchar(128);not null;column:password_hash" json:"-"`
	DateJoined   time.Time `gorm:"not null;autoCreateTime;column:date_joined" json:"date_joined"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "blog_user"
}
