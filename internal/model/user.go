package model

import (
	"strings"
	"time"
)

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleTrainer = "trainer"
	RoleManager = "manager"
	RoleTrainee = "trainee"
)

// User 用户表，对应 users
type User struct {
	UserID          string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Username        string     `gorm:"type:varchar(150);not null;uniqueIndex"          json:"username"`
	Email           string     `gorm:"type:varchar(254);not null;uniqueIndex"          json:"email"`
	FirstName       string     `gorm:"type:varchar(150);not null"                      json:"first_name"`
	LastName        string     `gorm:"type:varchar(150);not null"                      json:"last_name"`
	PasswordHash    string     `gorm:"type:varchar(255);not null"                      json:"-"`
	PrimaryRole     string     `gorm:"type:varchar(20);not null"                       json:"primary_role"`
	IsSuperuser     bool       `gorm:"not null"                                        json:"is_superuser"`
	IsActive        bool       `gorm:"not null"                                        json:"is_active"`
	ProfileImageURL *string    `gorm:"column:profile_image_url;type:varchar(500)"      json:"profile_image_url,omitempty"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
	Timestamps
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 姓名，缺省时回退到用户名
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
