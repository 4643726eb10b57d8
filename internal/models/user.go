package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// IsValid reports whether the role is one of the two known values.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID            uint64    `gorm:"primarykey" json:"id"`
	FullName      string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"type:varchar(255);not null" json:"-"`
	Role          UserRole  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	ProfileImgURL string    `gorm:"type:varchar(512)" json:"profile_img_url"`
	IsActive      bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relations
	Assignments []TaskAssignment `gorm:"foreignKey:UserID" json:"-"`
	Sessions    []Session        `gorm:"foreignKey:UserID" json:"-"`
}
