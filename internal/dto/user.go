package dto

import (
	"time"

	"github.com/taskhive/taskhive-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash is never
// part of any serialized shape.
type UserDTO struct {
	ID            uint64          `json:"id"`
	FullName      string          `json:"full_name"`
	Title         string          `json:"title"`
	Email         string          `json:"email"`
	Role          models.UserRole `json:"role"`
	ProfileImgURL string          `json:"profile_img_url,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:            user.ID,
		FullName:      user.FullName,
		Title:         user.Title,
		Email:         user.Email,
		Role:          user.Role,
		ProfileImgURL: user.ProfileImgURL,
		IsActive:      user.IsActive,
		CreatedAt:     user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of User models
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}
