package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrRoleChangeForbidden   = errors.New("only an admin can change roles")
	ErrUploaderNotConfigured = errors.New("object storage is not configured")
)

// UserService handles user profile management.
type UserService struct {
	userRepo repository.UserRepository
	uploader Uploader
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, uploader Uploader) *UserService {
	return &UserService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns a page of users newest-first.
func (s *UserService) ListUsers(page, pageSize int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// EditUserInput represents input for updating a user profile.
type EditUserInput struct {
	FullName *string
	Title    *string
	Role     *models.UserRole
}

// EditUser replaces the provided profile fields. Role changes require an
// admin actor.
func (s *UserService) EditUser(id uint64, input EditUserInput, actorRole models.UserRole) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Title != nil {
		user.Title = strings.TrimSpace(*input.Title)
	}
	if input.Role != nil && *input.Role != user.Role {
		if actorRole != models.RoleAdmin {
			return nil, ErrRoleChangeForbidden
		}
		if !input.Role.IsValid() {
			return nil, ErrInvalidRole
		}
		user.Role = *input.Role
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser permanently removes a user and returns the removed snapshot.
func (s *UserService) DeleteUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(id); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

// UploadProfileImage stores the image and attaches its URL to the user.
func (s *UserService) UploadProfileImage(ctx context.Context, id uint64, filename, contentType string, r io.Reader, size int64) (string, error) {
	if s.uploader == nil {
		return "", ErrUploaderNotConfigured
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	url, err := s.uploader.Upload(ctx, "user_profiles", filename, contentType, r, size)
	if err != nil {
		return "", fmt.Errorf("failed to upload profile image: %w", err)
	}

	user.ProfileImgURL = url
	if err := s.userRepo.Update(user); err != nil {
		return "", fmt.Errorf("failed to save profile image URL: %w", err)
	}

	return url, nil
}
