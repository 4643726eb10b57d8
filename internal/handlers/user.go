package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive-api/internal/constants"
	"github.com/taskhive/taskhive-api/internal/dto"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/response"
	"github.com/taskhive/taskhive-api/internal/services"
	"github.com/taskhive/taskhive-api/internal/utils"
)

// UserHandler coordinates user profile HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetCurrentUser returns the authenticated user's profile.
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.OK(c, dto.ToUserDTO(*user), "Profile fetched successfully")
}

// ListUsers returns all users, paginated, without password material.
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.ListUsers(params.Page, params.Limit)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.OK(c, gin.H{
		"users": dto.ToUserDTOs(users),
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}, "All users fetched successfully")
}

// EditUser updates a user's profile fields.
func (h *UserHandler) EditUser(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	type EditUserRequest struct {
		FullName *string          `json:"full_name" binding:"omitempty,min=1"`
		Title    *string          `json:"title" binding:"omitempty,min=1"`
		Role     *models.UserRole `json:"role"`
	}

	var req EditUserRequest
	if !bindJSON(c, &req) {
		return
	}

	actorRole, _ := middleware.GetUserRole(c)

	user, err := h.userService.EditUser(id, services.EditUserInput{
		FullName: req.FullName,
		Title:    req.Title,
		Role:     req.Role,
	}, actorRole)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.OK(c, dto.ToUserDTO(*user), "User updated successfully")
}

// DeleteUser permanently removes a user. Admin only.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	user, err := h.userService.DeleteUser(id)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.OK(c, dto.ToUserDTO(*user), "User deleted successfully")
}

// UploadProfile stores a profile image and attaches its URL to the user.
// Expects a multipart file field named "image".
func (h *UserHandler) UploadProfile(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "No file uploaded")
		return
	}
	if fileHeader.Size > constants.MaxUploadSize {
		response.BadRequest(c, "File too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	url, err := h.userService.UploadProfileImage(
		c.Request.Context(),
		id,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
	)
	if err != nil {
		respondUserError(c, err)
		return
	}

	response.OK(c, gin.H{"image_url": url}, "Image uploaded successfully")
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidRole):
		response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrRoleChangeForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrUploaderNotConfigured):
		response.ServiceUnavailable(c, err.Error())
	default:
		response.InternalError(c, "")
	}
}
