package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive-api/internal/constants"
	"github.com/taskhive/taskhive-api/internal/dto"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/response"
	"github.com/taskhive/taskhive-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Signup registers a new user.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		FullName      string          `json:"full_name" binding:"required"`
		Title         string          `json:"title" binding:"required"`
		Email         string          `json:"email" binding:"required,email"`
		Password      string          `json:"password" binding:"required"`
		Role          models.UserRole `json:"role"`
		ProfileImgURL string          `json:"profile_img_url"`
	}

	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(services.RegisterInput{
		FullName:      req.FullName,
		Title:         req.Title,
		Email:         req.Email,
		Password:      req.Password,
		Role:          req.Role,
		ProfileImgURL: req.ProfileImgURL,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	response.Created(c, dto.ToUserDTO(*user), "User created successfully")
}

// Login authenticates a user and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Login(services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondAuthError(c, err)
		return
	}

	response.OK(c, gin.H{
		"user":  dto.ToUserDTO(*user),
		"token": token,
	}, "Login successful")
}

// Logout revokes the caller's sessions and marks them inactive.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.authService.Logout(userID); err != nil {
		response.InternalError(c, "Failed to logout")
		return
	}

	response.OK(c, gin.H{}, "Logout successful")
}

// SendOTP generates and mails a one-time passcode.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	type SendOTPRequest struct {
		Email string `json:"email" binding:"required,email"`
	}

	var req SendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.RequestOTP(req.Email); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "Failed to send OTP email")
		return
	}

	email := services.NormalizeEmail(req.Email)
	response.OK(c, gin.H{}, fmt.Sprintf("OTP sent to your email %s", email))
}

// VerifyOTP checks a submitted one-time passcode.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	type VerifyOTPRequest struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required"`
	}

	var req VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.VerifyOTP(req.Email, req.OTP); err != nil {
		respondAuthError(c, err)
		return
	}

	response.OK(c, gin.H{}, "OTP verified successfully")
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		response.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidRole):
		response.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		response.Conflict(c, "Email already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, services.ErrOTPNotRequested),
		errors.Is(err, services.ErrOTPInvalid),
		errors.Is(err, services.ErrOTPExpired):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, "")
	}
}
