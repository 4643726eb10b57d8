package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive-api/internal/constants"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/repository"
	"github.com/taskhive/taskhive-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrInvalidRole          = errors.New("role must be admin or user")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrOTPNotRequested      = errors.New("OTP not requested")
	ErrOTPInvalid           = errors.New("Invalid OTP")
	ErrOTPExpired           = errors.New("OTP expired")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// SessionClaims is the payload embedded in every session token.
type SessionClaims struct {
	UserID uint64          `json:"user_id"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and OTP verification.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	otpRepo     repository.OTPRepository
	mailer      Mailer
	secret      []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	otpRepo repository.OTPRepository,
	mailer Mailer,
	jwtSecret string,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		otpRepo:     otpRepo,
		mailer:      mailer,
		secret:      []byte(jwtSecret),
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	FullName      string
	Title         string
	Email         string
	Password      string
	Role          models.UserRole
	ProfileImgURL string
}

// Register creates a new user. The password is stored only as a bcrypt hash.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		FullName:      strings.TrimSpace(input.FullName),
		Title:         strings.TrimSpace(input.Title),
		Email:         email,
		PasswordHash:  string(hashedPassword),
		Role:          role,
		ProfileImgURL: input.ProfileImgURL,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials, marks the user active and issues a session token.
func (s *AuthService) Login(input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.userRepo.SetActive(user.ID, true); err != nil {
		return nil, "", fmt.Errorf("failed to mark user active: %w", err)
	}
	user.IsActive = true

	expiresAt := time.Now().Add(constants.SessionLifetime)
	tokenID := uuid.NewString()

	token, err := s.signToken(user, tokenID, expiresAt)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	session := &models.Session{
		UserID:    user.ID,
		TokenID:   tokenID,
		ExpiresAt: expiresAt,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, "", fmt.Errorf("failed to record session: %w", err)
	}

	return user, token, nil
}

// Logout revokes the caller's sessions and clears the active flag. Calling
// it for an already logged-out user is a no-op.
func (s *AuthService) Logout(userID uint64) error {
	if err := s.sessionRepo.RevokeForUser(userID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	if err := s.userRepo.SetActive(userID, false); err != nil {
		return fmt.Errorf("failed to mark user inactive: %w", err)
	}
	return nil
}

// RequestOTP generates a one-time passcode, stores it with a 5-minute
// expiry and mails it to the user. Mail failures propagate unretried.
func (s *AuthService) RequestOTP(email string) error {
	user, err := s.userRepo.FindByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	challenge := &models.OTPChallenge{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(constants.OTPLifetime),
	}
	if err := s.otpRepo.Replace(challenge); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	body := fmt.Sprintf("Your OTP is: %s.\nIt will expire in 5 minutes.\nDo not share your OTP.", code)
	return s.mailer.Send(user.Email, "Your Verification OTP", body)
}

// VerifyOTP checks a submitted code against the pending challenge. A wrong
// code does not consume the challenge; a correct one clears it.
func (s *AuthService) VerifyOTP(email, code string) error {
	user, err := s.userRepo.FindByEmail(NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	challenge, err := s.otpRepo.FindByUserID(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOTPNotRequested
		}
		return fmt.Errorf("failed to load OTP: %w", err)
	}

	if challenge.Code != code {
		return ErrOTPInvalid
	}
	if time.Now().After(challenge.ExpiresAt) {
		return ErrOTPExpired
	}

	if err := s.otpRepo.DeleteForUser(user.ID); err != nil {
		return fmt.Errorf("failed to clear OTP: %w", err)
	}
	return nil
}

// VerifyToken validates a session token against the signature and the
// recorded session, and returns the embedded identity. A token whose
// session has been revoked no longer authenticates.
func (s *AuthService) VerifyToken(tokenString string) (uint64, models.UserRole, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || claims.UserID == 0 {
		return 0, "", ErrInvalidToken
	}

	session, err := s.sessionRepo.FindByTokenID(claims.ID)
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	if session.RevokedAt != nil || time.Now().After(session.ExpiresAt) {
		return 0, "", ErrInvalidToken
	}

	return claims.UserID, claims.Role, nil
}

func (s *AuthService) signToken(user *models.User, tokenID string, expiresAt time.Time) (string, error) {
	claims := SessionClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// NormalizeEmail lowercases and trims an email for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
