package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/dto"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/repository"
	"github.com/taskhive/taskhive-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// apiEnvelope mirrors the response envelope for decoding in tests.
type apiEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Errors     json.RawMessage `json:"errors"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst any) apiEnvelope {
	t.Helper()

	env := decodeEnvelope(t, w)
	require.NoError(t, json.Unmarshal(env.Data, dst))
	return env
}

type sentMail struct {
	to      string
	subject string
	body    string
}

// fakeMailer records outgoing mail instead of dialing SMTP.
type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type authTestEnv struct {
	db          *gorm.DB
	handler     *AuthHandler
	authService *services.AuthService
	mailer      *fakeMailer
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.OTPChallenge{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	mailer := &fakeMailer{}
	authService := services.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		repository.NewOTPRepository(db),
		mailer,
		"test-secret",
	)
	handler := NewAuthHandler(authService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		handler:     handler,
		authService: authService,
		mailer:      mailer,
	}
}

func postJSON(t *testing.T, r *gin.Engine, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)
	return w
}

func signupPayload(email string) map[string]string {
	return map[string]string{
		"full_name": "Test User",
		"title":     "Engineer",
		"email":     email,
		"password":  "supersecret",
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/v1/auth/signup", env.handler.Signup)

	w := postJSON(t, r, "/api/v1/auth/signup", signupPayload("new@example.com"))

	require.Equal(t, http.StatusCreated, w.Code)

	var user dto.UserDTO
	decodeData(t, w, &user)
	require.Equal(t, "new@example.com", user.Email)
	require.Equal(t, models.RoleUser, user.Role)
	require.False(t, user.IsActive)

	// Password material must never appear in any response shape
	require.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_Signup_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/v1/auth/signup", env.handler.Signup)

	w := postJSON(t, r, "/api/v1/auth/signup", signupPayload("dup@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/v1/auth/signup", signupPayload("dup@example.com"))
	require.Equal(t, http.StatusConflict, w.Code)

	env2 := decodeEnvelope(t, w)
	require.Equal(t, "Email already exists", env2.Message)
}

func TestAuthHandler_Signup_ShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/v1/auth/signup", env.handler.Signup)

	payload := signupPayload("short@example.com")
	payload["password"] = "abc"
	w := postJSON(t, r, "/api/v1/auth/signup", payload)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(services.RegisterInput{
		FullName: "Existing",
		Title:    "Engineer",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/v1/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		User  dto.UserDTO `json:"user"`
		Token string      `json:"token"`
	}
	decodeData(t, w, &data)
	require.Equal(t, "existing@example.com", data.User.Email)
	require.True(t, data.User.IsActive)
	require.NotEmpty(t, data.Token)

	userID, role, err := env.authService.VerifyToken(data.Token)
	require.NoError(t, err)
	require.Equal(t, data.User.ID, userID)
	require.Equal(t, models.RoleUser, role)

	var sessionCount int64
	require.NoError(t, env.db.Model(&models.Session{}).Where("user_id = ?", data.User.ID).Count(&sessionCount).Error)
	require.EqualValues(t, 1, sessionCount)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(services.RegisterInput{
		FullName: "Existing",
		Title:    "Engineer",
		Email:    "existing@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/v1/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "wrongpassword",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_UnknownEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/v1/auth/login", env.handler.Login)

	w := postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "supersecret",
	})

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_OTPFlow(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Register(services.RegisterInput{
		FullName: "OTP User",
		Title:    "Engineer",
		Email:    "otp@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/v1/auth/sendotp", env.handler.SendOTP)
	r.POST("/api/v1/auth/verifyotp", env.handler.VerifyOTP)

	w := postJSON(t, r, "/api/v1/auth/sendotp", map[string]string{"email": "otp@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, "otp@example.com", env.mailer.sent[0].to)

	var challenge models.OTPChallenge
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&challenge).Error)
	require.Len(t, challenge.Code, 6)
	require.Contains(t, env.mailer.sent[0].body, challenge.Code)

	// A wrong code must not consume the pending challenge
	w = postJSON(t, r, "/api/v1/auth/verifyotp", map[string]string{
		"email": "otp@example.com",
		"otp":   "000000x",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid OTP", decodeEnvelope(t, w).Message)

	w = postJSON(t, r, "/api/v1/auth/verifyotp", map[string]string{
		"email": "otp@example.com",
		"otp":   challenge.Code,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Verification consumes the challenge
	w = postJSON(t, r, "/api/v1/auth/verifyotp", map[string]string{
		"email": "otp@example.com",
		"otp":   challenge.Code,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "OTP not requested", decodeEnvelope(t, w).Message)
}

func TestAuthHandler_VerifyOTP_Expired(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Register(services.RegisterInput{
		FullName: "OTP User",
		Title:    "Engineer",
		Email:    "expired@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	require.NoError(t, env.authService.RequestOTP("expired@example.com"))

	var challenge models.OTPChallenge
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&challenge).Error)

	err = env.db.Model(&models.OTPChallenge{}).
		Where("user_id = ?", user.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/v1/auth/verifyotp", env.handler.VerifyOTP)

	w := postJSON(t, r, "/api/v1/auth/verifyotp", map[string]string{
		"email": "expired@example.com",
		"otp":   challenge.Code,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "OTP expired", decodeEnvelope(t, w).Message)
}

func TestAuthHandler_SendOTP_UnknownEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/v1/auth/sendotp", env.handler.SendOTP)

	w := postJSON(t, r, "/api/v1/auth/sendotp", map[string]string{"email": "ghost@example.com"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, env.mailer.sent)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Register(services.RegisterInput{
		FullName: "Logout User",
		Title:    "Engineer",
		Email:    "logout@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, token, err := env.authService.Login(services.LoginInput{
		Email:    "logout@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/v1/auth/logout", middleware.RequireAuth(env.authService), env.handler.Logout)

	logout := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := logout()
	require.Equal(t, http.StatusOK, w.Code)

	var fresh models.User
	require.NoError(t, env.db.First(&fresh, user.ID).Error)
	require.False(t, fresh.IsActive)

	var revoked int64
	require.NoError(t, env.db.Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NOT NULL", user.ID).
		Count(&revoked).Error)
	require.EqualValues(t, 1, revoked)

	// The revoked token no longer passes auth
	w = logout()
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Logging out an already logged-out user is a no-op, not an error
	require.NoError(t, env.authService.Logout(user.ID))
}

func TestAuthHandler_Logout_RevokesToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	_, err := env.authService.Register(services.RegisterInput{
		FullName: "Revoked User",
		Title:    "Engineer",
		Email:    "revoked@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	_, token, err := env.authService.Login(services.LoginInput{
		Email:    "revoked@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/api/v1/auth/logout", middleware.RequireAuth(env.authService), env.handler.Logout)
	r.GET("/api/v1/guarded", middleware.RequireAuth(env.authService), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func(method, url string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, url, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, hit(http.MethodGet, "/api/v1/guarded").Code)

	require.Equal(t, http.StatusOK, hit(http.MethodPost, "/api/v1/auth/logout").Code)

	// The same bearer token must stop authenticating once revoked
	require.Equal(t, http.StatusUnauthorized, hit(http.MethodGet, "/api/v1/guarded").Code)

	_, _, err = env.authService.VerifyToken(token)
	require.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/v1/auth/logout", middleware.RequireAuth(env.authService), env.handler.Logout)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	r := gin.New()
	r.POST("/api/v1/auth/logout", middleware.RequireAuth(env.authService), env.handler.Logout)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
