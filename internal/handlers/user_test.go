package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive-api/internal/constants"
	"github.com/taskhive/taskhive-api/internal/database"
	"github.com/taskhive/taskhive-api/internal/dto"
	"github.com/taskhive/taskhive-api/internal/middleware"
	"github.com/taskhive/taskhive-api/internal/models"
	"github.com/taskhive/taskhive-api/internal/repository"
	"github.com/taskhive/taskhive-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type userTestEnv struct {
	db       *gorm.DB
	handler  *UserHandler
	uploader *fakeUploader
}

func setupUserTestEnv(t *testing.T) userTestEnv {
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

	uploader := &fakeUploader{}
	userService := services.NewUserService(repository.NewUserRepository(db), uploader)
	handler := NewUserHandler(userService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return userTestEnv{
		db:       db,
		handler:  handler,
		uploader: uploader,
	}
}

func (env userTestEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		FullName:     "Test User",
		Title:        "Engineer",
		Email:        email,
		PasswordHash: "bcrypt-hash-material",
		Role:         role,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func authedContext(w *httptest.ResponseRecorder, req *http.Request, userID uint64, role models.UserRole) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)
	c.Set(constants.ContextKeyUserRole, role)
	return c
}

func TestUserHandler_GetCurrentUser(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "me@example.com", models.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/getuser", nil)
	c := authedContext(w, req, user.ID, user.Role)

	env.handler.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var got dto.UserDTO
	decodeData(t, w, &got)
	require.Equal(t, user.Email, got.Email)
	require.NotContains(t, w.Body.String(), "password")
	require.NotContains(t, w.Body.String(), "bcrypt-hash-material")
}

func TestUserHandler_ListUsers(t *testing.T) {
	env := setupUserTestEnv(t)
	env.createUser(t, "first@example.com", models.RoleUser)
	env.createUser(t, "second@example.com", models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/getallusers", nil)
	c := authedContext(w, req, 1, models.RoleUser)

	env.handler.ListUsers(c)

	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Users []dto.UserDTO `json:"users"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Users, 2)
	require.NotContains(t, w.Body.String(), "bcrypt-hash-material")
}

func TestUserHandler_EditUser_Fields(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "editable@example.com", models.RoleUser)

	body, err := json.Marshal(map[string]string{
		"full_name": "Renamed User",
		"title":     "Staff Engineer",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/user/edituser/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c := authedContext(w, req, user.ID, user.Role)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", user.ID)}}

	env.handler.EditUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var got dto.UserDTO
	decodeData(t, w, &got)
	require.Equal(t, "Renamed User", got.FullName)
	require.Equal(t, "Staff Engineer", got.Title)
	require.Equal(t, models.RoleUser, got.Role)
}

func TestUserHandler_EditUser_RoleChangeForbidden(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "ambitious@example.com", models.RoleUser)

	body, err := json.Marshal(map[string]string{"role": "admin"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/user/edituser/1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c := authedContext(w, req, user.ID, models.RoleUser)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", user.ID)}}

	env.handler.EditUser(c)

	require.Equal(t, http.StatusForbidden, w.Code)

	var fresh models.User
	require.NoError(t, env.db.First(&fresh, user.ID).Error)
	require.Equal(t, models.RoleUser, fresh.Role)
}

func TestUserHandler_EditUser_RoleChangeByAdmin(t *testing.T) {
	env := setupUserTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	user := env.createUser(t, "promoted@example.com", models.RoleUser)

	body, err := json.Marshal(map[string]string{"role": "admin"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/user/edituser/2", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c := authedContext(w, req, admin.ID, models.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", user.ID)}}

	env.handler.EditUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var got dto.UserDTO
	decodeData(t, w, &got)
	require.Equal(t, models.RoleAdmin, got.Role)
}

func TestUserHandler_DeleteUser(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "doomed@example.com", models.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/user/deleteuser/1", nil)
	c := authedContext(w, req, 999, models.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", user.ID)}}

	env.handler.DeleteUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var got dto.UserDTO
	decodeData(t, w, &got)
	require.Equal(t, "doomed@example.com", got.Email)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestUserHandler_DeleteUser_AdminGate(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "protected@example.com", models.RoleUser)

	r := gin.New()
	r.DELETE("/api/v1/user/deleteuser/:id",
		func(c *gin.Context) {
			c.Set(constants.ContextKeyUserID, user.ID)
			c.Set(constants.ContextKeyUserRole, models.RoleUser)
		},
		middleware.RequireAdmin(),
		env.handler.DeleteUser,
	)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/v1/user/deleteuser/%d", user.ID), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUserHandler_UploadProfile(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "avatar@example.com", models.RoleUser)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("image", "avatar.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/uploadprofile/1", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c := authedContext(w, req, user.ID, user.Role)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", user.ID)}}

	env.handler.UploadProfile(c)

	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		ImageURL string `json:"image_url"`
	}
	decodeData(t, w, &data)
	require.Equal(t, "http://storage.test/bucket/user_profiles/avatar.jpg", data.ImageURL)

	var fresh models.User
	require.NoError(t, env.db.First(&fresh, user.ID).Error)
	require.Equal(t, data.ImageURL, fresh.ProfileImgURL)
}

func TestUserHandler_UploadProfile_NoFile(t *testing.T) {
	env := setupUserTestEnv(t)
	user := env.createUser(t, "nofile@example.com", models.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/uploadprofile/1", nil)
	c := authedContext(w, req, user.ID, user.Role)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprintf("%d", user.ID)}}

	env.handler.UploadProfile(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
