package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avdeyev/webshop/internal/hash"
	"github.com/avdeyev/webshop/internal/models"
	"github.com/avdeyev/webshop/internal/mykafka"
	"github.com/avdeyev/webshop/internal/repo"
	"github.com/avdeyev/webshop/internal/service/token"
)

func newAuthEnv(t *testing.T) (*gorm.DB, *AuthHandler) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	jwtSecret := []byte("test-jwt-secret")
	refreshSecret := []byte("test-refresh-secret")

	h := &AuthHandler{
		Users:         &repo.UserRepo{DB: db},
		Tokens:        &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
		Producer:      &mykafka.Producer{},
		JWTSecret:     jwtSecret,
		RefreshSecret: refreshSecret,
	}
	return db, h
}

func doJSON(t *testing.T, e *echo.Echo, method, path string, payload any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestRegister(t *testing.T) {
	_, h := newAuthEnv(t)
	e := echo.New()

	payload := map[string]string{
		"name":     "test_user",
		"email":    "test@example.com",
		"password": "password",
	}
	rec, c := doJSON(t, e, http.MethodPost, "/register", payload)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	require.Equal(t, "test@example.com", user.Email)
	require.Equal(t, "user", user.Role)
	require.NotEmpty(t, user.ID)

	_, c = doJSON(t, e, http.MethodPost, "/register", payload)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestLogin(t *testing.T) {
	db, h := newAuthEnv(t)
	e := echo.New()

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "test_user", Email: "test@example.com", PasswordHash: pwHash, Role: "user",
	}).Error)

	rec, c := doJSON(t, e, http.MethodPost, "/login", map[string]string{
		"email":    "test@example.com",
		"password": "password",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])
	require.NotEmpty(t, resp["refresh_token"])
	require.Equal(t, false, resp["is_admin"])

	_, c = doJSON(t, e, http.MethodPost, "/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong",
	})
	loginErr := h.Login(c)
	he, ok := loginErr.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestLogOut(t *testing.T) {
	db, h := newAuthEnv(t)
	e := echo.New()

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "test_user", Email: "test@example.com", PasswordHash: pwHash, Role: "user",
	}).Error)

	rec, c := doJSON(t, e, http.MethodPost, "/login", map[string]string{
		"email":    "test@example.com",
		"password": "password",
	})
	require.NoError(t, h.Login(c))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	refreshToken := resp["refresh_token"].(string)

	rec, c = doJSON(t, e, http.MethodPost, "/logout", nil,
		&http.Cookie{Name: "refreshToken", Value: refreshToken})
	require.NoError(t, h.LogOut(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.RefreshToken
	require.NoError(t, db.Where("token = ?", refreshToken).First(&stored).Error)
	require.True(t, stored.Revoked)
}
