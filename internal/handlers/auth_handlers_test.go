package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	mwauth "github.com/Skotchmaster/cinema_reservation/internal/middleware/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/models"
	"github.com/Skotchmaster/cinema_reservation/internal/mykafka"
	"github.com/Skotchmaster/cinema_reservation/internal/service/auth"
	"github.com/Skotchmaster/cinema_reservation/internal/session"
	"github.com/Skotchmaster/cinema_reservation/internal/token"
)

type memEntry struct {
	value     string
	expiresAt time.Time
}

type memStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]memEntry{}}
}

func (m *memStore) Put(_ context.Context, refreshToken, userUUID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[refreshToken] = memEntry{value: userUUID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *memStore) GetWithTTL(_ context.Context, refreshToken string) (string, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[refreshToken]
	if !ok || time.Now().After(e.expiresAt) {
		return "", 0, session.ErrNotFound
	}
	return e.value, time.Until(e.expiresAt), nil
}

func (m *memStore) Rotate(_ context.Context, oldToken, newToken string) (string, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[oldToken]
	if !ok || time.Now().After(e.expiresAt) {
		return "", 0, session.ErrNotFound
	}
	m.entries[newToken] = e
	delete(m.entries, oldToken)
	return e.value, time.Until(e.expiresAt), nil
}

func (m *memStore) Delete(_ context.Context, refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[refreshToken]; !ok {
		return session.ErrNotFound
	}
	delete(m.entries, refreshToken)
	return nil
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Showtime{},
		&models.Seat{},
		&models.Reservation{},
		&models.SeatReservation{},
	))
	return db
}

type authEnv struct {
	DB    *gorm.DB
	Codec *token.Codec
	Auth  *AuthHandler
	Users *UserHandler
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	db := initTestDB(t)
	codec := &token.Codec{
		Secret:     []byte("test_secret"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
	svc := &auth.Service{DB: db, Codec: codec, Store: newMemStore()}
	prod := &mykafka.Producer{}

	return &authEnv{
		DB:    db,
		Codec: codec,
		Auth:  &AuthHandler{Auth: svc, Codec: codec, Producer: prod},
		Users: &UserHandler{DB: db, Auth: svc, Producer: prod},
	}
}

func jsonRequest(t *testing.T, method, target string, payload interface{}, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func registerTestUser(t *testing.T, env *authEnv, email string) models.User {
	t.Helper()
	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":      email,
		"first_name": "test",
		"last_name":  "user",
		"password":   "password",
	})
	require.NoError(t, env.Users.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func TestRegister(t *testing.T) {
	env := newAuthEnv(t)

	user := registerTestUser(t, env, "a@x.com")
	require.Equal(t, "a@x.com", user.Email)
	require.Equal(t, models.RoleUser, user.Role)
	require.True(t, user.Activated)
	require.NotEmpty(t, user.UUID)

	// password hash never leaves the server
	var stored models.User
	require.NoError(t, env.DB.Where("email = ?", "a@x.com").First(&stored).Error)
	require.NotEmpty(t, stored.PasswordHash)
	require.NotEqual(t, "password", stored.PasswordHash)

	c, _ := jsonRequest(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":    "a@x.com",
		"password": "password",
	})
	require.ErrorIs(t, env.Users.Register(c), auth.ErrUserExists)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	env := newAuthEnv(t)

	c, _ := jsonRequest(t, http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email":    "a@x.com",
		"password": "password",
		"role":     "superuser",
	})
	err := env.Users.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
}

func TestLoginSetsCookies(t *testing.T) {
	env := newAuthEnv(t)
	user := registerTestUser(t, env, "a@x.com")

	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "password",
	})
	require.NoError(t, env.Auth.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))

	claims, err := env.Codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.UUID, claims["uuid"])
	require.Equal(t, "user", claims["role"])

	cookies := map[string]*http.Cookie{}
	for _, cookie := range rec.Result().Cookies() {
		cookies[cookie.Name] = cookie
	}
	for _, name := range []string{mwauth.AccessCookie, mwauth.RefreshCookie} {
		cookie, ok := cookies[name]
		require.True(t, ok, "missing cookie %s", name)
		require.True(t, cookie.HttpOnly)
		require.True(t, cookie.Secure)
		require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		require.False(t, cookie.Expires.IsZero())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newAuthEnv(t)

	c, _ := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "password",
	})
	require.ErrorIs(t, env.Auth.Login(c), auth.ErrInvalidCredentials)

	registerTestUser(t, env, "a@x.com")

	c, _ = jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "wrong",
	})
	require.ErrorIs(t, env.Auth.Login(c), auth.ErrInvalidCredentials)
}

func loginPair(t *testing.T, env *authEnv, email string) auth.TokenPair {
	t.Helper()
	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": "password",
	})
	require.NoError(t, env.Auth.Login(c))

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

func TestRefreshRotatesPair(t *testing.T) {
	env := newAuthEnv(t)
	registerTestUser(t, env, "a@x.com")
	pair := loginPair(t, env, "a@x.com")

	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", nil,
		&http.Cookie{Name: mwauth.RefreshCookie, Value: pair.RefreshToken})
	require.NoError(t, env.Auth.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var newPair auth.TokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &newPair))
	require.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// the consumed refresh token is dead
	c, _ = jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", nil,
		&http.Cookie{Name: mwauth.RefreshCookie, Value: pair.RefreshToken})
	require.ErrorIs(t, env.Auth.Refresh(c), auth.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	env := newAuthEnv(t)
	registerTestUser(t, env, "a@x.com")
	pair := loginPair(t, env, "a@x.com")

	c, rec := jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil,
		&http.Cookie{Name: mwauth.RefreshCookie, Value: pair.RefreshToken})
	require.NoError(t, env.Auth.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// cookies are expired on the way out
	for _, cookie := range rec.Result().Cookies() {
		require.True(t, cookie.Expires.Before(time.Now()))
	}

	c, _ = jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh", nil,
		&http.Cookie{Name: mwauth.RefreshCookie, Value: pair.RefreshToken})
	require.ErrorIs(t, env.Auth.Refresh(c), auth.ErrUnauthorized)

	c, _ = jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil,
		&http.Cookie{Name: mwauth.RefreshCookie, Value: pair.RefreshToken})
	require.ErrorIs(t, env.Auth.Logout(c), auth.ErrNotFound)
}

func TestUpdateMePartial(t *testing.T) {
	env := newAuthEnv(t)
	registered := registerTestUser(t, env, "a@x.com")

	var user models.User
	require.NoError(t, env.DB.Where("uuid = ?", registered.UUID).First(&user).Error)

	c, rec := jsonRequest(t, http.MethodPatch, "/api/v1/users/me", map[string]string{
		"first_name": "changed",
	})
	c.Set("currentUser", &user)
	require.NoError(t, env.Users.UpdateMe(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	require.NoError(t, env.DB.Where("uuid = ?", registered.UUID).First(&updated).Error)
	require.Equal(t, "changed", updated.FirstName)
	// fields not supplied stay untouched
	require.Equal(t, "user", string(updated.Role))
	require.Equal(t, registered.LastName, updated.LastName)
	require.Equal(t, registered.Email, updated.Email)
}
