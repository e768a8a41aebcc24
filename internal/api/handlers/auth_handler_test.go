package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/trainingportal/internal/api/handlers"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/pkg/config"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:         "test-secret",
	TokenTTL:          time.Hour,
	TokenCookieName:   "access_token",
	SessionCookieName: "sid",
}

func authResult(user *entities.User) *services.AuthResult {
	return &services.AuthResult{
		Session: &entities.Session{
			ID:        "sid-1",
			UID:       user.ID,
			Email:     user.Email,
			IssuedAt:  time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		},
		Token: "signed-token",
		User:  user,
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("welcomes the new user and sets the token cookie", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, testAuthConfig)

		input := services.RegisterInput{Username: "tina", Email: "tina@example.com", Password: "secret1", UserType: entities.UserTypeTrainee}
		svc.On("Register", mock.Anything, "sid-1", input).Return(authResult(trainee), nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"username":"tina","email":"tina@example.com","password":"secret1","userType":"trainee"}`))
		w := httptest.NewRecorder()
		handler.Register(w, anonymous(req))

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Welcome, tina! You registered as a trainee.", body["message"])
		assert.Equal(t, "/trainee", body["redirect"])

		cookie := findCookie(w, "access_token")
		require.NotNil(t, cookie)
		assert.Equal(t, "signed-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		svc.AssertExpectations(t)
	})

	t.Run("uses an for admins", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, testAuthConfig)
		svc.On("Register", mock.Anything, "sid-1", mock.Anything).Return(authResult(admin), nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"username":"ada","email":"ada@example.com","password":"secret1","userType":"admin"}`))
		w := httptest.NewRecorder()
		handler.Register(w, anonymous(req))

		assert.Equal(t, "Welcome, ada! You registered as an admin.", decodeBody(t, w)["message"])
	})

	t.Run("reports validation failures", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, testAuthConfig)
		svc.On("Register", mock.Anything, "sid-1", mock.Anything).
			Return(nil, apperrors.NewValidationError(services.MsgFillAllFields))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":""}`))
		w := httptest.NewRecorder()
		handler.Register(w, anonymous(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, services.MsgFillAllFields, decodeBody(t, w)["error"])
		assert.Nil(t, findCookie(w, "access_token"))
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, testAuthConfig)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{`))
		w := httptest.NewRecorder()
		handler.Register(w, anonymous(req))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns Logged In with the role dashboard", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, testAuthConfig)
		svc.On("Login", mock.Anything, "sid-1", "tom@example.com", "secret1").Return(authResult(trainer), nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"tom@example.com","password":"secret1"}`))
		w := httptest.NewRecorder()
		handler.Login(w, anonymous(req))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Logged In", body["status"])
		assert.Equal(t, "/trainer", body["redirect"])
		assert.NotNil(t, findCookie(w, "access_token"))
	})

	t.Run("falls back to home without a profile", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, testAuthConfig)
		result := authResult(trainer)
		result.User = nil
		svc.On("Login", mock.Anything, "sid-1", "tom@example.com", "secret1").Return(result, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"tom@example.com","password":"secret1"}`))
		w := httptest.NewRecorder()
		handler.Login(w, anonymous(req))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/", decodeBody(t, w)["redirect"])
	})

	t.Run("rejects bad credentials", func(t *testing.T) {
		svc := new(MockAuthService)
		handler := handlers.NewAuthHandler(svc, testAuthConfig)
		svc.On("Login", mock.Anything, "sid-1", "tom@example.com", "wrong").
			Return(nil, apperrors.NewUnauthorizedError(services.MsgInvalidCredentials))

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"tom@example.com","password":"wrong"}`))
		w := httptest.NewRecorder()
		handler.Login(w, anonymous(req))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", decodeBody(t, w)["error"])
		assert.Nil(t, findCookie(w, "access_token"))
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	svc := new(MockAuthService)
	handler := handlers.NewAuthHandler(svc, testAuthConfig)
	svc.On("Logout", mock.Anything, "sid-1").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	handler.Logout(w, signedIn(req, trainee))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Logged Out", body["status"])
	assert.Equal(t, "/login", body["redirect"])

	cookie := findCookie(w, "access_token")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Session(t *testing.T) {
	handler := handlers.NewAuthHandler(new(MockAuthService), testAuthConfig)

	t.Run("signed out", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Session(w, anonymous(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)))

		body := decodeBody(t, w)
		assert.Equal(t, false, body["signedIn"])
		assert.Nil(t, body["identity"])
	})

	t.Run("signed in", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Session(w, signedIn(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil), trainee))

		body := decodeBody(t, w)
		assert.Equal(t, true, body["signedIn"])
		assert.Equal(t, "Welcome, tina!", body["welcome"])
	})
}

func TestAuthHandler_Navigation(t *testing.T) {
	handler := handlers.NewAuthHandler(new(MockAuthService), testAuthConfig)

	labelsOf := func(w *httptest.ResponseRecorder) []string {
		var body struct {
			Links []services.NavLink `json:"links"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		labels := make([]string, 0, len(body.Links))
		for _, l := range body.Links {
			labels = append(labels, l.Label)
		}
		return labels
	}

	w := httptest.NewRecorder()
	handler.Navigation(w, anonymous(httptest.NewRequest(http.MethodGet, "/api/nav", nil)))
	assert.Equal(t, []string{"Home", "Login", "Register"}, labelsOf(w))

	w = httptest.NewRecorder()
	handler.Navigation(w, signedIn(httptest.NewRequest(http.MethodGet, "/api/nav", nil), admin))
	assert.Equal(t, []string{"Home", "ada@example.com", "Dashboard", "Logout"}, labelsOf(w))
}
