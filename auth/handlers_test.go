package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := newTestService(t)
	router := gin.New()
	NewHandlers(service).RegisterRoutes(router)

	router.GET("/whoami", service.Middleware(), func(c *gin.Context) {
		userID, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router, service
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) (int, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w.Code, decoded
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := newTestRouter(t)

	status, body := postJSON(t, router, "/api/auth/register", map[string]any{
		"email":     "alice@example.com",
		"password":  "password123",
		"full_name": "Alice",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])

	status, body = postJSON(t, router, "/api/auth/login", map[string]any{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	// Short password.
	status, _ := postJSON(t, router, "/api/auth/register", map[string]any{
		"email":     "alice@example.com",
		"password":  "short",
		"full_name": "Alice",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Duplicate email.
	_, _ = postJSON(t, router, "/api/auth/register", map[string]any{
		"email": "bob@example.com", "password": "password123", "full_name": "Bob",
	})
	status, _ = postJSON(t, router, "/api/auth/register", map[string]any{
		"email": "bob@example.com", "password": "password456", "full_name": "Bob Again",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newTestRouter(t)

	_, _ = postJSON(t, router, "/api/auth/register", map[string]any{
		"email": "alice@example.com", "password": "password123", "full_name": "Alice",
	})

	status, _ := postJSON(t, router, "/api/auth/login", map[string]any{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMiddlewareAcceptsHeaderAndQueryToken(t *testing.T) {
	router, service := newTestRouter(t)

	user, err := service.CreateUser("alice@example.com", "password123", "Alice")
	require.NoError(t, err)
	token, _, err := service.GenerateToken(user)
	require.NoError(t, err)

	// Bearer header.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID)

	// Query parameter, used by websocket clients.
	req = httptest.NewRequest(http.MethodGet, "/whoami?token="+token, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// No credentials.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVoiceBiometricEnrollment(t *testing.T) {
	router, service := newTestRouter(t)

	user, err := service.CreateUser("alice@example.com", "password123", "Alice")
	require.NoError(t, err)
	token, _, err := service.GenerateToken(user)
	require.NoError(t, err)

	data, err := json.Marshal(map[string]any{
		"voice_data": "base64-sample",
		"passphrase": "open sesame",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/voice-biometric", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, service.HasVoiceProfile(user.ID))
}
