package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"festbook/internal/shared/config"
	"festbook/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"user_id":  float64(7),
		"username": "asha",
		"email":    "asha@college.in",
		"role":     "student",
		"type":     "access",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.JSON(http.StatusOK, user)
	})
	r.GET("/me", handlers...)
	return r
}

func get(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret}}
	r := newRouter(JWTAuthWithConfig(cfg))

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	refresh := validClaims()
	refresh["type"] = "refresh"
	noRole := validClaims()
	delete(noRole, "role")
	stringID := validClaims()
	stringID["user_id"] = "7"

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Token abc", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc", want: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + sign(t, validClaims(), "other"), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + sign(t, expired, secret), want: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + sign(t, refresh, secret), want: http.StatusUnauthorized},
		{name: "no role", header: "Bearer " + sign(t, noRole, secret), want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + sign(t, validClaims(), secret), want: http.StatusOK},
		{name: "string id", header: "Bearer " + sign(t, stringID, secret), want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(r, tt.header).Code)
		})
	}

	w := get(r, "Bearer "+sign(t, validClaims(), secret))
	assert.JSONEq(t, `{"id":7,"username":"asha","role":"STUDENT","email":"asha@college.in"}`, w.Body.String())
}

func TestRequireStudent(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: secret}}
	r := newRouter(JWTAuthWithConfig(cfg), RequireStudent())

	assert.Equal(t, http.StatusOK, get(r, "Bearer "+sign(t, validClaims(), secret)).Code)

	admin := validClaims()
	admin["role"] = string(users.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+sign(t, admin, secret)).Code)

	bare := newRouter(RequireStudent())
	assert.Equal(t, http.StatusUnauthorized, get(bare, "").Code)
}
