package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"festbook/internal/shared/config"
	"festbook/internal/shared/utils/response"
	"festbook/internal/users"
	"festbook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ctxUserKey  = "user"
	ctxUserID   = "user_id"
	ctxUserRole = "user_role"
)

var errInvalidClaims = errors.New("invalid token claims")

// JWTAuthWithConfig verifies the bearer token and stores the session user.
// Only access tokens are accepted.
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	log := logger.GetDefault()
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "Authorization header is required", nil)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.AbortWithError(c, http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil)
			return
		}

		user, err := parseAccessToken(parts[1], cfg.JWT.Secret)
		if err != nil {
			log.LogAuthFailure(c.Request.Context(), err.Error(), c.ClientIP())
			response.AbortWithError(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// RequireRoles checks that the user has any of the required roles
func RequireRoles(requiredRoles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.AbortWithError(c, http.StatusUnauthorized, "user role not found in context", nil)
			return
		}

		for _, role := range requiredRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		response.AbortWithError(c, http.StatusForbidden, "Insufficient permissions", nil)
	}
}

// RequireStudent is the gate in front of every booking route
func RequireStudent() gin.HandlerFunc {
	return RequireRoles(users.RoleStudent)
}

// CurrentUser returns the user stored by the auth middleware
func CurrentUser(c *gin.Context) (users.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return users.User{}, false
	}
	user, ok := v.(users.User)
	return user, ok
}

func setUser(c *gin.Context, user users.User) {
	c.Set(ctxUserKey, user)
	c.Set(ctxUserID, user.ID)
	c.Set(ctxUserRole, string(user.Role))
}

func parseAccessToken(tokenString, secret string) (users.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return users.User{}, fmt.Errorf("token rejected: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return users.User{}, errInvalidClaims
	}
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return users.User{}, errors.New("invalid token type")
	}

	id, err := int64Claim(claims["user_id"])
	if err != nil || id <= 0 {
		return users.User{}, errInvalidClaims
	}
	role, _ := claims["role"].(string)
	if !users.IsValidRole(role) {
		return users.User{}, errInvalidClaims
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)

	return users.User{
		ID:       id,
		Username: username,
		Role:     users.ParseRole(role),
		Email:    email,
	}, nil
}

// int64Claim accepts numeric ids and numeric strings
func int64Claim(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	}
	return 0, errInvalidClaims
}
