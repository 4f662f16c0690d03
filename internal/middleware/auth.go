// Package middleware holds gin middleware for authentication and rate limiting.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ClinisysLIMS/gem-t2-optimizer-sub001/internal/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey ContextKey = "user_id"

	// UserEmailKey is the context key for the authenticated user's email
	UserEmailKey ContextKey = "user_email"
)

// ErrNotAuthenticated is returned when no user is attached to the request
var ErrNotAuthenticated = errors.New("user not authenticated")

// AuthMiddleware authenticates requests with bearer access tokens
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Required rejects the request with 401 unless it carries a valid token
func (m *AuthMiddleware) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := m.extractAndValidateToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": err.Error(),
			})
			return
		}

		setUser(c, claims)
		c.Next()
	}
}

// Optional attaches the user when a valid token is present and continues
// either way. Optimization endpoints use it so signed-in runs are recorded.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := m.extractAndValidateToken(c); err == nil {
			setUser(c, claims)
		}
		c.Next()
	}
}

func setUser(c *gin.Context, claims *auth.Claims) {
	// ValidateToken already checked the format
	userID := uuid.MustParse(claims.UserID)
	c.Set(string(UserIDKey), userID)
	c.Set(string(UserEmailKey), claims.Email)
}

func (m *AuthMiddleware) extractAndValidateToken(c *gin.Context) (*auth.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || scheme != "Bearer" {
		return nil, errors.New("invalid authorization header format")
	}
	if token == "" {
		return nil, errors.New("missing token")
	}

	return m.jwtService.ValidateToken(token)
}

// GetUserID retrieves the authenticated user's ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userID, exists := c.Get(string(UserIDKey))
	if !exists {
		return uuid.Nil, ErrNotAuthenticated
	}

	id, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("invalid user ID format")
	}

	return id, nil
}

// OptionalUserID returns the user ID when one is attached, nil otherwise
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &id
}

// GetUserEmail retrieves the authenticated user's email from the context
func GetUserEmail(c *gin.Context) (string, error) {
	email, exists := c.Get(string(UserEmailKey))
	if !exists {
		return "", ErrNotAuthenticated
	}

	emailStr, ok := email.(string)
	if !ok {
		return "", errors.New("invalid email format")
	}

	return emailStr, nil
}

// MustGetUserID retrieves the user ID from context, panics if not found
// Use this only in handlers protected by Required() middleware
func MustGetUserID(c *gin.Context) uuid.UUID {
	userID, err := GetUserID(c)
	if err != nil {
		panic("user ID not found in context - ensure Required() middleware is applied")
	}
	return userID
}
