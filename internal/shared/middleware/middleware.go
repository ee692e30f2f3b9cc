package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"eventbook/internal/shared/config"
	"eventbook/internal/shared/utils/response"
	"eventbook/internal/users"
	"eventbook/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Context keys set by JWTAuth.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextTokenID   = "token_jti"
	ContextTokenExp  = "token_exp"
)

// RevocationChecker reports whether an access token id has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// CurrentUser is the authenticated caller as read from the access token.
type CurrentUser struct {
	ID    uuid.UUID
	Email string
	Role  users.Role
}

func (u CurrentUser) IsAdmin() bool {
	return u.Role.IsAdmin()
}

// JWTAuthWithConfig creates a JWT authentication middleware with config.
// A nil checker skips the revocation lookup.
func JWTAuthWithConfig(cfg *config.Config, revoked RevocationChecker) gin.HandlerFunc {
	log := logger.GetDefault()

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			log.LogAuthFailure(c.Request.Context(), "invalid token", c.ClientIP())
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}
		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
			c.Abort()
			return
		}

		jti, _ := claims["jti"].(string)
		if revoked != nil && jti != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), jti)
			if err != nil {
				log.WithError(err).WarnContext(c.Request.Context(), "token revocation lookup failed")
			}
			if isRevoked {
				log.LogAuthFailure(c.Request.Context(), "revoked token", c.ClientIP())
				response.RespondJSON(c, "error", http.StatusUnauthorized, "token has been revoked", nil, nil)
				c.Abort()
				return
			}
		}

		c.Set(ContextUserID, claims["user_id"])
		c.Set(ContextUserEmail, claims["email"])
		c.Set(ContextUserRole, claims["role"])
		c.Set(ContextTokenID, jti)
		if exp, ok := claims["exp"].(float64); ok {
			c.Set(ContextTokenExp, time.Unix(int64(exp), 0).UTC())
		}

		c.Next()
	}
}

// GetCurrentUser reads the caller set by JWTAuth.
func GetCurrentUser(c *gin.Context) (CurrentUser, bool) {
	rawID, _ := c.Get(ContextUserID)
	idStr, ok := rawID.(string)
	if !ok {
		return CurrentUser{}, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return CurrentUser{}, false
	}

	email, _ := c.Get(ContextUserEmail)
	role, _ := c.Get(ContextUserRole)
	emailStr, _ := email.(string)
	roleStr, _ := role.(string)

	return CurrentUser{ID: id, Email: emailStr, Role: users.ParseRole(roleStr)}, true
}

// RequireRole middleware checks if user has required role
func RequireRole(requiredRole users.Role) gin.HandlerFunc {
	return RequireRoles(requiredRole)
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(users.RoleAdmin)
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user not found in context", nil, nil)
			c.Abort()
			return
		}

		for _, role := range requiredRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}
