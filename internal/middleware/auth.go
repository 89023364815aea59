package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lingoplatform/admin-backend/internal/common"
	"github.com/lingoplatform/admin-backend/internal/domain"
	"github.com/lingoplatform/admin-backend/pkg/jwt"
)

const (
	ctxUserID   = "userID"
	ctxNickname = "nickname"
	ctxLevel    = "level"
)

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "missing authorization header", nil)
			c.Abort()
			return
		}

		// 2. Parse Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format", nil)
			c.Abort()
			return
		}

		// 3. Verify token
		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrExpiredToken) {
				msg = "token expired"
			}
			common.ErrorResponse(c, http.StatusUnauthorized, msg, nil)
			c.Abort()
			return
		}

		// 4. Store user info in context
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxNickname, claims.Nickname)
		c.Set(ctxLevel, claims.Level)

		c.Next()
	}
}

// GetUserID extracts the authenticated user ID from context (nil when anonymous)
func GetUserID(c *gin.Context) *uint64 {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return nil
	}
	id, ok := v.(uint64)
	if !ok || id == 0 {
		return nil
	}
	return &id
}

// GetUserLevel extracts user level from context
func GetUserLevel(c *gin.Context) int {
	level, exists := c.Get(ctxLevel)
	if !exists {
		return 0
	}
	if lvl, ok := level.(int); ok {
		return lvl
	}
	return 0
}

// GetNickname extracts nickname from context
func GetNickname(c *gin.Context) string {
	return c.GetString(ctxNickname)
}

// ActorFromContext builds the audit actor for the current request
func ActorFromContext(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID:    GetUserID(c),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
