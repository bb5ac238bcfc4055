package middleware

import (
	"fmt"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/util"
	"mindagrow_backend/pkg/logger"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// touchInterval bounds how often last_activity is written per session.
const touchInterval = time.Minute

type SessionStore interface {
	FindActive(id string, now time.Time) (*model.UserSession, error)
	Touch(id string, at time.Time) error
}

type UserLookup interface {
	FindByID(id uint) (*model.User, error)
}

func bearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		return ""
	}
	// Download links opened in a new tab cannot set headers.
	return c.Query("token")
}

// AuthMiddleware verifies the JWT, then requires its session to be active
// and unexpired and its user to be active.
func AuthMiddleware(secret string, sessions SessionStore, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("JWT rejected", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		now := time.Now()
		session, err := sessions.FindActive(claims.SessionID(), now)
		if err != nil || session.UserID != claims.UserID {
			util.Error(c, http.StatusUnauthorized, util.ErrSessionRevoked.Error())
			c.Abort()
			return
		}

		user, err := users.FindByID(claims.UserID)
		if err != nil || !user.IsActive() {
			util.Error(c, http.StatusUnauthorized, util.ErrAccountInactive.Error())
			c.Abort()
			return
		}
		// The role may have changed since the token was issued.
		claims.Role = user.Role

		util.SetUserInContext(c, claims)

		if now.Sub(session.LastActivity) > touchInterval {
			go func(id string) {
				if err := sessions.Touch(id, now); err != nil {
					logger.Log.Warn("Failed to touch session", zap.String("session", id), zap.Error(err))
				}
			}(session.ID)
		}

		c.Next()
	}
}

// RoleMiddleware admits the listed roles; admins pass every gate.
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := user.Role == model.RoleAdmin
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimitKey buckets by client IP and, once authenticated, user id.
func RateLimitKey(c *gin.Context) string {
	if claims := util.GetUserFromContext(c); claims != nil {
		return fmt.Sprintf("%s:%d", c.ClientIP(), claims.UserID)
	}
	return c.ClientIP()
}
