package util

import (
	"errors"
	"mindagrow_backend/internal/model"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const contextUserKey = "user"

// Claims mirror the payload the frontend expects: {id, role, email}.
// RegisteredClaims.ID carries the user_sessions row id.
type Claims struct {
	UserID uint           `json:"id"`
	Role   model.UserRole `json:"role"`
	Email  string         `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) SessionID() string {
	return c.ID
}

func GenerateJWT(user *model.User, sessionID, secret string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.EmailValue(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.ID == "" {
			return nil, errors.New("token has no session id")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func SetUserInContext(c *gin.Context, claims *Claims) {
	c.Set(contextUserKey, claims)
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
