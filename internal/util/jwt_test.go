package util

import (
	"mindagrow_backend/internal/model"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret"

func TestJWTRoundTrip(t *testing.T) {
	email := "guru@example.com"
	user := &model.User{BaseModel: model.BaseModel{ID: 7}, Role: model.RoleGuru, Email: &email}

	token, err := GenerateJWT(user, "session-1", secret, time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RoleGuru, claims.Role)
	assert.Equal(t, email, claims.Email)
	assert.Equal(t, "session-1", claims.SessionID())
}

func TestParseJWTRejects(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.RoleSiswa}

	expired, err := GenerateJWT(user, "s", secret, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = ParseJWT(expired, secret)
	assert.Error(t, err)

	valid, err := GenerateJWT(user, "s", secret, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = ParseJWT(valid, "another-secret")
	assert.Error(t, err)

	noSession, err := GenerateJWT(user, "", secret, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = ParseJWT(noSession, secret)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ID: "s"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseJWT(unsigned, secret)
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Nil(t, GetUserFromContext(c))
	SetUserInContext(c, &Claims{UserID: 3})
	require.NotNil(t, GetUserFromContext(c))
	assert.Equal(t, uint(3), GetUserFromContext(c).UserID)
}
