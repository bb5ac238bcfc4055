package middleware

import (
	"errors"
	"mindagrow_backend/internal/model"
	"mindagrow_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

type fakeSessions map[string]*model.UserSession

func (f fakeSessions) FindActive(id string, now time.Time) (*model.UserSession, error) {
	s, ok := f[id]
	if !ok || !s.IsActive || !s.ExpiresAt.After(now) {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (f fakeSessions) Touch(string, time.Time) error { return nil }

type fakeUsers map[uint]*model.User

func (f fakeUsers) FindByID(id uint) (*model.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func setup(t *testing.T) (*gin.Engine, fakeSessions, fakeUsers) {
	gin.SetMode(gin.TestMode)
	sessions := fakeSessions{}
	users := fakeUsers{}

	r := gin.New()
	api := r.Group("/api", AuthMiddleware(secret, sessions, users))
	api.GET("/me", func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c))
	})
	api.GET("/guru", RoleMiddleware(model.RoleGuru), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, sessions, users
}

func login(t *testing.T, sessions fakeSessions, users fakeUsers, id uint, role model.UserRole) string {
	user := &model.User{BaseModel: model.BaseModel{ID: id}, Role: role, Status: model.UserStatusActive}
	users[id] = user
	sid := "session-" + string(role)
	expires := time.Now().Add(time.Hour)
	sessions[sid] = &model.UserSession{UserID: id, ExpiresAt: expires, IsActive: true, LastActivity: time.Now()}
	sessions[sid].ID = sid

	token, err := util.GenerateJWT(user, sid, secret, expires)
	require.NoError(t, err)
	return token
}

func get(r *gin.Engine, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	r, sessions, users := setup(t)
	token := login(t, sessions, users, 1, model.RoleSiswa)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/me", ""))
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/me", "garbage"))
	assert.Equal(t, http.StatusOK, get(r, "/api/me", token))
	assert.Equal(t, http.StatusOK, get(r, "/api/me?token="+token, ""))
}

func TestRevokedSessionIsRejected(t *testing.T) {
	r, sessions, users := setup(t)
	token := login(t, sessions, users, 1, model.RoleSiswa)

	sessions["session-siswa"].IsActive = false
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/me", token))
}

func TestInactiveUserIsRejected(t *testing.T) {
	r, sessions, users := setup(t)
	token := login(t, sessions, users, 1, model.RoleSiswa)

	users[1].Status = model.UserStatusInactive
	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/me", token))
}

func TestRoleMiddleware(t *testing.T) {
	r, sessions, users := setup(t)
	siswa := login(t, sessions, users, 1, model.RoleSiswa)
	guru := login(t, sessions, users, 2, model.RoleGuru)
	admin := login(t, sessions, users, 3, model.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, get(r, "/api/guru", siswa))
	assert.Equal(t, http.StatusOK, get(r, "/api/guru", guru))
	assert.Equal(t, http.StatusOK, get(r, "/api/guru", admin))

	// a role change applies to tokens issued before it
	users[1].Role = model.RoleGuru
	assert.Equal(t, http.StatusOK, get(r, "/api/guru", siswa))
}
